package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/OussamaHadad/matchbook/domain"
	"github.com/OussamaHadad/matchbook/engine"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	metricsAddr string
	statsOut    string
	closeHour   int
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("failure running demo")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchbook-demo",
		Short: "Drives the single-symbol order book through a short scripted session",
		RunE:  runDemo,
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9100)")
	cmd.Flags().StringVar(&statsOut, "stats-out", "", "if set, write latency stats to this JSON file on exit")
	cmd.Flags().IntVar(&closeHour, "close-hour", engine.DefaultConfig().CloseHour, "local hour at which GFD orders are pruned")

	return cmd
}

func runDemo(cmd *cobra.Command, args []string) error {
	runID := uuid.New().String()
	log.Info().Str("run_id", runID).Msg("starting matchbook demo")

	metrics := GetCollector()
	if metricsAddr != "" {
		go serveMetrics(metricsAddr)
	}

	cfg := engine.DefaultConfig()
	cfg.CloseHour = closeHour

	b := engine.NewBook(cfg, nil, newConsoleTradeSink(metrics), jsonStatsSink{}, log.Logger)
	defer b.Close()

	ids := newIDGenerator()

	sell, err := domain.New(ids.Next(), domain.GTC, domain.Ask, 50000, 100_000_000)
	if err != nil {
		return err
	}
	b.AddOrder(sell)
	log.Info().Msg("submitted sell order: 1 BTC @ 50000")

	buy, err := domain.New(ids.Next(), domain.GTC, domain.Bid, 50000, 50_000_000)
	if err != nil {
		return err
	}
	b.AddOrder(buy)
	log.Info().Msg("submitted buy order: 0.5 BTC @ 50000")

	refreshMetrics(b, metrics)
	fmt.Print(b.PrintBook())

	if statsOut != "" {
		if err := b.WriteLatencyStats(statsOut); err != nil {
			return err
		}
		log.Info().Str("path", statsOut).Msg("wrote latency stats")
	}

	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Str("addr", addr).Msg("serving prometheus metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}

func refreshMetrics(b *engine.Book, m *Collector) {
	m.OrdersResting.Set(float64(b.NumberOfOrders()))

	snap := b.LatencySnapshot()
	for _, bucket := range snap.Buckets {
		if bucket.Operation == "Match" {
			m.MatchLatencyUs.Set(bucket.MeanLatencyUs)
		}
	}

	rej := b.Rejections()
	m.RejectedTotal.WithLabelValues("duplicate_id").Add(float64(rej.DuplicateID))
	m.RejectedTotal.WithLabelValues("fak_unmatchable").Add(float64(rej.FAKUnmatchable))
	m.RejectedTotal.WithLabelValues("fok_unfillable").Add(float64(rej.FOKUnfillable))
	m.RejectedTotal.WithLabelValues("market_no_opposite").Add(float64(rej.MarketNoOpposite))
}
