package main

import (
	"github.com/OussamaHadad/matchbook/domain"
	"github.com/rs/zerolog/log"
)

// consoleTradeSink logs every trade at info level and bumps the trades
// counter. It never blocks on book state: OnTrade runs while the engine
// still holds its mutex, so this must stay cheap.
type consoleTradeSink struct {
	metrics *Collector
}

func newConsoleTradeSink(metrics *Collector) *consoleTradeSink {
	return &consoleTradeSink{metrics: metrics}
}

func (s *consoleTradeSink) OnTrade(t domain.Trade) {
	log.Info().
		Uint64("seq", t.Seq).
		Uint32("bid_order", t.BidOrderID).
		Float64("bid_price", t.BidPrice).
		Uint32("ask_order", t.AskOrderID).
		Float64("ask_price", t.AskPrice).
		Uint32("shares", t.Shares).
		Msg("trade executed")

	if s.metrics != nil {
		s.metrics.TradesTotal.Inc()
	}
}
