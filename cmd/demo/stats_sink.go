package main

import (
	"encoding/json"
	"os"

	"github.com/OussamaHadad/matchbook/engine"
)

// jsonStatsSink is the concrete StatsSink the core delegates to: the
// engine package only assembles a StatsSnapshot, it never touches a
// filesystem itself (spec 1).
type jsonStatsSink struct{}

func (jsonStatsSink) Write(path string, snapshot engine.StatsSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}
