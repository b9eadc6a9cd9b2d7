package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RoundRecord is one finished round.
type RoundRecord struct {
	Round         int     `csv:"round"`
	Seed          int64   `csv:"seed"`
	Outcome       string  `csv:"outcome"`
	DurationSec   float64 `csv:"duration_sec"`
	DiscoveredSec float64 `csv:"discovered_sec"` // -1 if never discovered
	Encounters    int     `csv:"encounters"`
	Kills         int     `csv:"kills"`
	Ticks         int64   `csv:"ticks"`
	MinimapSent   int     `csv:"minimap_sent"`
	MinimapOffers int     `csv:"minimap_offered"`
	HintsSent     int     `csv:"hints_sent"`
}

// LogValue implements slog.LogValuer for structured logging.
func (r RoundRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("round", r.Round),
		slog.Int64("seed", r.Seed),
		slog.String("outcome", r.Outcome),
		slog.Float64("duration_sec", r.DurationSec),
		slog.Float64("discovered_sec", r.DiscoveredSec),
		slog.Int("encounters", r.Encounters),
		slog.Int("kills", r.Kills),
		slog.Int64("ticks", r.Ticks),
		slog.Int("minimap_sent", r.MinimapSent),
	)
}

// Summary aggregates a set of rounds.
type Summary struct {
	Rounds    int
	Clears    int
	ClearRate float64

	ClearMean float64
	ClearStd  float64
	ClearP10  float64
	ClearP50  float64
	ClearP90  float64

	KillsMean float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summarize computes clear-time statistics over rounds.
func Summarize(rounds []RoundRecord) Summary {
	s := Summary{Rounds: len(rounds)}
	if len(rounds) == 0 {
		return s
	}

	var clears, kills []float64
	for _, r := range rounds {
		kills = append(kills, float64(r.Kills))
		if r.Outcome == "clear" {
			clears = append(clears, r.DurationSec)
		}
	}
	s.Clears = len(clears)
	s.ClearRate = float64(len(clears)) / float64(len(rounds))
	s.KillsMean = stat.Mean(kills, nil)

	if len(clears) > 0 {
		sort.Float64s(clears)
		if len(clears) > 1 {
			s.ClearMean, s.ClearStd = stat.PopMeanStdDev(clears, nil)
		} else {
			s.ClearMean = clears[0]
		}
		s.ClearP10 = Percentile(clears, 0.10)
		s.ClearP50 = Percentile(clears, 0.50)
		s.ClearP90 = Percentile(clears, 0.90)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("rounds", s.Rounds),
		slog.Int("clears", s.Clears),
		slog.Float64("clear_rate", s.ClearRate),
		slog.Float64("clear_mean", s.ClearMean),
		slog.Float64("clear_std", s.ClearStd),
		slog.Float64("clear_p10", s.ClearP10),
		slog.Float64("clear_p50", s.ClearP50),
		slog.Float64("clear_p90", s.ClearP90),
		slog.Float64("kills_mean", s.KillsMean),
	)
}
