package game

import (
	"time"

	"github.com/pthm-cable/whiteout/telemetry"
)

// flushTelemetry logs and writes perf stats once per perf interval.
func (g *Game) flushTelemetry(now time.Time) {
	if g.lastPerfLog.IsZero() {
		g.lastPerfLog = now
		return
	}
	if now.Sub(g.lastPerfLog) < g.cfg.Telemetry.PerfLogEvery() {
		return
	}
	g.lastPerfLog = now

	perfStats := g.perf.Stats()
	g.logger.Info("perf", "stats", perfStats)

	// Write to CSV if output manager is enabled
	if err := g.output.WritePerf(perfStats, g.tick); err != nil {
		g.logger.Error("failed to write perf", "error", err)
	}
}

// recordRound captures the finished round for the session summary and rounds.csv.
func (g *Game) recordRound() {
	r := g.round
	stats := g.throttle.Stats()

	discovered := -1.0
	if !r.discovered.IsZero() {
		discovered = r.discovered.Sub(r.Started).Seconds()
	}

	rec := telemetry.RoundRecord{
		Round:         r.ID,
		Seed:          r.Seed,
		Outcome:       r.Outcome().String(),
		DurationSec:   r.Duration(),
		DiscoveredSec: discovered,
		Encounters:    r.encounters,
		Kills:         r.KillCount(),
		Ticks:         g.roundTicks,
		MinimapSent:   stats.MinimapSent - g.throttleBase.MinimapSent,
		MinimapOffers: stats.MinimapOffered - g.throttleBase.MinimapOffered,
		HintsSent:     stats.HintsSent - g.throttleBase.HintsSent,
	}
	g.rounds = append(g.rounds, rec)
	g.logger.Info("round ended", "record", rec)

	if err := g.output.WriteRound(rec); err != nil {
		g.logger.Error("failed to write round", "error", err)
	}
}
