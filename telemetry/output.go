package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/ranking"
)

// OutputManager handles run output with CSV logging.
type OutputManager struct {
	dir        string
	roundsFile *os.File
	perfFile   *os.File

	// Track if headers have been written
	roundsHeaderWritten bool
	perfHeaderWritten   bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "rounds.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating rounds.csv: %w", err)
	}
	om.roundsFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.roundsFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteRound appends a finished round to rounds.csv.
func (om *OutputManager) WriteRound(r RoundRecord) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(om.roundsFile, []RoundRecord{r}, &om.roundsHeaderWritten); err != nil {
		return fmt.Errorf("writing round: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(om.perfFile, []PerfStatsCSV{stats.ToCSV(windowEnd)}, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteRankings replaces rankings.csv with the current board.
func (om *OutputManager) WriteRankings(records []ranking.Record) error {
	if om == nil {
		return nil
	}
	path := filepath.Join(om.dir, "rankings.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating rankings.csv: %w", err)
	}
	defer f.Close()
	if err := gocsv.Marshal(records, f); err != nil {
		return fmt.Errorf("writing rankings: %w", err)
	}
	return nil
}

// appendCSV writes records, emitting the header only on the first write.
func appendCSV[T any](f *os.File, records []T, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.roundsFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
