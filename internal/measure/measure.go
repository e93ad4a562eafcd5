// Package measure builds the run-time statistics report for a workspace.
package measure

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/patrickspencer/simstats/internal/config"
	"github.com/patrickspencer/simstats/internal/logparse"
	"github.com/patrickspencer/simstats/internal/report"
	"github.com/patrickspencer/simstats/internal/stats"
	"github.com/patrickspencer/simstats/internal/workspace"
)

// CollectTimer measures the collect time of a run directory.
type CollectTimer interface {
	Measure(ctx context.Context, runDir string) (float64, error)
}

// Measurer aggregates log run times per run directory.
type Measurer struct {
	cfg    *config.Config
	parser *logparse.Parser
	timer  CollectTimer
}

// New creates a Measurer. timer may be nil when collect time is never requested.
func New(cfg *config.Config, parser *logparse.Parser, timer CollectTimer) *Measurer {
	return &Measurer{cfg: cfg, parser: parser, timer: timer}
}

// RunDir parses every log file of runDir and summarizes the run times found.
// Logs that cannot be read or parsed are logged and skipped. It returns
// stats.ErrNoDurations when no log provides a run time.
func (m *Measurer) RunDir(runDir string) (stats.Summary, error) {
	logDir := filepath.Join(runDir, m.cfg.LogDir)
	files, err := workspace.LogFiles(logDir, m.cfg.LogPrefix)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return stats.Summary{}, fmt.Errorf("reading log dir %s: %w", logDir, err)
	}

	var durations []stats.Duration
	for _, file := range files {
		d, ok, err := m.parser.ParseFile(file)
		if err != nil {
			log.Printf("WARN: skipping %s: %v", file, err)
			continue
		}
		if !ok {
			log.Printf("File %s does not provide run time", file)
			continue
		}
		durations = append(durations, d)
	}
	return stats.Aggregate(durations)
}

// Workspace builds one record per run directory that has at least one run
// time. Runs without any are logged and left out of the report.
func (m *Measurer) Workspace(ctx context.Context, ws string, withCollect bool) ([]report.Record, error) {
	if withCollect && m.timer == nil {
		return nil, errors.New("collect time requested without a timer")
	}

	dirs, err := workspace.RunDirs(ws, m.cfg.RunPrefix)
	if err != nil {
		return nil, err
	}

	var records []report.Record
	for _, dir := range dirs {
		name := workspace.Name(dir)
		summary, err := m.RunDir(dir)
		if errors.Is(err, stats.ErrNoDurations) {
			log.Printf("WARN: %s: no run time found in any log file", name)
			continue
		}
		if err != nil {
			return nil, err
		}

		rec := report.Record{
			Directory: name,
			Minimum:   summary.Minimum,
			Maximum:   summary.Maximum,
			Average:   summary.Average,
		}
		if withCollect {
			secs, err := m.timer.Measure(ctx, dir)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			rec.Collect = &secs
		}
		records = append(records, rec)
	}
	return records, nil
}
