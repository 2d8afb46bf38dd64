package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sadopc/worktime/internal/config"
	"github.com/sadopc/worktime/internal/logging"
	"github.com/sadopc/worktime/internal/period"
	"github.com/sadopc/worktime/internal/settings"
	"github.com/sadopc/worktime/internal/stats"
	"github.com/sadopc/worktime/internal/store"
)

// env is what every command runs against.
type env struct {
	cfg      config.Config
	loc      *time.Location
	log      *slog.Logger
	store    *store.Store
	settings *settings.Service
	logFile  io.Closer
}

func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.Database = dbPath
	}
	return cfg, nil
}

// openEnv loads the config, opens the log file and the database and reads the
// work settings. Close it when done.
func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	log, logFile, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	svc := settings.NewService(st)
	if _, err := svc.Load(); err != nil {
		st.Close()
		logFile.Close()
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	log.Debug("environment opened", "database", cfg.Database, "timezone", loc.String())
	return &env{cfg: cfg, loc: loc, log: log, store: st, settings: svc, logFile: logFile}, nil
}

func (e *env) Close() error {
	err := e.store.Close()
	if cerr := e.logFile.Close(); err == nil {
		err = cerr
	}
	return err
}

func (e *env) calculator() *period.Calculator {
	return period.NewCalculator(e.loc, e.settings.Current().WeekStart)
}

func (e *env) aggregator(now func() time.Time) *stats.Aggregator {
	return stats.NewAggregator(e.store, e.settings.Current, e.loc, now)
}

// parseDate reads a YYYY-MM-DD flag value in loc. Empty means now.
func parseDate(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}
