package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"gnome-randr.dev/cli/internal/core/display"
	"gnome-randr.dev/cli/internal/core/ports"
	"gnome-randr.dev/cli/internal/core/query"
)

// QueryService fetches one display state snapshot and answers queries
// against it
type QueryService struct {
	fetcher ports.StateFetcher
	logger  logrus.FieldLogger
}

// NewQueryService creates a new query service
func NewQueryService(fetcher ports.StateFetcher, logger logrus.FieldLogger) *QueryService {
	return &QueryService{
		fetcher: fetcher,
		logger:  logger,
	}
}

// LoadState fetches the current state and decodes it
func (s *QueryService) LoadState(ctx context.Context) (*display.DisplayConfig, error) {
	reply, err := s.fetcher.GetCurrentState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch display state: %w", err)
	}

	cfg, err := display.Load(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to load display state: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"serial":           cfg.Serial,
		"monitors":         len(cfg.Monitors),
		"logical_monitors": len(cfg.LogicalMonitors),
		"layout_mode":      cfg.Properties.LayoutMode,
	}).Debug("loaded display state")

	if _, ok := cfg.PrimaryLogicalMonitor(); !ok && len(cfg.LogicalMonitors) > 0 {
		s.logger.WithField("logical_monitors", len(cfg.LogicalMonitors)).Warn("no primary logical monitor")
	}
	return cfg, nil
}

// Query loads the state and renders the report for opts
func (s *QueryService) Query(ctx context.Context, opts query.CommandOptions) (string, error) {
	cfg, err := s.LoadState(ctx)
	if err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"connector": opts.Connector,
		"format":    opts.Format,
	}).Debug("running query")
	return query.RunQuery(opts, cfg)
}
