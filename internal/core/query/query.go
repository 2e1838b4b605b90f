package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"gnome-randr.dev/cli/internal/core/display"
)

// Format selects how a report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrInvalidFormat is returned by ParseFormat for unsupported formats.
var ErrInvalidFormat = errors.New("invalid output format")

// ParseFormat validates a format name; the empty string means text.
func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return Format(value), nil
	default:
		return "", fmt.Errorf("%w: %q (expected text, json or yaml)", ErrInvalidFormat, value)
	}
}

// CommandOptions are the parsed options of the query command.
type CommandOptions struct {
	// Connector restricts the report to one monitor. Empty means all.
	Connector string
	Format    Format
	Color     bool
}

// UnknownConnectorError is returned when the connector filter matches no
// monitor.
type UnknownConnectorError struct {
	Connector string
	Known     []string
}

func (e *UnknownConnectorError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown connector %q (no connectors available)", e.Connector)
	}
	return fmt.Sprintf("unknown connector %q (known connectors: %s)", e.Connector, strings.Join(e.Known, ", "))
}

// Selection is the part of a DisplayConfig a report covers.
type Selection struct {
	Config   *display.DisplayConfig
	Monitors []display.Monitor
	Filtered bool
}

// Select applies the connector filter. Matching is exact and
// case-sensitive.
func Select(cfg *display.DisplayConfig, connector string) (Selection, error) {
	if connector == "" {
		return Selection{Config: cfg, Monitors: cfg.Monitors}, nil
	}

	matches := lo.Filter(cfg.Monitors, func(m display.Monitor, _ int) bool {
		return m.Connector == connector
	})
	if len(matches) == 0 {
		return Selection{}, &UnknownConnectorError{
			Connector: connector,
			Known: lo.Map(cfg.Monitors, func(m display.Monitor, _ int) string {
				return m.Connector
			}),
		}
	}
	return Selection{Config: cfg, Monitors: matches, Filtered: true}, nil
}

// RunQuery renders the report for the query command. cfg is only read, so
// the same snapshot can be queried repeatedly.
func RunQuery(opts CommandOptions, cfg *display.DisplayConfig) (string, error) {
	if cfg == nil {
		return "", errors.New("no display configuration loaded")
	}

	sel, err := Select(cfg, opts.Connector)
	if err != nil {
		return "", err
	}

	switch opts.Format {
	case "", FormatText:
		return NewTextRenderer(opts.Color).Render(sel), nil
	case FormatJSON:
		data, err := json.MarshalIndent(newReport(sel), "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode report: %w", err)
		}
		return string(data) + "\n", nil
	case FormatYAML:
		data, err := yaml.Marshal(newReport(sel))
		if err != nil {
			return "", fmt.Errorf("failed to encode report: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, opts.Format)
	}
}

// report is the structured form of a selection used for JSON and YAML.
type report struct {
	Serial          uint32             `json:"serial" yaml:"serial"`
	Properties      display.Properties `json:"properties" yaml:"properties"`
	LogicalMonitors int                `json:"logical_monitor_count" yaml:"logical_monitor_count"`
	Monitors        []monitorReport    `json:"monitors" yaml:"monitors"`
}

type monitorReport struct {
	display.Monitor `yaml:",inline"`
	LogicalMonitor  *logicalMonitorReport `json:"logical_monitor,omitempty" yaml:"logical_monitor,omitempty"`
}

type logicalMonitorReport struct {
	Index                  int `json:"index" yaml:"index"`
	display.LogicalMonitor `yaml:",inline"`
}

func newReport(sel Selection) report {
	return report{
		Serial:          sel.Config.Serial,
		Properties:      sel.Config.Properties,
		LogicalMonitors: len(sel.Config.LogicalMonitors),
		Monitors: lo.Map(sel.Monitors, func(m display.Monitor, _ int) monitorReport {
			r := monitorReport{Monitor: m}
			if idx, lm, ok := sel.Config.LogicalMonitorFor(m.Connector); ok {
				r.LogicalMonitor = &logicalMonitorReport{Index: idx, LogicalMonitor: lm}
			}
			return r
		}),
	}
}
