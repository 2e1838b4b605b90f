package display

import (
	"fmt"
	"math"
	"strconv"
)

// Mode is a resolution and refresh rate combination supported by a monitor.
type Mode struct {
	ID              string    `json:"id" yaml:"id"`
	Width           int32     `json:"width" yaml:"width"`
	Height          int32     `json:"height" yaml:"height"`
	RefreshRate     float64   `json:"refresh_rate" yaml:"refresh_rate"`
	PreferredScale  float64   `json:"preferred_scale" yaml:"preferred_scale"`
	SupportedScales []float64 `json:"supported_scales" yaml:"supported_scales"`
	IsCurrent       bool      `json:"is_current" yaml:"is_current"`
	IsPreferred     bool      `json:"is_preferred" yaml:"is_preferred"`
	IsInterlaced    bool      `json:"is_interlaced,omitempty" yaml:"is_interlaced,omitempty"`
}

// Resolution returns the mode size as WIDTHxHEIGHT.
func (m Mode) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// String returns the mode as WIDTHxHEIGHT@REFRESH.
func (m Mode) String() string {
	return m.Resolution() + "@" + FormatDecimal(m.RefreshRate)
}

// Monitor is a physical output identified by its connector.
type Monitor struct {
	Connector       string `json:"connector" yaml:"connector"`
	Vendor          string `json:"vendor" yaml:"vendor"`
	Product         string `json:"product" yaml:"product"`
	Serial          string `json:"serial" yaml:"serial"`
	DisplayName     string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	IsBuiltin       bool   `json:"is_builtin,omitempty" yaml:"is_builtin,omitempty"`
	IsUnderscanning bool   `json:"is_underscanning,omitempty" yaml:"is_underscanning,omitempty"`
	Modes           []Mode `json:"modes" yaml:"modes"`
}

// CurrentMode returns the active mode, if the monitor has one.
func (m Monitor) CurrentMode() (Mode, bool) {
	for _, mode := range m.Modes {
		if mode.IsCurrent {
			return mode, true
		}
	}
	return Mode{}, false
}

// PreferredMode returns the first mode flagged as preferred.
func (m Monitor) PreferredMode() (Mode, bool) {
	for _, mode := range m.Modes {
		if mode.IsPreferred {
			return mode, true
		}
	}
	return Mode{}, false
}

// LogicalMonitor is a positioned region of the desktop driven by one or
// more monitors.
type LogicalMonitor struct {
	X          int32     `json:"x" yaml:"x"`
	Y          int32     `json:"y" yaml:"y"`
	Scale      float64   `json:"scale" yaml:"scale"`
	Transform  Transform `json:"transform" yaml:"transform"`
	Primary    bool      `json:"primary" yaml:"primary"`
	Connectors []string  `json:"connectors" yaml:"connectors"`
}

// Drives reports whether the logical monitor includes the connector.
func (l LogicalMonitor) Drives(connector string) bool {
	for _, c := range l.Connectors {
		if c == connector {
			return true
		}
	}
	return false
}

// Properties holds the global flags returned alongside the monitors.
// Absent keys keep their zero value.
type Properties struct {
	LayoutMode                 LayoutMode `json:"layout_mode" yaml:"layout_mode"`
	SupportsMirroring          bool       `json:"supports_mirroring" yaml:"supports_mirroring"`
	SupportsChangingLayoutMode bool       `json:"supports_changing_layout_mode" yaml:"supports_changing_layout_mode"`
	GlobalScaleRequired        bool       `json:"global_scale_required" yaml:"global_scale_required"`
	LegacyUIScalingFactor      int32      `json:"legacy_ui_scaling_factor,omitempty" yaml:"legacy_ui_scaling_factor,omitempty"`
}

// DisplayConfig is a point-in-time snapshot of the compositor's display
// state. It is built once by Load and must not be modified afterwards.
type DisplayConfig struct {
	// Serial identifies the snapshot; only mutating calls need it.
	Serial          uint32           `json:"serial" yaml:"serial"`
	Monitors        []Monitor        `json:"monitors" yaml:"monitors"`
	LogicalMonitors []LogicalMonitor `json:"logical_monitors" yaml:"logical_monitors"`
	Properties      Properties       `json:"properties" yaml:"properties"`
}

// Connectors lists the connector names in snapshot order.
func (c *DisplayConfig) Connectors() []string {
	connectors := make([]string, 0, len(c.Monitors))
	for _, m := range c.Monitors {
		connectors = append(connectors, m.Connector)
	}
	return connectors
}

// Monitor looks up a monitor by its exact connector name.
func (c *DisplayConfig) Monitor(connector string) (Monitor, bool) {
	for _, m := range c.Monitors {
		if m.Connector == connector {
			return m, true
		}
	}
	return Monitor{}, false
}

// LogicalMonitorFor returns the logical monitor driving connector and its
// index, or ok=false when the monitor is not part of the layout.
func (c *DisplayConfig) LogicalMonitorFor(connector string) (index int, lm LogicalMonitor, ok bool) {
	for i, l := range c.LogicalMonitors {
		if l.Drives(connector) {
			return i, l, true
		}
	}
	return -1, LogicalMonitor{}, false
}

// PrimaryLogicalMonitor returns the logical monitor flagged primary.
func (c *DisplayConfig) PrimaryLogicalMonitor() (LogicalMonitor, bool) {
	for _, l := range c.LogicalMonitors {
		if l.Primary {
			return l, true
		}
	}
	return LogicalMonitor{}, false
}

// FormatDecimal renders v rounded to two decimals without trailing zeros,
// so 60.0 prints as "60" and 59.9502 as "59.95".
func FormatDecimal(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
