package testfixtures

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"gnome-randr.dev/cli/internal/core/display"
)

// ModeBuilder provides a builder pattern for raw mode descriptors
type ModeBuilder struct {
	width          int32
	height         int32
	refreshRate    float64
	preferredScale float64
	scales         []float64
	props          map[string]dbus.Variant
}

// NewModeBuilder creates a new ModeBuilder with a single supported scale of 1
func NewModeBuilder(width, height int32, refreshRate float64) *ModeBuilder {
	return &ModeBuilder{
		width:          width,
		height:         height,
		refreshRate:    refreshRate,
		preferredScale: 1,
		scales:         []float64{1},
		props:          map[string]dbus.Variant{},
	}
}

// Current flags the mode as the active one
func (b *ModeBuilder) Current() *ModeBuilder {
	b.props["is-current"] = dbus.MakeVariant(true)
	return b
}

// Preferred flags the mode as the monitor's preferred one
func (b *ModeBuilder) Preferred() *ModeBuilder {
	b.props["is-preferred"] = dbus.MakeVariant(true)
	return b
}

// WithScales sets the preferred and supported scales
func (b *ModeBuilder) WithScales(preferred float64, supported ...float64) *ModeBuilder {
	b.preferredScale = preferred
	b.scales = supported
	return b
}

// ID returns the mode identifier the builder generates
func (b *ModeBuilder) ID() string {
	return fmt.Sprintf("%dx%d@%.3f", b.width, b.height, b.refreshRate)
}

// Build creates the raw (siiddada{sv}) struct
func (b *ModeBuilder) Build() []interface{} {
	return []interface{}{
		b.ID(),
		b.width,
		b.height,
		b.refreshRate,
		b.preferredScale,
		append([]float64(nil), b.scales...),
		copyProps(b.props),
	}
}

// MonitorBuilder provides a builder pattern for raw monitor descriptors
type MonitorBuilder struct {
	connector string
	vendor    string
	product   string
	serial    string
	modes     []*ModeBuilder
	props     map[string]dbus.Variant
}

// NewMonitorBuilder creates a new MonitorBuilder with sensible defaults
func NewMonitorBuilder(connector string) *MonitorBuilder {
	return &MonitorBuilder{
		connector: connector,
		vendor:    "DEL",
		product:   "DELL U2415",
		serial:    "0x0001",
		props:     map[string]dbus.Variant{},
	}
}

// WithIdentity sets the vendor, product and serial descriptors
func (b *MonitorBuilder) WithIdentity(vendor, product, serial string) *MonitorBuilder {
	b.vendor = vendor
	b.product = product
	b.serial = serial
	return b
}

// WithMode appends a mode
func (b *MonitorBuilder) WithMode(mode *ModeBuilder) *MonitorBuilder {
	b.modes = append(b.modes, mode)
	return b
}

// WithDisplayName sets the display-name property
func (b *MonitorBuilder) WithDisplayName(name string) *MonitorBuilder {
	b.props["display-name"] = dbus.MakeVariant(name)
	return b
}

// Builtin flags the monitor as a built-in panel
func (b *MonitorBuilder) Builtin() *MonitorBuilder {
	b.props["is-builtin"] = dbus.MakeVariant(true)
	return b
}

// Spec creates the raw (ssss) monitor spec
func (b *MonitorBuilder) Spec() []interface{} {
	return []interface{}{b.connector, b.vendor, b.product, b.serial}
}

// Build creates the raw ((ssss)a(siiddada{sv})a{sv}) struct
func (b *MonitorBuilder) Build() []interface{} {
	modes := make([][]interface{}, 0, len(b.modes))
	for _, m := range b.modes {
		modes = append(modes, m.Build())
	}
	return []interface{}{b.Spec(), modes, copyProps(b.props)}
}

// LogicalMonitorBuilder provides a builder pattern for raw logical monitors
type LogicalMonitorBuilder struct {
	x         int32
	y         int32
	scale     float64
	transform uint32
	primary   bool
	monitors  []*MonitorBuilder
}

// NewLogicalMonitorBuilder creates a logical monitor at the origin driving monitors
func NewLogicalMonitorBuilder(monitors ...*MonitorBuilder) *LogicalMonitorBuilder {
	return &LogicalMonitorBuilder{scale: 1, monitors: monitors}
}

// At sets the position
func (b *LogicalMonitorBuilder) At(x, y int32) *LogicalMonitorBuilder {
	b.x = x
	b.y = y
	return b
}

// WithScale sets the scale factor
func (b *LogicalMonitorBuilder) WithScale(scale float64) *LogicalMonitorBuilder {
	b.scale = scale
	return b
}

// WithTransform sets the raw transform value
func (b *LogicalMonitorBuilder) WithTransform(transform uint32) *LogicalMonitorBuilder {
	b.transform = transform
	return b
}

// Primary flags the logical monitor as primary
func (b *LogicalMonitorBuilder) Primary() *LogicalMonitorBuilder {
	b.primary = true
	return b
}

// Build creates the raw (iiduba(ssss)a{sv}) struct
func (b *LogicalMonitorBuilder) Build() []interface{} {
	specs := make([][]interface{}, 0, len(b.monitors))
	for _, m := range b.monitors {
		specs = append(specs, m.Spec())
	}
	return []interface{}{b.x, b.y, b.scale, b.transform, b.primary, specs, map[string]dbus.Variant{}}
}

// ReplyBuilder provides a builder pattern for GetCurrentState reply bodies
type ReplyBuilder struct {
	serial   uint32
	monitors []*MonitorBuilder
	logical  []*LogicalMonitorBuilder
	props    map[string]dbus.Variant
}

// NewReplyBuilder creates an empty reply in logical layout mode
func NewReplyBuilder() *ReplyBuilder {
	return &ReplyBuilder{
		serial: 1,
		props: map[string]dbus.Variant{
			"layout-mode": dbus.MakeVariant(uint32(display.LayoutModeLogical)),
		},
	}
}

// WithSerial sets the snapshot serial
func (b *ReplyBuilder) WithSerial(serial uint32) *ReplyBuilder {
	b.serial = serial
	return b
}

// WithMonitor appends a monitor
func (b *ReplyBuilder) WithMonitor(m *MonitorBuilder) *ReplyBuilder {
	b.monitors = append(b.monitors, m)
	return b
}

// WithLogicalMonitor appends a logical monitor
func (b *ReplyBuilder) WithLogicalMonitor(lm *LogicalMonitorBuilder) *ReplyBuilder {
	b.logical = append(b.logical, lm)
	return b
}

// WithProperty sets a global property
func (b *ReplyBuilder) WithProperty(key string, value interface{}) *ReplyBuilder {
	b.props[key] = dbus.MakeVariant(value)
	return b
}

// Build creates the raw reply body
func (b *ReplyBuilder) Build() []interface{} {
	monitors := make([][]interface{}, 0, len(b.monitors))
	for _, m := range b.monitors {
		monitors = append(monitors, m.Build())
	}
	logical := make([][]interface{}, 0, len(b.logical))
	for _, lm := range b.logical {
		logical = append(logical, lm.Build())
	}
	return []interface{}{b.serial, monitors, logical, copyProps(b.props)}
}

// MustLoad builds the reply and loads it, panicking on error (for test convenience)
func (b *ReplyBuilder) MustLoad() *display.DisplayConfig {
	cfg, err := display.Load(b.Build())
	if err != nil {
		panic(fmt.Sprintf("failed to load test reply: %v", err))
	}
	return cfg
}

// SingleMonitorReply returns a DP-1 monitor at 1920x1080@60, current and
// preferred, in a primary logical monitor at the origin with scale 1.
func SingleMonitorReply() *ReplyBuilder {
	dp1 := NewMonitorBuilder("DP-1").
		WithMode(NewModeBuilder(1920, 1080, 60).Current().Preferred())
	return NewReplyBuilder().
		WithMonitor(dp1).
		WithLogicalMonitor(NewLogicalMonitorBuilder(dp1).Primary())
}

// DualMonitorReply returns a laptop panel next to an external monitor that
// is connected but not part of the layout.
func DualMonitorReply() *ReplyBuilder {
	panel := NewMonitorBuilder("eDP-1").
		WithIdentity("BOE", "0x0747", "0x00000000").
		WithDisplayName("Built-in display").
		Builtin().
		WithMode(NewModeBuilder(2560, 1600, 165.000).WithScales(2, 1, 1.25, 1.5, 1.75, 2).Current().Preferred()).
		WithMode(NewModeBuilder(2560, 1600, 60.000).WithScales(2, 1, 1.25, 1.5, 1.75, 2))
	external := NewMonitorBuilder("HDMI-1").
		WithIdentity("GSM", "LG ULTRAFINE", "104NTAB12345").
		WithMode(NewModeBuilder(3840, 2160, 59.997).WithScales(2, 1, 2).Preferred()).
		WithMode(NewModeBuilder(1920, 1080, 60.000))
	return NewReplyBuilder().
		WithSerial(42).
		WithProperty("supports-changing-layout-mode", false).
		WithProperty("global-scale-required", false).
		WithMonitor(panel).
		WithMonitor(external).
		WithLogicalMonitor(NewLogicalMonitorBuilder(panel).WithScale(2).Primary())
}

// ReplyFromConfig serializes the visible fields of a loaded configuration
// back into a raw reply body.
func ReplyFromConfig(cfg *display.DisplayConfig) []interface{} {
	monitors := make([][]interface{}, 0, len(cfg.Monitors))
	specs := make(map[string][]interface{}, len(cfg.Monitors))
	for _, m := range cfg.Monitors {
		spec := []interface{}{m.Connector, m.Vendor, m.Product, m.Serial}
		specs[m.Connector] = spec

		modes := make([][]interface{}, 0, len(m.Modes))
		for _, mode := range m.Modes {
			modes = append(modes, []interface{}{
				mode.ID, mode.Width, mode.Height, mode.RefreshRate, mode.PreferredScale,
				append([]float64(nil), mode.SupportedScales...),
				map[string]dbus.Variant{
					"is-current":    dbus.MakeVariant(mode.IsCurrent),
					"is-preferred":  dbus.MakeVariant(mode.IsPreferred),
					"is-interlaced": dbus.MakeVariant(mode.IsInterlaced),
				},
			})
		}
		monitors = append(monitors, []interface{}{spec, modes, map[string]dbus.Variant{
			"display-name":     dbus.MakeVariant(m.DisplayName),
			"is-builtin":       dbus.MakeVariant(m.IsBuiltin),
			"is-underscanning": dbus.MakeVariant(m.IsUnderscanning),
		}})
	}

	logical := make([][]interface{}, 0, len(cfg.LogicalMonitors))
	for _, lm := range cfg.LogicalMonitors {
		lmSpecs := make([][]interface{}, 0, len(lm.Connectors))
		for _, c := range lm.Connectors {
			lmSpecs = append(lmSpecs, specs[c])
		}
		logical = append(logical, []interface{}{
			lm.X, lm.Y, lm.Scale, uint32(lm.Transform), lm.Primary, lmSpecs, map[string]dbus.Variant{},
		})
	}

	props := map[string]dbus.Variant{
		"layout-mode":                   dbus.MakeVariant(uint32(cfg.Properties.LayoutMode)),
		"supports-mirroring":            dbus.MakeVariant(cfg.Properties.SupportsMirroring),
		"supports-changing-layout-mode": dbus.MakeVariant(cfg.Properties.SupportsChangingLayoutMode),
		"global-scale-required":         dbus.MakeVariant(cfg.Properties.GlobalScaleRequired),
		"legacy-ui-scaling-factor":      dbus.MakeVariant(cfg.Properties.LegacyUIScalingFactor),
	}
	return []interface{}{cfg.Serial, monitors, logical, props}
}

func copyProps(props map[string]dbus.Variant) map[string]dbus.Variant {
	out := make(map[string]dbus.Variant, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
