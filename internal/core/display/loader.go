package display

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Wire layout of org.gnome.Mutter.DisplayConfig.GetCurrentState:
//
//	u                              serial
//	a((ssss)a(siiddada{sv})a{sv})  monitors
//	a(iiduba(ssss)a{sv})           logical monitors
//	a{sv}                          properties
const (
	replyArity          = 4
	monitorArity        = 3
	monitorSpecArity    = 4
	modeArity           = 7
	logicalMonitorArity = 7
)

// Load decodes the body of a GetCurrentState reply into a DisplayConfig.
// Any deviation from the wire layout, a duplicated connector or a logical
// monitor pointing at an unknown connector fails the whole load.
func Load(reply []interface{}) (*DisplayConfig, error) {
	if len(reply) != replyArity {
		return nil, malformed("reply", "expected %d values, got %d", replyArity, len(reply))
	}

	serial, err := asUint32(reply[0], "serial")
	if err != nil {
		return nil, err
	}

	rawMonitors, err := asList(reply[1], "monitors")
	if err != nil {
		return nil, err
	}
	monitors := make([]Monitor, 0, len(rawMonitors))
	for i, raw := range rawMonitors {
		m, err := decodeMonitor(raw, indexPath("monitors", i))
		if err != nil {
			return nil, err
		}
		monitors = append(monitors, m)
	}

	rawLogical, err := asList(reply[2], "logical_monitors")
	if err != nil {
		return nil, err
	}
	logical := make([]LogicalMonitor, 0, len(rawLogical))
	for i, raw := range rawLogical {
		lm, err := decodeLogicalMonitor(raw, indexPath("logical_monitors", i))
		if err != nil {
			return nil, err
		}
		logical = append(logical, lm)
	}

	props, err := decodeProperties(reply[3], "properties")
	if err != nil {
		return nil, err
	}

	cfg := &DisplayConfig{
		Serial:          serial,
		Monitors:        monitors,
		LogicalMonitors: logical,
		Properties:      props,
	}
	if err := cfg.checkReferences(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *DisplayConfig) checkReferences() error {
	known := make(map[string]bool, len(c.Monitors))
	for i, m := range c.Monitors {
		if known[m.Connector] {
			return malformed(indexPath("monitors", i)+".spec.connector", "duplicate connector %q", m.Connector)
		}
		known[m.Connector] = true
	}

	primary := -1
	drivenBy := make(map[string]int)
	for i, lm := range c.LogicalMonitors {
		path := indexPath("logical_monitors", i)
		if lm.Primary {
			if primary >= 0 {
				return malformed(path+".primary", "logical monitor %d is already primary", primary)
			}
			primary = i
		}
		for j, connector := range lm.Connectors {
			if !known[connector] {
				return &DanglingReferenceError{Connector: connector, LogicalMonitor: i}
			}
			if owner, ok := drivenBy[connector]; ok {
				return malformed(indexPath(path+".monitors", j)+".connector",
					"connector %q is already driven by logical monitor %d", connector, owner)
			}
			drivenBy[connector] = i
		}
	}
	return nil
}

func decodeMonitor(v interface{}, path string) (Monitor, error) {
	fields, err := asStruct(v, path, monitorArity)
	if err != nil {
		return Monitor{}, err
	}

	m, err := decodeMonitorSpec(fields[0], path+".spec")
	if err != nil {
		return Monitor{}, err
	}

	rawModes, err := asList(fields[1], path+".modes")
	if err != nil {
		return Monitor{}, err
	}
	m.Modes = make([]Mode, 0, len(rawModes))
	current := -1
	for i, raw := range rawModes {
		modePath := indexPath(path+".modes", i)
		mode, err := decodeMode(raw, modePath)
		if err != nil {
			return Monitor{}, err
		}
		if mode.IsCurrent {
			if current >= 0 {
				return Monitor{}, malformed(modePath+`.properties["is-current"]`, "mode %d is already current", current)
			}
			current = i
		}
		m.Modes = append(m.Modes, mode)
	}

	props, err := asDict(fields[2], path+".properties")
	if err != nil {
		return Monitor{}, err
	}
	propsPath := path + ".properties"
	if m.DisplayName, err = lookupString(props, "display-name", propsPath); err != nil {
		return Monitor{}, err
	}
	if m.IsBuiltin, err = lookupBool(props, "is-builtin", propsPath); err != nil {
		return Monitor{}, err
	}
	if m.IsUnderscanning, err = lookupBool(props, "is-underscanning", propsPath); err != nil {
		return Monitor{}, err
	}
	return m, nil
}

// decodeMonitorSpec reads the (connector, vendor, product, serial) tuple.
func decodeMonitorSpec(v interface{}, path string) (Monitor, error) {
	spec, err := asStruct(v, path, monitorSpecArity)
	if err != nil {
		return Monitor{}, err
	}
	var values [monitorSpecArity]string
	for i, name := range [...]string{"connector", "vendor", "product", "serial"} {
		if values[i], err = asString(spec[i], path+"."+name); err != nil {
			return Monitor{}, err
		}
	}
	if values[0] == "" {
		return Monitor{}, malformed(path+".connector", "connector must not be empty")
	}
	return Monitor{
		Connector: values[0],
		Vendor:    values[1],
		Product:   values[2],
		Serial:    values[3],
	}, nil
}

func decodeMode(v interface{}, path string) (Mode, error) {
	fields, err := asStruct(v, path, modeArity)
	if err != nil {
		return Mode{}, err
	}

	var mode Mode
	if mode.ID, err = asString(fields[0], path+".id"); err != nil {
		return Mode{}, err
	}
	if mode.Width, err = asInt32(fields[1], path+".width"); err != nil {
		return Mode{}, err
	}
	if mode.Height, err = asInt32(fields[2], path+".height"); err != nil {
		return Mode{}, err
	}
	if mode.RefreshRate, err = asFloat64(fields[3], path+".refresh_rate"); err != nil {
		return Mode{}, err
	}
	if mode.PreferredScale, err = asFloat64(fields[4], path+".preferred_scale"); err != nil {
		return Mode{}, err
	}
	if mode.SupportedScales, err = asFloat64List(fields[5], path+".supported_scales"); err != nil {
		return Mode{}, err
	}

	props, err := asDict(fields[6], path+".properties")
	if err != nil {
		return Mode{}, err
	}
	propsPath := path + ".properties"
	if mode.IsCurrent, err = lookupBool(props, "is-current", propsPath); err != nil {
		return Mode{}, err
	}
	if mode.IsPreferred, err = lookupBool(props, "is-preferred", propsPath); err != nil {
		return Mode{}, err
	}
	if mode.IsInterlaced, err = lookupBool(props, "is-interlaced", propsPath); err != nil {
		return Mode{}, err
	}
	return mode, nil
}

func decodeLogicalMonitor(v interface{}, path string) (LogicalMonitor, error) {
	fields, err := asStruct(v, path, logicalMonitorArity)
	if err != nil {
		return LogicalMonitor{}, err
	}

	var lm LogicalMonitor
	if lm.X, err = asInt32(fields[0], path+".x"); err != nil {
		return LogicalMonitor{}, err
	}
	if lm.Y, err = asInt32(fields[1], path+".y"); err != nil {
		return LogicalMonitor{}, err
	}
	if lm.Scale, err = asFloat64(fields[2], path+".scale"); err != nil {
		return LogicalMonitor{}, err
	}
	rawTransform, err := asUint32(fields[3], path+".transform")
	if err != nil {
		return LogicalMonitor{}, err
	}
	if lm.Transform, err = NewTransform(rawTransform); err != nil {
		return LogicalMonitor{}, &MalformedReplyError{Path: path + ".transform", Reason: err.Error()}
	}
	if lm.Primary, err = asBool(fields[4], path+".primary"); err != nil {
		return LogicalMonitor{}, err
	}

	specs, err := asList(fields[5], path+".monitors")
	if err != nil {
		return LogicalMonitor{}, err
	}
	lm.Connectors = make([]string, 0, len(specs))
	for i, raw := range specs {
		spec, err := decodeMonitorSpec(raw, indexPath(path+".monitors", i))
		if err != nil {
			return LogicalMonitor{}, err
		}
		lm.Connectors = append(lm.Connectors, spec.Connector)
	}

	// The trailing a{sv} carries nothing we report, but it must still be a
	// dictionary.
	if _, err := asDict(fields[6], path+".properties"); err != nil {
		return LogicalMonitor{}, err
	}
	return lm, nil
}

func decodeProperties(v interface{}, path string) (Properties, error) {
	props, err := asDict(v, path)
	if err != nil {
		return Properties{}, err
	}

	var p Properties
	layout, err := lookupUint32(props, "layout-mode", path)
	if err != nil {
		return Properties{}, err
	}
	p.LayoutMode = LayoutMode(layout)
	if p.SupportsMirroring, err = lookupBool(props, "supports-mirroring", path); err != nil {
		return Properties{}, err
	}
	if p.SupportsChangingLayoutMode, err = lookupBool(props, "supports-changing-layout-mode", path); err != nil {
		return Properties{}, err
	}
	if p.GlobalScaleRequired, err = lookupBool(props, "global-scale-required", path); err != nil {
		return Properties{}, err
	}
	if p.LegacyUIScalingFactor, err = lookupInt32(props, "legacy-ui-scaling-factor", path); err != nil {
		return Properties{}, err
	}
	return p, nil
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func keyPath(path, key string) string {
	return fmt.Sprintf("%s[%q]", path, key)
}

// asList accepts both shapes godbus produces for arrays of structs.
func asList(v interface{}, path string) ([]interface{}, error) {
	switch t := v.(type) {
	case []interface{}:
		return t, nil
	case [][]interface{}:
		list := make([]interface{}, len(t))
		for i, item := range t {
			list[i] = item
		}
		return list, nil
	default:
		return nil, malformed(path, "expected array, got %T", v)
	}
}

func asStruct(v interface{}, path string, arity int) ([]interface{}, error) {
	fields, ok := v.([]interface{})
	if !ok {
		return nil, malformed(path, "expected struct, got %T", v)
	}
	if len(fields) != arity {
		return nil, malformed(path, "expected %d fields, got %d", arity, len(fields))
	}
	return fields, nil
}

func asDict(v interface{}, path string) (map[string]interface{}, error) {
	switch t := v.(type) {
	case map[string]dbus.Variant:
		dict := make(map[string]interface{}, len(t))
		for k, variant := range t {
			dict[k] = variant.Value()
		}
		return dict, nil
	case map[string]interface{}:
		return t, nil
	default:
		return nil, malformed(path, "expected dictionary, got %T", v)
	}
}

func asString(v interface{}, path string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", malformed(path, "expected string, got %T", v)
	}
	return s, nil
}

func asInt32(v interface{}, path string) (int32, error) {
	i, ok := v.(int32)
	if !ok {
		return 0, malformed(path, "expected int32, got %T", v)
	}
	return i, nil
}

func asUint32(v interface{}, path string) (uint32, error) {
	u, ok := v.(uint32)
	if !ok {
		return 0, malformed(path, "expected uint32, got %T", v)
	}
	return u, nil
}

func asFloat64(v interface{}, path string) (float64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, malformed(path, "expected double, got %T", v)
	}
	return f, nil
}

func asBool(v interface{}, path string) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, malformed(path, "expected boolean, got %T", v)
	}
	return b, nil
}

func asFloat64List(v interface{}, path string) ([]float64, error) {
	switch t := v.(type) {
	case []float64:
		return append([]float64(nil), t...), nil
	case []interface{}:
		list := make([]float64, 0, len(t))
		for i, item := range t {
			f, err := asFloat64(item, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			list = append(list, f)
		}
		return list, nil
	default:
		return nil, malformed(path, "expected array of double, got %T", v)
	}
}

func lookupString(props map[string]interface{}, key, path string) (string, error) {
	v, ok := props[key]
	if !ok {
		return "", nil
	}
	return asString(v, keyPath(path, key))
}

func lookupBool(props map[string]interface{}, key, path string) (bool, error) {
	v, ok := props[key]
	if !ok {
		return false, nil
	}
	return asBool(v, keyPath(path, key))
}

func lookupInt32(props map[string]interface{}, key, path string) (int32, error) {
	v, ok := props[key]
	if !ok {
		return 0, nil
	}
	return asInt32(v, keyPath(path, key))
}

func lookupUint32(props map[string]interface{}, key, path string) (uint32, error) {
	v, ok := props[key]
	if !ok {
		return 0, nil
	}
	return asUint32(v, keyPath(path, key))
}
