package query

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gnome-randr.dev/cli/internal/core/display"
)

// TextRenderer renders a Selection as the human-readable query report.
type TextRenderer struct {
	color     bool
	connector lipgloss.Style
	heading   lipgloss.Style
	current   lipgloss.Style
	muted     lipgloss.Style
}

// NewTextRenderer creates a renderer. Styles are only applied when color
// is set, otherwise the output is plain text.
func NewTextRenderer(color bool) *TextRenderer {
	return &TextRenderer{
		color:     color,
		connector: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		heading:   lipgloss.NewStyle().Bold(true),
		current:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		muted:     lipgloss.NewStyle().Faint(true),
	}
}

func (r *TextRenderer) paint(style lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return style.Render(text)
}

// Render produces the report. Every selected connector name appears
// exactly once, on the first line of its monitor block.
func (r *TextRenderer) Render(sel Selection) string {
	var b strings.Builder

	if !sel.Filtered {
		r.renderHeader(&b, sel.Config)
	}

	for i, m := range sel.Monitors {
		if i > 0 || !sel.Filtered {
			b.WriteString("\n")
		}
		r.renderMonitor(&b, sel.Config, m)
	}
	return b.String()
}

func (r *TextRenderer) renderHeader(b *strings.Builder, cfg *display.DisplayConfig) {
	p := cfg.Properties
	fmt.Fprintf(b, "%s %s\n", r.paint(r.heading, "layout mode:"), p.LayoutMode)
	fmt.Fprintf(b, "%s %s\n", r.paint(r.heading, "supports mirroring:"), yesNo(p.SupportsMirroring))
	fmt.Fprintf(b, "%s %s\n", r.paint(r.heading, "supports changing layout mode:"), yesNo(p.SupportsChangingLayoutMode))
	fmt.Fprintf(b, "%s %s\n", r.paint(r.heading, "global scale required:"), yesNo(p.GlobalScaleRequired))
	if p.LegacyUIScalingFactor != 0 {
		fmt.Fprintf(b, "%s %d\n", r.paint(r.heading, "legacy ui scaling factor:"), p.LegacyUIScalingFactor)
	}
	fmt.Fprintf(b, "%s %d\n", r.paint(r.heading, "logical monitors:"), len(cfg.LogicalMonitors))
	fmt.Fprintf(b, "%s %d\n", r.paint(r.heading, "monitors:"), len(cfg.Monitors))
}

func (r *TextRenderer) renderMonitor(b *strings.Builder, cfg *display.DisplayConfig, m display.Monitor) {
	fmt.Fprintf(b, "%s vendor: %s, product: %s, serial: %s\n",
		r.paint(r.connector, m.Connector+":"), orUnknown(m.Vendor), orUnknown(m.Product), orUnknown(m.Serial))

	if m.DisplayName != "" {
		fmt.Fprintf(b, "  display name: %s\n", m.DisplayName)
	}
	if m.IsBuiltin {
		b.WriteString("  built-in\n")
	}

	if idx, lm, ok := cfg.LogicalMonitorFor(m.Connector); ok {
		fmt.Fprintf(b, "  logical monitor %d: %s\n", idx, describeLogicalMonitor(lm))
	} else {
		fmt.Fprintf(b, "  %s\n", r.paint(r.muted, "not in any logical monitor"))
	}

	if len(m.Modes) == 0 {
		fmt.Fprintf(b, "  %s\n", r.paint(r.muted, "no modes"))
		return
	}
	b.WriteString("  modes:\n")
	for _, mode := range m.Modes {
		line := r.describeMode(mode)
		if mode.IsCurrent {
			line = r.paint(r.current, line)
		}
		fmt.Fprintf(b, "    %s\n", line)
	}
}

func describeLogicalMonitor(lm display.LogicalMonitor) string {
	desc := fmt.Sprintf("position (%d,%d), scale %s, transform %s",
		lm.X, lm.Y, display.FormatDecimal(lm.Scale), lm.Transform)
	if lm.Primary {
		desc += ", primary"
	}
	return desc
}

func (r *TextRenderer) describeMode(mode display.Mode) string {
	var flags []string
	if mode.IsCurrent {
		flags = append(flags, "current")
	}
	if mode.IsPreferred {
		flags = append(flags, "preferred")
	}
	if mode.IsInterlaced {
		flags = append(flags, "interlaced")
	}

	line := mode.String()
	if len(flags) > 0 {
		line += " [" + strings.Join(flags, ", ") + "]"
	}
	if len(mode.SupportedScales) > 0 {
		scales := make([]string, 0, len(mode.SupportedScales))
		for _, s := range mode.SupportedScales {
			scale := display.FormatDecimal(s)
			if s == mode.PreferredScale {
				scale += "+"
			}
			scales = append(scales, scale)
		}
		line += " scales: " + strings.Join(scales, " ")
	}
	return line
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
