package query

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"gnome-randr.dev/cli/internal/core/display"
	"gnome-randr.dev/cli/internal/core/testfixtures"
)

func TestRunQuery_SingleMonitorReport(t *testing.T) {
	cfg := testfixtures.SingleMonitorReply().MustLoad()

	out, err := RunQuery(CommandOptions{}, cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "DP-1:")
	assert.Contains(t, out, "1920x1080@60 [current, preferred]")
	assert.Contains(t, out, "logical monitor 0: position (0,0), scale 1, transform normal, primary")
	assert.Contains(t, out, "layout mode: logical")
	assert.Contains(t, out, "logical monitors: 1")
	assert.True(t, strings.HasSuffix(out, "\n"), "report must be printable as-is")
}

func TestRunQuery_UnknownConnectorListsKnown(t *testing.T) {
	cfg := testfixtures.SingleMonitorReply().MustLoad()

	out, err := RunQuery(CommandOptions{Connector: "DP-2"}, cfg)
	require.Error(t, err)
	assert.Empty(t, out)

	var unknown *UnknownConnectorError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "DP-2", unknown.Connector)
	assert.Equal(t, []string{"DP-1"}, unknown.Known)
	assert.Equal(t, `unknown connector "DP-2" (known connectors: DP-1)`, err.Error())
}

func TestRunQuery_FilterIsExactAndCaseSensitive(t *testing.T) {
	cfg := testfixtures.DualMonitorReply().MustLoad()

	tests := []struct {
		name      string
		connector string
		wantErr   bool
	}{
		{name: "ExactMatch", connector: "HDMI-1"},
		{name: "LowerCase", connector: "hdmi-1", wantErr: true},
		{name: "Prefix", connector: "HDMI", wantErr: true},
		{name: "Substring", connector: "DP-1", wantErr: true},
		{name: "TrailingSpace", connector: "HDMI-1 ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := RunQuery(CommandOptions{Connector: tt.connector}, cfg)
			if tt.wantErr {
				var unknown *UnknownConnectorError
				require.True(t, errors.As(err, &unknown))
				assert.Equal(t, []string{"eDP-1", "HDMI-1"}, unknown.Known)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, "HDMI-1:"), "filtered report starts with the monitor")
			assert.NotContains(t, out, "eDP-1")
			assert.NotContains(t, out, "layout mode")
		})
	}
}

func TestRunQuery_DisabledMonitor(t *testing.T) {
	cfg := testfixtures.DualMonitorReply().MustLoad()

	out, err := RunQuery(CommandOptions{Connector: "HDMI-1"}, cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "vendor: GSM, product: LG ULTRAFINE, serial: 104NTAB12345")
	assert.Contains(t, out, "not in any logical monitor")
	assert.Contains(t, out, "3840x2160@60 [preferred] scales: 1 2+")
	assert.Contains(t, out, "1920x1080@60 scales: 1+\n")
	assert.NotContains(t, out, "current")
}

func TestRunQuery_BuiltinPanel(t *testing.T) {
	cfg := testfixtures.DualMonitorReply().MustLoad()

	out, err := RunQuery(CommandOptions{Connector: "eDP-1"}, cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "display name: Built-in display")
	assert.Contains(t, out, "built-in\n")
	assert.Contains(t, out, "logical monitor 0: position (0,0), scale 2, transform normal, primary")
	assert.Contains(t, out, "2560x1600@165 [current, preferred] scales: 1 1.25 1.5 1.75 2+")
}

func TestRunQuery_DoesNotMutateConfig(t *testing.T) {
	cfg := testfixtures.DualMonitorReply().MustLoad()
	before := testfixtures.DualMonitorReply().MustLoad()

	first, err := RunQuery(CommandOptions{}, cfg)
	require.NoError(t, err)
	_, err = RunQuery(CommandOptions{Connector: "HDMI-1", Format: FormatJSON}, cfg)
	require.NoError(t, err)
	_, err = RunQuery(CommandOptions{Connector: "nope"}, cfg)
	require.Error(t, err)
	second, err := RunQuery(CommandOptions{}, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, cfg)
}

func TestRunQuery_JSON(t *testing.T) {
	cfg := testfixtures.DualMonitorReply().MustLoad()

	out, err := RunQuery(CommandOptions{Format: FormatJSON}, cfg)
	require.NoError(t, err)

	var decoded struct {
		Serial     uint32 `json:"serial"`
		Properties struct {
			LayoutMode string `json:"layout_mode"`
		} `json:"properties"`
		Monitors []struct {
			Connector      string `json:"connector"`
			LogicalMonitor *struct {
				Index     int     `json:"index"`
				Scale     float64 `json:"scale"`
				Transform string  `json:"transform"`
				Primary   bool    `json:"primary"`
			} `json:"logical_monitor"`
		} `json:"monitors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, uint32(42), decoded.Serial)
	assert.Equal(t, "logical", decoded.Properties.LayoutMode)
	require.Len(t, decoded.Monitors, 2)
	assert.Equal(t, "eDP-1", decoded.Monitors[0].Connector)
	require.NotNil(t, decoded.Monitors[0].LogicalMonitor)
	assert.Equal(t, 2.0, decoded.Monitors[0].LogicalMonitor.Scale)
	assert.Equal(t, "normal", decoded.Monitors[0].LogicalMonitor.Transform)
	assert.True(t, decoded.Monitors[0].LogicalMonitor.Primary)
	assert.Nil(t, decoded.Monitors[1].LogicalMonitor)
}

func TestRunQuery_YAMLFiltered(t *testing.T) {
	cfg := testfixtures.DualMonitorReply().MustLoad()

	out, err := RunQuery(CommandOptions{Connector: "HDMI-1", Format: FormatYAML}, cfg)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))

	monitors, ok := decoded["monitors"].([]interface{})
	require.True(t, ok)
	require.Len(t, monitors, 1)
	monitor := monitors[0].(map[string]interface{})
	assert.Equal(t, "HDMI-1", monitor["connector"])
	assert.Equal(t, "GSM", monitor["vendor"])
	assert.NotContains(t, monitor, "logical_monitor")
}

func TestRunQuery_ColorOnlyWhenRequested(t *testing.T) {
	cfg := testfixtures.SingleMonitorReply().MustLoad()

	plain, err := RunQuery(CommandOptions{Color: false}, cfg)
	require.NoError(t, err)
	assert.NotContains(t, plain, "\x1b[")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatText},
		{input: "text", want: FormatText},
		{input: "json", want: FormatJSON},
		{input: "yaml", want: FormatYAML},
		{input: "JSON", wantErr: true},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnknownConnectorError_NoMonitors(t *testing.T) {
	cfg := testfixtures.NewReplyBuilder().MustLoad()

	_, err := RunQuery(CommandOptions{Connector: "DP-1"}, cfg)
	assert.EqualError(t, err, `unknown connector "DP-1" (no connectors available)`)
}

// Property-based tests

func TestRunQuery_UnfilteredMentionsEveryConnectorOnce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := loadGenerated(t)

		out, err := RunQuery(CommandOptions{}, cfg)
		if err != nil {
			t.Fatalf("unfiltered query failed: %v", err)
		}
		for _, c := range testfixtures.ConnectorPool {
			want := 0
			if _, ok := cfg.Monitor(c); ok {
				want = 1
			}
			if got := strings.Count(out, c); got != want {
				t.Fatalf("connector %s mentioned %d times, want %d\n%s", c, got, want, out)
			}
		}
	})
}

func TestRunQuery_FilterSelectsExactlyOneMonitor(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := loadGenerated(t)
		if len(cfg.Monitors) == 0 {
			t.Skip("no monitors to filter")
		}
		target := rapid.SampledFrom(cfg.Connectors()).Draw(t, "target")

		out, err := RunQuery(CommandOptions{Connector: target}, cfg)
		if err != nil {
			t.Fatalf("query for %s failed: %v", target, err)
		}
		if !strings.HasPrefix(out, target+":") {
			t.Fatalf("report does not start with %s:\n%s", target, out)
		}
		for _, c := range cfg.Connectors() {
			want := 0
			if c == target {
				want = 1
			}
			if got := strings.Count(out, c); got != want {
				t.Fatalf("connector %s mentioned %d times, want %d", c, got, want)
			}
		}
	})
}

func TestRunQuery_AbsentConnectorFails(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		state := testfixtures.StateGenerator().Draw(t, "state")
		cfg, err := display.Load(state.Reply)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		missing := testfixtures.AbsentConnector(t, state)

		out, err := RunQuery(CommandOptions{Connector: missing}, cfg)
		var unknown *UnknownConnectorError
		if !errors.As(err, &unknown) {
			t.Fatalf("expected UnknownConnectorError, got %v", err)
		}
		if out != "" {
			t.Fatalf("failed query returned a report: %q", out)
		}
		if unknown.Connector != missing {
			t.Fatalf("error names %q, want %q", unknown.Connector, missing)
		}
		assert.Equal(t, cfg.Connectors(), unknown.Known)
	})
}

func loadGenerated(t *rapid.T) *display.DisplayConfig {
	state := testfixtures.StateGenerator().Draw(t, "state")
	cfg, err := display.Load(state.Reply)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}
