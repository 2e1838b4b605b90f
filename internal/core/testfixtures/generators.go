package testfixtures

import (
	"pgregory.net/rapid"
)

// ConnectorPool holds connector names none of which is a substring of
// another, so reports can be searched for them without false matches.
var ConnectorPool = []string{
	"DP-1", "DP-2", "DP-3", "HDMI-A-1", "HDMI-A-2", "DVI-D-1", "VGA-1", "Virtual-1",
}

var resolutions = [][2]int32{
	{1280, 720}, {1920, 1080}, {1920, 1200}, {2560, 1440}, {3840, 2160},
}

var refreshRates = []float64{30, 59.94, 60, 75, 120, 143.981, 165}

// GeneratedState is a random reply together with the structure it encodes.
type GeneratedState struct {
	Reply      []interface{}
	Connectors []string
	// ModeIDs holds the mode identifiers per connector, in order.
	ModeIDs map[string][]string
	// Groups holds the connectors of each logical monitor, in order.
	Groups [][]string
}

// StateGenerator draws well-formed replies with 0 to len(ConnectorPool)
// monitors, at most one current mode per monitor and at most one primary
// logical monitor.
func StateGenerator() *rapid.Generator[GeneratedState] {
	return rapid.Custom(func(t *rapid.T) GeneratedState {
		pool := rapid.Permutation(ConnectorPool).Draw(t, "pool")
		connectors := pool[:rapid.IntRange(0, len(pool)).Draw(t, "monitorCount")]

		state := GeneratedState{
			Connectors: connectors,
			ModeIDs:    make(map[string][]string, len(connectors)),
		}
		reply := NewReplyBuilder().
			WithSerial(rapid.Uint32().Draw(t, "serial")).
			WithProperty("supports-mirroring", rapid.Bool().Draw(t, "mirroring"))

		builders := make([]*MonitorBuilder, 0, len(connectors))
		for _, c := range connectors {
			m := NewMonitorBuilder(c).WithIdentity(
				rapid.StringMatching(`[a-z]{0,6}`).Draw(t, "vendor"),
				rapid.StringMatching(`[a-z ]{0,12}`).Draw(t, "product"),
				rapid.StringMatching(`[0-9a-f]{0,8}`).Draw(t, "serial"),
			)

			modeCount := rapid.IntRange(0, 4).Draw(t, "modeCount")
			current := rapid.IntRange(-1, modeCount-1).Draw(t, "currentMode")
			seen := make(map[string]bool)
			for i := 0; i < modeCount; i++ {
				res := rapid.SampledFrom(resolutions).Draw(t, "resolution")
				mode := NewModeBuilder(res[0], res[1], rapid.SampledFrom(refreshRates).Draw(t, "refresh"))
				if seen[mode.ID()] {
					continue
				}
				seen[mode.ID()] = true
				if i == current {
					mode.Current()
				}
				if rapid.Bool().Draw(t, "preferred") {
					mode.Preferred()
				}
				m.WithMode(mode)
				state.ModeIDs[c] = append(state.ModeIDs[c], mode.ID())
			}
			builders = append(builders, m)
			reply.WithMonitor(m)
		}

		// Each monitor either stays out of the layout, opens a new logical
		// monitor or joins the last one (mirroring).
		var groups [][]*MonitorBuilder
		for _, m := range builders {
			switch choice := rapid.IntRange(0, 2).Draw(t, "placement"); {
			case choice == 0:
				continue
			case choice == 2 && len(groups) > 0:
				groups[len(groups)-1] = append(groups[len(groups)-1], m)
			default:
				groups = append(groups, []*MonitorBuilder{m})
			}
		}

		primary := rapid.IntRange(-1, len(groups)-1).Draw(t, "primary")
		for i, group := range groups {
			lm := NewLogicalMonitorBuilder(group...).
				At(rapid.Int32Range(-4096, 4096).Draw(t, "x"), rapid.Int32Range(-4096, 4096).Draw(t, "y")).
				WithScale(rapid.SampledFrom([]float64{1, 1.25, 1.5, 2}).Draw(t, "scale")).
				WithTransform(rapid.Uint32Range(0, 7).Draw(t, "transform"))
			if i == primary {
				lm.Primary()
			}
			reply.WithLogicalMonitor(lm)

			names := make([]string, 0, len(group))
			for _, m := range group {
				names = append(names, m.connector)
			}
			state.Groups = append(state.Groups, names)
		}

		state.Reply = reply.Build()
		return state
	})
}

// AbsentConnector draws a connector name that is not part of state.
func AbsentConnector(t *rapid.T, state GeneratedState) string {
	present := make(map[string]bool, len(state.Connectors))
	for _, c := range state.Connectors {
		present[c] = true
	}
	candidates := []string{"DP-9", "dp-1", "HDMI-B-1", "eDP-2"}
	for _, c := range ConnectorPool {
		if !present[c] {
			candidates = append(candidates, c)
		}
	}
	return rapid.SampledFrom(candidates).Draw(t, "absentConnector")
}
