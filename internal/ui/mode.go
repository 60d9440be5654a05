package ui

// UIMode represents the current UI mode/screen
type UIMode int

const (
	UIModeWorkoutSelection UIMode = iota // Pick a workout to run
	UIModeSessionDashboard               // Live session display and controls
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	KeyBinding  rune // The number key to activate this mode (1-9)
}

// AllUIModes defines all available UI modes in order
var AllUIModes = []UIModeInfo{
	{Mode: UIModeWorkoutSelection, DisplayName: "Workout Selection", KeyBinding: '1'},
	{Mode: UIModeSessionDashboard, DisplayName: "Session Dashboard", KeyBinding: '2'},
}

// GetUIModeByKey returns the mode for a given key binding
func GetUIModeByKey(key rune) (UIMode, bool) {
	for _, info := range AllUIModes {
		if info.KeyBinding == key {
			return info.Mode, true
		}
	}
	return 0, false
}

// GetUIModeInfo returns the display information for a mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}
