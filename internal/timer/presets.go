package timer

import "time"

// BuiltinDefinitions returns the workouts shipped with the app, in display
// order. Callers get fresh copies each time; user presets from disk are
// merged on top of these by the store.
func BuiltinDefinitions() []WorkoutDefinition {
	return []WorkoutDefinition{
		{
			Name: "Run/Walk Starter",
			Intervals: []Interval{
				{ID: "run", Title: "Run", Duration: 240 * time.Second, Color: "green", Cue: "Run!"},
				{ID: "walk", Title: "Walk", Duration: 60 * time.Second, Color: "blue", Cue: "Walk it off"},
			},
			Cycles: 3,
		},
		{
			Name: "Tabata",
			Intervals: []Interval{
				{ID: "work", Title: "Work", Duration: 20 * time.Second, Color: "red", Cue: "Go hard!"},
				{ID: "rest", Title: "Rest", Duration: 10 * time.Second, Color: "grey"},
			},
			Cycles: 8,
		},
		{
			Name: "Boxing Rounds",
			Intervals: []Interval{
				{ID: "round", Title: "Round", Duration: 180 * time.Second, Color: "red", Cue: "Fight!"},
				{ID: "break", Title: "Break", Duration: 60 * time.Second, Color: "yellow", Cue: "Corner"},
			},
			Cycles: 12,
		},
		{
			Name: "Endless 30/30",
			Intervals: []Interval{
				{ID: "hard", Title: "Hard", Duration: 30 * time.Second, Color: "red"},
				{ID: "easy", Title: "Easy", Duration: 30 * time.Second, Color: "green"},
			},
			Cycles: 0, // until stopped
		},
	}
}
