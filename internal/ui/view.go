package ui

import "github.com/DominicStewart/Intervally/internal/timer"

// UIViewImpl defines the interface for framework-specific UI implementations
type UIViewImpl interface {
	// Initialize is called after construction to set up framework-specific widgets
	// controller is used to handle UI events
	Initialize(controller *UIController)

	// SetupKeyboardHandlers sets up keyboard event handlers
	// controller is used to handle keyboard events
	SetupKeyboardHandlers(controller *UIController)

	// Run starts the UI framework and blocks until it exits
	Run() error

	// Stop stops the UI framework
	Stop()

	// Draw refreshes/redraws the UI
	Draw() error

	// --- Mode Management ---

	// SetMode switches the UI to the specified mode
	SetMode(mode UIMode)

	// GetCurrentMode returns the currently active UI mode
	GetCurrentMode() UIMode

	// --- Log View (shared across modes) ---

	// GetLogViewHeight returns the visible height of the log view
	GetLogViewHeight() int

	// ClearLogView clears the log view
	ClearLogView()

	// WriteLogLine writes a line to the log view
	WriteLogLine(line string) error

	// --- Workout Selection Mode ---

	// SetWorkoutList populates the workout selection list
	SetWorkoutList(workouts []timer.WorkoutDefinition)

	// --- Session Dashboard Mode ---

	// UpdateSnapshot updates the session display in the dashboard
	UpdateSnapshot(snap timer.Snapshot)

	// UpdateHeartRate updates the heart rate display
	UpdateHeartRate(bpm int)
}
