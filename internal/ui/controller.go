package ui

import (
	"errors"
	"log"
	"sync"

	"github.com/DominicStewart/Intervally/internal/store"
	"github.com/DominicStewart/Intervally/internal/timer"
)

// UIController handles UI events and coordinates the engine and the UIModel
type UIController struct {
	model    *UIModel
	engine   *timer.Engine
	prefs    *store.Preferences
	workouts []timer.WorkoutDefinition
	logger   *log.Logger

	mu       sync.RWMutex
	selected int
}

// NewUIController creates a new UIController with the given dependencies
func NewUIController(model *UIModel, engine *timer.Engine, prefs *store.Preferences, workouts []timer.WorkoutDefinition, logger *log.Logger) *UIController {
	if model == nil {
		panic("UIController: model cannot be nil")
	}
	if engine == nil {
		panic("UIController: engine cannot be nil")
	}
	if logger == nil {
		panic("UIController: logger cannot be nil")
	}

	c := &UIController{
		model:    model,
		engine:   engine,
		prefs:    prefs,
		workouts: workouts,
		logger:   logger,
		selected: -1,
	}

	// Reselect the workout from the previous launch, if it still exists.
	if prefs != nil {
		if last := prefs.LastWorkout(); last != "" {
			for i, def := range workouts {
				if def.Name == last {
					c.selected = i
					break
				}
			}
		}
	}

	return c
}

// Workouts returns the selectable workout list in display order
func (c *UIController) Workouts() []timer.WorkoutDefinition {
	return c.workouts
}

// SelectedWorkoutIndex returns the current selection, -1 when none
func (c *UIController) SelectedWorkoutIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// OnWorkoutSelected handles when a workout is chosen from the list. The
// session starts immediately and the UI switches to the dashboard.
func (c *UIController) OnWorkoutSelected(index int) {
	if index < 0 || index >= len(c.workouts) {
		c.logger.Printf("Invalid workout index: %d", index)
		return
	}

	c.mu.Lock()
	c.selected = index
	def := c.workouts[index]
	c.mu.Unlock()

	c.logger.Printf("Workout selected: %s", def.Name)
	if c.prefs != nil {
		c.prefs.SetLastWorkout(def.Name)
	}

	if err := c.engine.Start(def); err != nil {
		if errors.Is(err, timer.ErrSessionActive) {
			c.logger.Printf("A session is already active - stop it first (press x)")
		} else {
			c.logger.Printf("Cannot start %s: %v", def.Name, err)
		}
		return
	}
	c.model.SetMode(UIModeSessionDashboard)
}

// ToggleSession starts, pauses or resumes based on the current state
func (c *UIController) ToggleSession() {
	switch c.engine.Status() {
	case timer.StatusIdle:
		c.mu.RLock()
		index := c.selected
		c.mu.RUnlock()
		if index < 0 {
			c.logger.Printf("No workout selected - pick one in Workout Selection mode (press 1)")
			return
		}
		c.OnWorkoutSelected(index)
	case timer.StatusRunning:
		c.engine.Pause()
	case timer.StatusPaused:
		c.engine.Resume()
	case timer.StatusFinished:
		c.logger.Printf("Workout finished - press x to clear, then pick another")
	}
}

// StopSession discards the session and returns to the selection screen
func (c *UIController) StopSession() {
	wasIdle := c.engine.Status() == timer.StatusIdle
	c.engine.Stop()
	if !wasIdle {
		c.model.SetMode(UIModeWorkoutSelection)
	}
}

// SkipForward jumps to the next interval
func (c *UIController) SkipForward() {
	c.engine.SkipForward()
}

// SkipBackward rewinds to the previous interval
func (c *UIController) SkipBackward() {
	c.engine.SkipBackward()
}

// RequestLateJoin re-sends the session to companion listeners
func (c *UIController) RequestLateJoin() {
	c.engine.LateJoin()
}

// OnModeChange handles when the user requests a mode change
func (c *UIController) OnModeChange(mode UIMode) {
	if info, ok := GetUIModeInfo(mode); ok {
		c.logger.Printf("Switching to %s mode", info.DisplayName)
	}
	c.model.SetMode(mode)
}

// OnEscapeKey handles when the Escape key is pressed
func (c *UIController) OnEscapeKey() {
	c.model.RequestCloseApplication()
}
