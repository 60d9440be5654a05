package ui

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/DominicStewart/Intervally/internal/timer"
)

// Page names for tview.Pages
const (
	pageWorkoutSelection = "workout_selection"
	pageSessionDashboard = "session_dashboard"
)

const progressBarWidth = 30

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger      *log.Logger
	app         *tview.Application
	model       *UIModel
	currentMode UIMode

	// Root container that holds all pages
	pages *tview.Pages

	// Shared components (visible in all modes)
	logView  *tview.TextView
	mainFlex *tview.Flex // Main layout: mode content on left, logs on right

	// Workout Selection mode components
	workoutSelectionFlex *tview.Flex
	workoutList          *tview.List
	workoutDetailsPanel  *tview.TextView
	workouts             []timer.WorkoutDefinition

	// Session Dashboard mode components
	sessionDashboardFlex *tview.Flex
	sessionPanel         *tview.TextView
	heartRatePanel       *tview.TextView
	lastHeartRate        int
}

func NewCursesUIView(logger *log.Logger, app *tview.Application, model *UIModel) *CursesUIViewImpl {
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		model:       model,
		currentMode: UIModeWorkoutSelection,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// Create shared log view
	// Note: Don't use SetChangedFunc with app.Draw() - it can cause hangs during shutdown
	// when the app has been stopped but log messages are still being written.
	// The BaseUIView's event listeners already call Draw() after updating content.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	// Create pages container for mode switching
	ui.pages = tview.NewPages()

	// Initialize each mode
	ui.initWorkoutSelectionMode(controller)
	ui.initSessionDashboardMode(controller)

	// Add pages
	ui.pages.AddPage(pageWorkoutSelection, ui.workoutSelectionFlex, true, true)
	ui.pages.AddPage(pageSessionDashboard, ui.sessionDashboardFlex, true, false)

	// Create main layout: pages on left, logs on right
	ui.mainFlex = tview.NewFlex().
		AddItem(ui.pages, 0, 2, true).
		AddItem(ui.logView, 0, 1, false)
}

// initWorkoutSelectionMode sets up the Workout Selection mode UI
func (ui *CursesUIViewImpl) initWorkoutSelectionMode(controller *UIController) {
	ui.workoutList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.logger.Printf("UI: Workout selected: index=%d, name=%s", index, mainText)
			controller.OnWorkoutSelected(index)
		}).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.updateWorkoutDetailsDisplay(index)
		})
	ui.workoutList.SetBorder(true).SetTitle(" Workouts ")

	ui.workoutDetailsPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.workoutDetailsPanel.SetBorder(true).SetTitle(" Workout Details ")
	ui.updateWorkoutDetailsDisplay(-1)

	ui.workoutSelectionFlex = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.workoutList, 0, 1, true).
		AddItem(ui.workoutDetailsPanel, 0, 1, false)
}

// initSessionDashboardMode sets up the Session Dashboard mode UI
func (ui *CursesUIViewImpl) initSessionDashboardMode(controller *UIController) {
	ui.sessionPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.sessionPanel.SetBorder(true).SetTitle(" Session ")
	ui.updateSessionDisplay(timer.Snapshot{Status: timer.StatusIdle})

	ui.heartRatePanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.heartRatePanel.SetBorder(true).SetTitle(" Heart Rate ")
	ui.updateHeartRateDisplay(0)

	ui.sessionDashboardFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.sessionPanel, 0, 1, true).
		AddItem(ui.heartRatePanel, 4, 0, false)
}

// SetWorkoutList populates the workout selection list
func (ui *CursesUIViewImpl) SetWorkoutList(workouts []timer.WorkoutDefinition) {
	ui.workouts = workouts
	ui.workoutList.Clear()

	for _, def := range workouts {
		ui.workoutList.AddItem(def.Name, formatDefinitionSummary(def), 0, nil)
	}

	if len(workouts) > 0 {
		ui.updateWorkoutDetailsDisplay(0)
	}
}

// updateWorkoutDetailsDisplay formats and displays the workout details
func (ui *CursesUIViewImpl) updateWorkoutDetailsDisplay(index int) {
	if ui.workoutDetailsPanel == nil {
		return
	}

	var text string

	if index < 0 || index >= len(ui.workouts) {
		text = "\n\n  [yellow]Workout Selection[white]\n\n"
		text += "  Select a workout from the list to view details.\n\n"
		text += "  [gray]Press Enter to start the selected workout.[white]\n"
	} else {
		def := ui.workouts[index]
		text = "\n"
		text += fmt.Sprintf("  [yellow]%s[white]\n\n", def.Name)
		text += fmt.Sprintf("  [gray]Length:[white] %s\n", formatDefinitionSummary(def))
		text += fmt.Sprintf("  [gray]Intervals per cycle:[white] %d\n\n", len(def.Intervals))

		text += "  [gray]Structure:[white]\n"
		for i, iv := range def.Intervals {
			color := iv.Color
			if color == "" {
				color = "white"
			}
			text += fmt.Sprintf("    %d. [%s]%s[white] for %s\n", i+1, color, iv.Title, formatDurationMMSS(iv.Duration))
		}
		text += "\n  [green]Press Enter to start this workout[white]\n"
	}

	ui.workoutDetailsPanel.SetText(text)
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}

	ui.currentMode = mode

	switch mode {
	case UIModeWorkoutSelection:
		ui.pages.SwitchToPage(pageWorkoutSelection)
		ui.app.SetFocus(ui.workoutList)
	case UIModeSessionDashboard:
		ui.pages.SwitchToPage(pageSessionDashboard)
		ui.app.SetFocus(ui.sessionPanel)
	}

	ui.app.Draw()
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Number keys for mode switching (1-9)
		if event.Key() == tcell.KeyRune {
			if mode, ok := GetUIModeByKey(event.Rune()); ok {
				controller.OnModeChange(mode)
				return nil
			}
		}

		// Escape to quit
		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		// Session controls work in either mode; a paused workout should be
		// resumable without hunting for the right screen first.
		if event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case ' ':
				controller.ToggleSession()
				return nil
			case 'n':
				controller.SkipForward()
				return nil
			case 'b':
				controller.SkipBackward()
				return nil
			case 'x':
				controller.StopSession()
				return nil
			case 'j':
				controller.RequestLateJoin()
				return nil
			}
		}

		return event
	})
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, line)
	return err
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	ui.app.SetRoot(ui.mainFlex, true)
	ui.app.SetFocus(ui.workoutList)
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}

// UpdateSnapshot updates the session display in the dashboard
func (ui *CursesUIViewImpl) UpdateSnapshot(snap timer.Snapshot) {
	ui.updateSessionDisplay(snap)
}

// UpdateHeartRate updates the heart rate display
func (ui *CursesUIViewImpl) UpdateHeartRate(bpm int) {
	ui.lastHeartRate = bpm
	ui.updateHeartRateDisplay(bpm)
}

func (ui *CursesUIViewImpl) updateSessionDisplay(snap timer.Snapshot) {
	if ui.sessionPanel == nil {
		return
	}

	var text string

	switch snap.Status {
	case timer.StatusIdle:
		text = "\n\n  [yellow]Session Dashboard[white]\n\n"
		text += "  No session running.\n\n"
		text += "  Pick a workout in Workout Selection mode (press 1),\n"
		text += "  or press Space to start the last selection.\n"
	case timer.StatusFinished:
		text = "\n\n  [green]Workout complete![white]\n\n"
		text += fmt.Sprintf("  [gray]Workout:[white] %s\n", snap.Workout)
		text += fmt.Sprintf("  [gray]Total time:[white] %s\n\n", formatDurationMMSS(snap.Elapsed))
		text += "  [gray]Press x to clear the session.[white]\n"
	default:
		color := snap.Interval.Color
		if color == "" {
			color = "white"
		}

		text = "\n"
		text += fmt.Sprintf("  [gray]Workout:[white] %s\n\n", snap.Workout)
		text += fmt.Sprintf("  [%s::b]%s[white::-]\n\n", color, snap.Interval.Title)
		text += fmt.Sprintf("  [gray]Remaining:[white] [yellow]%s[white]\n", formatDurationMMSS(snap.Remaining))
		text += fmt.Sprintf("  %s\n\n", progressBar(snap.Progress, color))
		if snap.TotalCycles > 0 {
			text += fmt.Sprintf("  [gray]Cycle:[white]     %d / %d\n", snap.Cycle, snap.TotalCycles)
		} else {
			text += fmt.Sprintf("  [gray]Cycle:[white]     %d\n", snap.Cycle)
		}
		text += fmt.Sprintf("  [gray]Elapsed:[white]   %s\n", formatDurationMMSS(snap.Elapsed))
		if snap.NextInterval != nil {
			text += fmt.Sprintf("  [gray]Up next:[white]   %s\n", snap.NextInterval.Title)
		} else {
			text += "  [gray]Up next:[white]   Finish\n"
		}
		if snap.Status == timer.StatusPaused {
			text += "\n  [yellow]PAUSED[white] - press Space to resume\n"
		} else {
			text += "\n  [gray]Space pause  |  n/b skip  |  x stop[white]\n"
		}
	}

	ui.sessionPanel.SetText(text)
}

func (ui *CursesUIViewImpl) updateHeartRateDisplay(bpm int) {
	if ui.heartRatePanel == nil {
		return
	}
	if bpm <= 0 {
		ui.heartRatePanel.SetText("\n  [gray]No heart rate monitor[white]")
		return
	}
	ui.heartRatePanel.SetText(fmt.Sprintf("\n  [red]♥[white] [yellow]%d[white] bpm", bpm))
}

// progressBar renders position as a fixed-width bar in the given color
func progressBar(progress float64, color string) string {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	filled := int(progress * progressBarWidth)
	return fmt.Sprintf("[%s]%s[gray]%s[white]",
		color,
		strings.Repeat("█", filled),
		strings.Repeat("░", progressBarWidth-filled))
}

func formatDefinitionSummary(def timer.WorkoutDefinition) string {
	if total, ok := def.TotalDuration(); ok {
		return fmt.Sprintf("%s, %d cycles", formatDuration(total), def.Cycles)
	}
	return fmt.Sprintf("%s per cycle, until stopped", formatDuration(def.CycleDuration()))
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes >= 60 {
		hours := minutes / 60
		mins := minutes % 60
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%d min", minutes)
}

// formatDurationMMSS formats a duration as MM:SS
func formatDurationMMSS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
