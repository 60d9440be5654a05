package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rivo/tview"
	"gopkg.in/natefinch/lumberjack.v2"
	"tinygo.org/x/bluetooth"

	"github.com/DominicStewart/Intervally/internal/alert"
	"github.com/DominicStewart/Intervally/internal/companion"
	"github.com/DominicStewart/Intervally/internal/config"
	"github.com/DominicStewart/Intervally/internal/hrm"
	"github.com/DominicStewart/Intervally/internal/safego"
	"github.com/DominicStewart/Intervally/internal/store"
	"github.com/DominicStewart/Intervally/internal/timer"
	"github.com/DominicStewart/Intervally/internal/ui"
)

// chanWriter tees log output into a channel for the UI log pane. Writes
// never block; if the UI falls behind, lines are dropped there but still
// reach the log file.
type chanWriter struct {
	ch chan string
}

func (w *chanWriter) Write(p []byte) (int, error) {
	select {
	case w.ch <- string(p):
	default:
	}
	return len(p), nil
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "intervally: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to tview, so all logging goes to a rotating file
	// plus the UI's log pane.
	uiLogChan := make(chan string, 256)
	fileWriter := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	}
	defer fileWriter.Close()
	logger := log.New(io.MultiWriter(fileWriter, &chanWriter{ch: uiLogChan}), "", log.LstdFlags)
	logger.Printf("intervally starting (poll %v)", cfg.PollInterval)

	dir := config.DefaultDir()
	prefs := store.NewPreferences(dir, logger)
	presets := store.NewPresetStore(cfg.PresetsFile, logger)
	workouts, err := presets.Definitions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "intervally: %v\n", err)
		os.Exit(1)
	}

	broadcaster := companion.NewBroadcaster(logger)
	engine := timer.NewEngine(logger,
		timer.WithPollInterval(cfg.PollInterval),
		timer.WithScheduler(alert.NewLogScheduler(logger)),
		timer.WithKeepAlive(alert.NewLogKeepAlive(logger)),
		timer.WithCompanion(broadcaster),
	)
	defer engine.Shutdown()

	announcer := alert.NewAnnouncer(logger, os.Stdout, engine)
	defer announcer.Close()

	model := ui.NewUIModel(engine, logger, uiLogChan)
	defer model.Shutdown()

	if cfg.EnableHRM {
		monitor := hrm.NewMonitor(bluetooth.DefaultAdapter, logger, cfg.HRMScanTimeout)
		if err := monitor.Start(prefs.PreferredHRMAddress()); err != nil {
			logger.Printf("HRM unavailable: %v", err)
		} else {
			defer monitor.Stop()
			readings := make(chan int, 8)
			unregister := monitor.ListenToReadings(readings)
			defer unregister()
			safego.Go(logger, func() {
				for bpm := range readings {
					model.SetHeartRate(bpm)
				}
			})
		}
	}

	controller := ui.NewUIController(model, engine, prefs, workouts, logger)

	app := tview.NewApplication()
	view := ui.NewBaseUIView(ui.NewBaseUIViewArg{
		UIViewImpl:   ui.NewCursesUIView(logger, app, model),
		UIModel:      model,
		UIController: controller,
		Logger:       logger,
	})
	defer view.Shutdown()

	if err := view.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "intervally: UI error: %v\n", err)
		os.Exit(1)
	}
	logger.Printf("intervally exiting")
}
