package store

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DominicStewart/Intervally/internal/timer"
)

// presetFile is the YAML shape of a user presets file. Durations are whole
// seconds, which is the granularity people actually write workouts in.
type presetFile struct {
	Workouts []presetWorkout `yaml:"workouts"`
}

type presetWorkout struct {
	Name      string           `yaml:"name"`
	Cycles    int              `yaml:"cycles"`
	Intervals []presetInterval `yaml:"intervals"`
}

type presetInterval struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Seconds int    `yaml:"seconds"`
	Color   string `yaml:"color"`
	Cue     string `yaml:"cue"`
}

// PresetStore resolves the workout list: built-in definitions with the user's
// YAML presets layered on top. A user preset with a built-in's name replaces
// it.
type PresetStore struct {
	filePath string
	logger   *log.Logger
}

func NewPresetStore(filePath string, logger *log.Logger) *PresetStore {
	if logger == nil {
		panic("PresetStore: logger cannot be nil")
	}
	return &PresetStore{filePath: filePath, logger: logger}
}

// Definitions returns the merged workout list in display order: built-ins
// first (possibly overridden), then user-only presets in file order. A
// missing presets file is normal; a malformed one is an error so a typo does
// not silently vanish a workout.
func (s *PresetStore) Definitions() ([]timer.WorkoutDefinition, error) {
	builtins := timer.BuiltinDefinitions()

	raw, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.logger.Printf("PresetStore: no presets file at %s, using built-ins", s.filePath)
		return builtins, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading presets file %s: %w", s.filePath, err)
	}

	var file presetFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing presets file %s: %w", s.filePath, err)
	}

	defs := builtins
	for _, w := range file.Workouts {
		def, err := w.toDefinition()
		if err != nil {
			return nil, fmt.Errorf("presets file %s, workout %q: %w", s.filePath, w.Name, err)
		}
		if i := indexByName(defs, def.Name); i >= 0 {
			defs[i] = def
		} else {
			defs = append(defs, def)
		}
	}
	s.logger.Printf("PresetStore: loaded %d user presets from %s", len(file.Workouts), s.filePath)
	return defs, nil
}

func (w presetWorkout) toDefinition() (timer.WorkoutDefinition, error) {
	def := timer.WorkoutDefinition{
		Name:      w.Name,
		Cycles:    w.Cycles,
		Intervals: make([]timer.Interval, 0, len(w.Intervals)),
	}
	for _, iv := range w.Intervals {
		def.Intervals = append(def.Intervals, timer.Interval{
			ID:       iv.ID,
			Title:    iv.Title,
			Duration: time.Duration(iv.Seconds) * time.Second,
			Color:    iv.Color,
			Cue:      iv.Cue,
		})
	}
	if err := def.Validate(); err != nil {
		return timer.WorkoutDefinition{}, err
	}
	return def, nil
}

func indexByName(defs []timer.WorkoutDefinition, name string) int {
	for i, def := range defs {
		if def.Name == name {
			return i
		}
	}
	return -1
}
