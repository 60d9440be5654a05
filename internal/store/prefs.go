package store

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

type preferencesData struct {
	LastWorkout         string `json:"last_workout"`
	PreferredHRMAddress string `json:"preferred_hrm_address"`
}

// Preferences remembers small bits of UI state across launches: the last
// workout the user picked and the heart rate monitor to auto-connect.
// Load and save failures are logged and swallowed; preferences are never
// worth failing a launch over.
type Preferences struct {
	filePath string
	data     preferencesData
	logger   *log.Logger
}

func NewPreferences(dir string, logger *log.Logger) *Preferences {
	if logger == nil {
		panic("Preferences: logger cannot be nil")
	}
	p := &Preferences{
		filePath: filepath.Join(dir, "preferences.json"),
		logger:   logger,
	}
	p.load()
	return p
}

func (p *Preferences) LastWorkout() string {
	return p.data.LastWorkout
}

func (p *Preferences) SetLastWorkout(name string) {
	p.logger.Printf("Preferences: last workout -> %q", name)
	p.data.LastWorkout = name
	p.save()
}

func (p *Preferences) PreferredHRMAddress() string {
	return p.data.PreferredHRMAddress
}

func (p *Preferences) SetPreferredHRMAddress(address string) {
	p.logger.Printf("Preferences: preferred HRM -> %q", address)
	p.data.PreferredHRMAddress = address
	p.save()
}

func (p *Preferences) load() {
	raw, err := os.ReadFile(p.filePath)
	if err != nil {
		p.logger.Printf("Preferences: load %s (no existing file)", p.filePath)
		return
	}
	if err := json.Unmarshal(raw, &p.data); err != nil {
		p.logger.Printf("Preferences: load %s failed to parse: %v", p.filePath, err)
		p.data = preferencesData{}
	}
}

func (p *Preferences) save() {
	if err := os.MkdirAll(filepath.Dir(p.filePath), 0755); err != nil {
		p.logger.Printf("Preferences: save mkdir failed: %v", err)
		return
	}
	raw, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		p.logger.Printf("Preferences: save marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(p.filePath, raw, 0644); err != nil {
		p.logger.Printf("Preferences: save %s failed: %v", p.filePath, err)
	}
}
