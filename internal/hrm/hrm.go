package hrm

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/DominicStewart/Intervally/internal/events"
	"github.com/DominicStewart/Intervally/internal/safego"
)

const (
	heartRateServiceUUID         = "0000180d-0000-1000-8000-00805f9b34fb"
	heartRateMeasurementCharUUID = "00002a37-0000-1000-8000-00805f9b34fb"
)

// Monitor finds a Bluetooth heart rate strap, subscribes to its measurement
// characteristic and publishes BPM readings. It is entirely optional; the
// timer runs fine without one.
type Monitor struct {
	adapter     *bluetooth.Adapter
	logger      *log.Logger
	scanTimeout time.Duration

	readings *events.Topic[int]

	mu      sync.Mutex
	device  *bluetooth.Device
	stopped bool
}

func NewMonitor(adapter *bluetooth.Adapter, logger *log.Logger, scanTimeout time.Duration) *Monitor {
	if logger == nil {
		panic("Monitor: logger cannot be nil")
	}
	if scanTimeout <= 0 {
		scanTimeout = 30 * time.Second
	}
	return &Monitor{
		adapter:     adapter,
		logger:      logger,
		scanTimeout: scanTimeout,
		readings:    events.NewTopic[int](true),
	}
}

// ListenToReadings registers a channel for BPM values. The last reading is
// replayed on registration. Returns a deregistration function.
func (m *Monitor) ListenToReadings(ch chan<- int) func() {
	return m.readings.SubscribeChan(ch)
}

// Start enables the adapter and begins the scan-connect-subscribe sequence
// on a background goroutine. preferredAddress, when non-empty, restricts the
// scan to that device.
func (m *Monitor) Start(preferredAddress string) error {
	if err := m.adapter.Enable(); err != nil {
		return fmt.Errorf("enabling bluetooth adapter: %w", err)
	}
	safego.Go(m.logger, func() {
		if err := m.run(preferredAddress); err != nil {
			m.logger.Printf("HRM: %v", err)
		}
	})
	return nil
}

// Stop disconnects from the strap, if connected.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.stopped = true
	device := m.device
	m.device = nil
	m.mu.Unlock()

	_ = m.adapter.StopScan()
	if device != nil {
		if err := device.Disconnect(); err != nil {
			m.logger.Printf("HRM: disconnect failed: %v", err)
		}
	}
}

func (m *Monitor) run(preferredAddress string) error {
	result, err := m.scan(preferredAddress)
	if err != nil {
		return err
	}

	m.logger.Printf("HRM: connecting to %s (%s)", result.LocalName(), result.Address.String())
	device, err := m.adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", result.Address.String(), err)
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return device.Disconnect()
	}
	m.device = &device
	m.mu.Unlock()

	return m.subscribe(device)
}

func (m *Monitor) scan(preferredAddress string) (bluetooth.ScanResult, error) {
	serviceUUID, err := bluetooth.ParseUUID(heartRateServiceUUID)
	if err != nil {
		return bluetooth.ScanResult{}, fmt.Errorf("parsing heart rate service UUID: %w", err)
	}

	found := make(chan bluetooth.ScanResult, 1)
	timer := time.AfterFunc(m.scanTimeout, func() {
		_ = m.adapter.StopScan()
	})
	defer timer.Stop()

	m.logger.Printf("HRM: scanning for a heart rate monitor (timeout %v)", m.scanTimeout)
	err = m.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		if preferredAddress != "" && result.Address.String() != preferredAddress {
			return
		}
		if preferredAddress == "" {
			match := false
			for _, uuid := range result.ServiceUUIDs() {
				if uuid == serviceUUID {
					match = true
					break
				}
			}
			if !match {
				return
			}
		}
		select {
		case found <- result:
		default:
		}
		_ = adapter.StopScan()
	})
	if err != nil {
		return bluetooth.ScanResult{}, fmt.Errorf("scanning: %w", err)
	}

	select {
	case result := <-found:
		return result, nil
	default:
		return bluetooth.ScanResult{}, errors.New("no heart rate monitor found")
	}
}

func (m *Monitor) subscribe(device bluetooth.Device) error {
	serviceUUID, err := bluetooth.ParseUUID(heartRateServiceUUID)
	if err != nil {
		return err
	}
	charUUID, err := bluetooth.ParseUUID(heartRateMeasurementCharUUID)
	if err != nil {
		return err
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil || len(services) == 0 {
		return fmt.Errorf("discovering heart rate service: %w", err)
	}
	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{charUUID})
	if err != nil || len(chars) == 0 {
		return fmt.Errorf("discovering heart rate characteristic: %w", err)
	}

	err = chars[0].EnableNotifications(func(buf []byte) {
		bpm, err := parseHeartRateMeasurement(buf)
		if err != nil {
			m.logger.Printf("HRM: bad measurement: %v", err)
			return
		}
		m.readings.Publish(bpm)
	})
	if err != nil {
		return fmt.Errorf("enabling heart rate notifications: %w", err)
	}
	m.logger.Printf("HRM: receiving heart rate notifications")
	return nil
}

// parseHeartRateMeasurement decodes a Heart Rate Measurement characteristic
// value. Bit 0 of the flags byte selects an 8 or 16 bit little-endian value.
// See: https://www.bluetooth.com/specifications/specs/heart-rate-service-1-0/
func parseHeartRateMeasurement(buf []byte) (int, error) {
	if len(buf) < 2 {
		return 0, fmt.Errorf("heart rate data too short: %d bytes", len(buf))
	}
	flags := buf[0]
	if flags&0x01 != 0 {
		if len(buf) < 3 {
			return 0, fmt.Errorf("heart rate UINT16 data too short: %d bytes", len(buf))
		}
		return int(uint16(buf[1]) | uint16(buf[2])<<8), nil
	}
	return int(buf[1]), nil
}
