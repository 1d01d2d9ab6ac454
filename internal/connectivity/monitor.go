// Package connectivity tracks the shell's two liveness channels: a
// periodic pull-based health probe against the backend and the push
// channel's connected flag. The two are independent state machines — a
// real deployment can have one up and the other down.
package connectivity

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rcastell/wheelhouse/internal/backend"
	"github.com/rcastell/wheelhouse/internal/log"
)

// PollInterval is the fixed delay between the end of one health probe and
// the start of the next. There is no backoff: a failing backend is probed
// at the same cadence as a healthy one.
const PollInterval = 30 * time.Second

// HealthState classifies the pull channel.
type HealthState int

const (
	// HealthChecking is the state before the first probe resolves. The
	// monitor never returns to it.
	HealthChecking HealthState = iota
	HealthOnline
	HealthOffline
)

func (s HealthState) String() string {
	switch s {
	case HealthChecking:
		return "checking"
	case HealthOnline:
		return "online"
	case HealthOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only view of both channels. UptimeSeconds is set
// only while online and only when the backend reported one.
type Snapshot struct {
	Health             HealthState
	UptimeSeconds      *float64
	TransportConnected bool
}

// Prober runs one health probe against the backend.
type Prober interface {
	Health(ctx context.Context) (backend.HealthResponse, error)
}

// probeResultMsg carries the outcome of one health probe.
type probeResultMsg struct {
	err    error
	uptime *float64
}

// pollTickMsg fires when the post-result delay elapses.
type pollTickMsg struct{}

// Model tracks both liveness channels. Probes never overlap: each result
// schedules the next tick, so a slow backend stretches the effective
// period instead of stacking requests.
type Model struct {
	prober Prober

	health    HealthState
	uptime    float64
	hasUptime bool
	inFlight  bool

	transportConnected bool
}

// New creates a monitor in the checking state.
func New(prober Prober) Model {
	return Model{prober: prober, health: HealthChecking}
}

// Start begins the poll loop with an immediate first probe.
func (m Model) Start() (Model, tea.Cmd) {
	if m.inFlight {
		return m, nil
	}
	m.inFlight = true
	return m, m.probe()
}

// Update handles the monitor's own messages. Other messages pass through
// untouched.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case probeResultMsg:
		m.inFlight = false
		previous := m.health
		if msg.err != nil {
			m.health = HealthOffline
			m.hasUptime = false
			if previous != HealthOffline {
				log.Warn(log.CatMonitor, "Backend offline", "error", msg.err.Error())
			}
		} else {
			m.health = HealthOnline
			m.hasUptime = msg.uptime != nil
			if msg.uptime != nil {
				m.uptime = *msg.uptime
			}
			if previous != HealthOnline {
				log.Info(log.CatMonitor, "Backend online")
			}
		}
		return m, scheduleNextPoll()

	case pollTickMsg:
		if m.inFlight {
			return m, nil
		}
		m.inFlight = true
		return m, m.probe()
	}
	return m, nil
}

// SetTransportConnected mirrors the most recent push-channel event. The
// transport has no intermediate state: it is connected or it is not.
func (m Model) SetTransportConnected(connected bool) Model {
	if m.transportConnected != connected {
		if connected {
			log.Info(log.CatMonitor, "Transport connected")
		} else {
			log.Warn(log.CatMonitor, "Transport disconnected")
		}
	}
	m.transportConnected = connected
	return m
}

// Snapshot returns a copy of the current status of both channels.
func (m Model) Snapshot() Snapshot {
	s := Snapshot{
		Health:             m.health,
		TransportConnected: m.transportConnected,
	}
	if m.health == HealthOnline && m.hasUptime {
		uptime := m.uptime
		s.UptimeSeconds = &uptime
	}
	return s
}

// probe issues one health request off the event loop. Failures resolve
// into offline via the result message, never an error surface.
func (m Model) probe() tea.Cmd {
	prober := m.prober
	return func() tea.Msg {
		response, err := prober.Health(context.Background())
		if err != nil {
			return probeResultMsg{err: err}
		}
		return probeResultMsg{uptime: response.Uptime}
	}
}

func scheduleNextPoll() tea.Cmd {
	return tea.Tick(PollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}
