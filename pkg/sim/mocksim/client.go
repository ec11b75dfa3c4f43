package mocksim

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"flightrecorder/pkg/sim"
)

const (
	// Flight segments of the scripted circuit
	SegmentParked  = "PARKED"
	SegmentRoll    = "ROLL"
	SegmentClimb   = "CLIMB"
	SegmentCruise  = "CRUISE"
	SegmentDescent = "DESCENT"
	SegmentRollout = "ROLLOUT"

	// Physics constants
	tickRateMs = 100

	knotsToMps = 0.514444
)

// Config holds timing and performance settings for the scripted flight.
type Config struct {
	DurationParked   time.Duration
	RollAcceleration float64 // kts per second
	RotateSpeed      float64 // kts
	ClimbRate        float64 // ft/min
	CruiseAltitude   float64 // ft AGL
	CruiseSpeed      float64 // kts
	CruiseDuration   time.Duration
	DescentRate      float64 // ft/min, positive
	RolloutDecel     float64 // kts per second
	StartLat         float64
	StartLon         float64
	StartAlt         float64 // ft MSL of the airfield
	StartHeading     *float64
}

// DefaultConfig returns a short circuit suitable for local runs.
func DefaultConfig() Config {
	return Config{
		DurationParked:   30 * time.Second,
		RollAcceleration: 4,
		RotateSpeed:      65,
		ClimbRate:        700,
		CruiseAltitude:   3000,
		CruiseSpeed:      110,
		CruiseDuration:   2 * time.Minute,
		DescentRate:      500,
		RolloutDecel:     5,
		StartLat:         51.6845,
		StartLon:         14.4234,
		StartAlt:         285,
	}
}

// MockClient implements sim.Client with a repeating traffic-circuit flight.
type MockClient struct {
	mu           sync.Mutex
	tel          sim.Telemetry
	segment      string
	segmentStart time.Time
	config       Config
	stopCh       chan struct{}
	wg           sync.WaitGroup
	state        sim.State
}

// NewClient creates a new mock simulator client and starts its physics loop.
func NewClient(cfg Config) *MockClient {
	m := newClient(cfg)
	m.wg.Add(1)
	go m.physicsLoop()
	return m
}

func newClient(cfg Config) *MockClient {
	now := time.Now()
	return &MockClient{
		config:       cfg,
		stopCh:       make(chan struct{}),
		segment:      SegmentParked,
		segmentStart: now,
		state:        sim.StateActive,
		tel: sim.Telemetry{
			Latitude:    cfg.StartLat,
			Longitude:   cfg.StartLon,
			AltitudeMSL: cfg.StartAlt,
			Heading:     getHeading(cfg.StartHeading),
			IsOnGround:  true,
			Timestamp:   now,
		},
	}
}

// GetTelemetry returns the current state of the simulated aircraft.
func (m *MockClient) GetTelemetry(ctx context.Context) (sim.Telemetry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == sim.StateDisconnected {
		return sim.Telemetry{}, sim.ErrNotConnected
	}
	return m.tel, nil
}

// GetState returns the current simulator connection/activity state.
func (m *MockClient) GetState() sim.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetState overrides the reported sim state (e.g. to emulate the pause menu).
func (m *MockClient) SetState(s sim.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// Segment returns the current scripted flight segment.
func (m *MockClient) Segment() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.segment
}

// Close stops the physics loop and releases resources.
func (m *MockClient) Close() error {
	close(m.stopCh)
	m.wg.Wait()
	return nil
}

func (m *MockClient) physicsLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(time.Duration(tickRateMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			m.step(float64(tickRateMs)/1000.0, now)
			m.mu.Unlock()
		}
	}
}

// step advances the simulation by dt seconds. Caller holds mu.
func (m *MockClient) step(dt float64, now time.Time) {
	segDuration := now.Sub(m.segmentStart)
	agl := m.tel.AltitudeMSL - m.config.StartAlt

	switch m.segment {
	case SegmentParked:
		m.tel.GroundSpeed = 0
		m.tel.VerticalSpeed = 0
		m.tel.IsOnGround = true
		if segDuration >= m.config.DurationParked {
			m.enter(SegmentRoll, now)
		}

	case SegmentRoll:
		m.tel.IsOnGround = true
		m.tel.VerticalSpeed = 0
		m.tel.GroundSpeed += m.config.RollAcceleration * dt
		if m.tel.GroundSpeed >= m.config.RotateSpeed {
			m.enter(SegmentClimb, now)
		}

	case SegmentClimb:
		m.tel.IsOnGround = false
		m.tel.GroundSpeed = math.Min(m.config.CruiseSpeed, m.tel.GroundSpeed+m.config.RollAcceleration*dt)
		m.tel.VerticalSpeed = m.config.ClimbRate / 60.0
		m.tel.AltitudeMSL += m.tel.VerticalSpeed * dt
		if m.tel.AltitudeMSL-m.config.StartAlt >= m.config.CruiseAltitude {
			m.tel.AltitudeMSL = m.config.StartAlt + m.config.CruiseAltitude
			m.enter(SegmentCruise, now)
		}

	case SegmentCruise:
		m.tel.VerticalSpeed = 0
		m.tel.GroundSpeed = m.config.CruiseSpeed
		if segDuration >= m.config.CruiseDuration {
			m.enter(SegmentDescent, now)
		}

	case SegmentDescent:
		m.tel.VerticalSpeed = -m.config.DescentRate / 60.0
		m.tel.AltitudeMSL += m.tel.VerticalSpeed * dt
		if agl+m.tel.VerticalSpeed*dt <= 0 {
			m.tel.AltitudeMSL = m.config.StartAlt
			m.tel.VerticalSpeed = 0
			m.tel.IsOnGround = true
			m.enter(SegmentRollout, now)
		}

	case SegmentRollout:
		m.tel.IsOnGround = true
		m.tel.VerticalSpeed = 0
		m.tel.GroundSpeed = math.Max(0, m.tel.GroundSpeed-m.config.RolloutDecel*dt)
		if m.tel.GroundSpeed == 0 {
			m.enter(SegmentParked, now)
		}
	}

	m.move(dt)
	m.tel.AltitudeAGL = math.Max(0, m.tel.AltitudeMSL-m.config.StartAlt)
	m.tel.Timestamp = now
}

func (m *MockClient) enter(segment string, now time.Time) {
	m.segment = segment
	m.segmentStart = now
}

// move advances the position along the current heading.
func (m *MockClient) move(dt float64) {
	distMeters := m.tel.GroundSpeed * knotsToMps * dt
	if distMeters <= 0 {
		return
	}
	next := geo.PointAtBearingAndDistance(orb.Point{m.tel.Longitude, m.tel.Latitude}, m.tel.Heading, distMeters)
	m.tel.Longitude = next.Lon()
	m.tel.Latitude = next.Lat()
}

func getHeading(h *float64) float64 {
	if h == nil {
		return rand.Float64() * 360.0
	}
	return *h
}
