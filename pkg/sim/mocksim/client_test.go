package mocksim

import (
	"context"
	"testing"
	"time"

	"flightrecorder/pkg/sim"
)

func waitForReq(t *testing.T, check func() bool, timeout time.Duration, msg string) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("Timeout waiting for: %s", msg)
}

func fastConfig() Config {
	north := 0.0
	return Config{
		DurationParked:   0,
		RollAcceleration: 20,
		RotateSpeed:      60,
		ClimbRate:        6000,
		CruiseAltitude:   2000,
		CruiseSpeed:      100,
		CruiseDuration:   time.Second,
		DescentRate:      6000,
		RolloutDecel:     50,
		StartAlt:         100,
		StartHeading:     &north,
	}
}

// runScript steps the physics deterministically and records the segments seen.
func runScript(m *MockClient, ticks int) []string {
	var seen []string
	now := time.Now()
	for i := 0; i < ticks; i++ {
		now = now.Add(100 * time.Millisecond)
		m.step(0.1, now)
		if len(seen) == 0 || seen[len(seen)-1] != m.segment {
			seen = append(seen, m.segment)
		}
	}
	return seen
}

func TestStep_FullCircuit(t *testing.T) {
	m := newClient(fastConfig())

	seen := runScript(m, 2000)

	want := []string{SegmentRoll, SegmentClimb, SegmentCruise, SegmentDescent, SegmentRollout, SegmentParked}
	if len(seen) < len(want) {
		t.Fatalf("segments = %v, want prefix %v", seen, want)
	}
	for i, s := range want {
		if seen[i] != s {
			t.Fatalf("segment %d = %s, want %s (all: %v)", i, seen[i], s, seen)
		}
	}
}

func TestStep_GroundFlags(t *testing.T) {
	m := newClient(fastConfig())
	now := time.Now()

	for i := 0; i < 2000; i++ {
		now = now.Add(100 * time.Millisecond)
		m.step(0.1, now)

		switch m.segment {
		case SegmentRoll, SegmentRollout, SegmentParked:
			if !m.tel.IsOnGround {
				t.Fatalf("%s: expected on ground", m.segment)
			}
			if m.tel.AltitudeAGL != 0 {
				t.Fatalf("%s: expected 0 AGL, got %v", m.segment, m.tel.AltitudeAGL)
			}
		case SegmentClimb:
			if m.tel.IsOnGround {
				t.Fatal("CLIMB: expected airborne")
			}
			if m.tel.VerticalSpeed <= 0 {
				t.Fatalf("CLIMB: expected positive VS, got %v", m.tel.VerticalSpeed)
			}
		case SegmentDescent:
			if m.tel.VerticalSpeed >= 0 {
				t.Fatalf("DESCENT: expected negative VS, got %v", m.tel.VerticalSpeed)
			}
		}
	}
}

func TestStep_MovesAlongHeading(t *testing.T) {
	m := newClient(fastConfig())
	runScript(m, 50)

	if m.tel.Latitude <= 0 {
		t.Errorf("expected northward movement, lat = %v", m.tel.Latitude)
	}
}

func TestClient_Live(t *testing.T) {
	client := NewClient(fastConfig())
	defer client.Close()

	ctx := context.Background()
	waitForReq(t, func() bool {
		tel, _ := client.GetTelemetry(ctx)
		return !tel.IsOnGround && tel.AltitudeAGL > 0
	}, 5*time.Second, "Airborne")
}

func TestClient_Disconnected(t *testing.T) {
	client := NewClient(fastConfig())
	defer client.Close()

	client.SetState(sim.StateDisconnected)
	if _, err := client.GetTelemetry(context.Background()); err != sim.ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if got := client.GetState(); got != sim.StateDisconnected {
		t.Errorf("GetState() = %v, want disconnected", got)
	}
}
