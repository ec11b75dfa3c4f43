// Command phasewatch flies the mock circuit and prints what the phase
// detector makes of it, without a recorder or database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightrecorder/pkg/sim"
	"flightrecorder/pkg/sim/mocksim"
	"flightrecorder/pkg/trigger"
)

func main() {
	tick := flag.Duration("tick", time.Second, "Sampling interval")
	parked := flag.Duration("parked", 10*time.Second, "Time parked before the roll")
	cruise := flag.Duration("cruise", time.Minute, "Time at cruise altitude")
	gate := flag.String("gate", trigger.GateGroundRoll, "Departure gate (ground_roll or altitude)")
	quiet := flag.Bool("q", false, "Only print phase changes")
	flag.Parse()

	cfg := mocksim.DefaultConfig()
	cfg.DurationParked = *parked
	cfg.CruiseDuration = *cruise
	client := mocksim.NewClient(cfg)
	defer client.Close()

	settings := trigger.DefaultSettings()
	settings.DepartureGate = *gate
	logic := trigger.NewLogic(nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	fmt.Println("Phase watch started. Press Ctrl+C to exit.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt, shutting down...")
		cancel()
	}()

	ticker := time.NewTicker(*tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tel := sim.Sample(ctx, client)
			res := logic.Process(tel, settings)
			if *quiet && !res.Changed() {
				continue
			}
			fmt.Println(describe(now, client.Segment(), tel, res, logic.FilteredVerticalSpeed()))
		}
	}
}

// describe renders one tick as a single line.
func describe(now time.Time, segment string, tel *sim.Telemetry, res trigger.Result, filteredVS float64) string {
	ts := now.Format("15:04:05")
	if tel == nil {
		return fmt.Sprintf("[%s] %-8s | no sample | phase=%s", ts, segment, res.Phase)
	}
	line := fmt.Sprintf("[%s] %-8s | Ground=%-5v | AGL: %5.0f ft | Spd: %3.0f kts | VS: %5.0f fpm (filtered %5.0f) | phase=%s",
		ts, segment, tel.IsOnGround, tel.AltitudeAGL, tel.GroundSpeed, tel.VerticalSpeedFPM(), filteredVS, res.Phase)
	if res.Changed() {
		line += fmt.Sprintf(" <- %s", res.Previous)
	}
	if res.HasEvent {
		line += fmt.Sprintf(" [%s %s]", res.Event, res.Previous.Label())
	}
	return line
}
