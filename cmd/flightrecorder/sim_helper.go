package main

import (
	"context"
	"log/slog"
	"time"

	"flightrecorder/pkg/config"
	"flightrecorder/pkg/sim"
	"flightrecorder/pkg/sim/mocksim"
)

func initializeSimClient(ctx context.Context, prov config.Provider) sim.Client {
	simSource := prov.SimProvider(ctx)
	if simSource != "mock" {
		slog.Warn("Unknown sim source, falling back to Mock", "source", simSource)
	}
	slog.Info("Sim Source: Mock")
	return mocksim.NewClient(mockConfig(prov.AppConfig().Sim.Mock))
}

// mockConfig overlays the configured circuit on the mock defaults.
// Zero values keep the default.
func mockConfig(mc config.MockSimConfig) mocksim.Config {
	cfg := mocksim.DefaultConfig()
	if mc.StartLat != 0 || mc.StartLon != 0 {
		cfg.StartLat = mc.StartLat
		cfg.StartLon = mc.StartLon
	}
	if mc.StartAlt != 0 {
		cfg.StartAlt = mc.StartAlt
	}
	cfg.StartHeading = mc.StartHeading
	if mc.DurationParked > 0 {
		cfg.DurationParked = time.Duration(mc.DurationParked)
	}
	if mc.CruiseAltitude > 0 {
		cfg.CruiseAltitude = mc.CruiseAltitude
	}
	if mc.CruiseDuration > 0 {
		cfg.CruiseDuration = time.Duration(mc.CruiseDuration)
	}
	if mc.ClimbRate > 0 {
		cfg.ClimbRate = mc.ClimbRate
	}
	if mc.DescentRate > 0 {
		cfg.DescentRate = mc.DescentRate
	}
	return cfg
}
