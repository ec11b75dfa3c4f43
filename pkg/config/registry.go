package config

// Persistent state keys (Registry)
const (
	KeyFlightInitiatedAltitude   = "trigger.flight_initiated_altitude"
	KeyLandingTransitionAltitude = "trigger.landing_transition_altitude"
	KeyLandingVSThreshold        = "trigger.landing_vs_threshold"
	KeyRecordTakeoff             = "trigger.record_takeoff"
	KeyRecordLanding             = "trigger.record_landing"
	KeyDepartureGate             = "trigger.departure_gate"
	KeyVSFilterAlpha             = "trigger.vs_filter_alpha"
	KeyRecordingRetention        = "recorder.retention"
	KeySimSource                 = "sim_source"
)
