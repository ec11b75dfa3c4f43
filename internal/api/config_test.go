package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightrecorder/pkg/config"
)

type mockStateStore struct {
	mu   sync.Mutex
	data map[string]string
	fail error
}

func (m *mockStateStore) GetState(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mockStateStore) SetState(_ context.Context, key, val string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = val
	return nil
}

func (m *mockStateStore) DeleteState(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestConfigHandler_GetTrigger(t *testing.T) {
	prov := config.NewProvider(config.DefaultConfig(), &mockStateStore{})
	h := NewConfigHandler(prov)

	w := httptest.NewRecorder()
	h.HandleGetTrigger(w, httptest.NewRequest("GET", "/api/config/trigger", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	var got TriggerConfigResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "mock", got.SimSource)
	assert.Equal(t, 1500.0, got.LandingTransitionAltitude)
	assert.Equal(t, -250.0, got.LandingVSThreshold)
	assert.Equal(t, config.GateGroundRoll, got.DepartureGate)
	assert.Equal(t, "720h0m0s", got.Retention)
}

func TestConfigHandler_SetTrigger(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(*testing.T, config.Provider)
	}{
		{
			name:       "Partial update keeps other values",
			body:       `{"landing_transition_altitude": 1200, "record_takeoff": false}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, p config.Provider) {
				tc := p.TriggerSettings(context.Background())
				assert.Equal(t, 1200.0, tc.LandingTransitionAltitude)
				assert.False(t, tc.RecordTakeoff)
				assert.True(t, tc.RecordLanding)
				assert.Equal(t, 2500.0, tc.FlightInitiatedAltitude)
			},
		},
		{
			name:       "Gate and retention",
			body:       `{"departure_gate": "altitude", "retention": "2w"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, p config.Provider) {
				assert.Equal(t, config.GateAltitude, p.TriggerSettings(context.Background()).DepartureGate)
				assert.Equal(t, 14*24*time.Hour, p.RecordingRetention(context.Background()))
			},
		},
		{
			name:       "Unknown gate rejected",
			body:       `{"departure_gate": "wheels"}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, p config.Provider) {
				assert.Equal(t, config.GateGroundRoll, p.TriggerSettings(context.Background()).DepartureGate)
			},
		},
		{
			name:       "Alpha out of range",
			body:       `{"vs_filter_alpha": 1.5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Bad retention",
			body:       `{"retention": "soon"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Negative retention",
			body:       `{"retention": "-1h"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Invalid trigger keeps retention",
			body:       `{"vs_filter_alpha": 0, "retention": "1d"}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, p config.Provider) {
				assert.Equal(t, 30*24*time.Hour, p.RecordingRetention(context.Background()))
			},
		},
		{
			name:       "Malformed",
			body:       `nope`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov := config.NewProvider(config.DefaultConfig(), &mockStateStore{})
			h := NewConfigHandler(prov)

			w := httptest.NewRecorder()
			h.HandleSetTrigger(w, httptest.NewRequest("PUT", "/api/config/trigger", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.check != nil {
				tt.check(t, prov)
			}
		})
	}
}

func TestConfigHandler_SetTriggerStoreFailure(t *testing.T) {
	st := &mockStateStore{}
	prov := config.NewProvider(config.DefaultConfig(), st)
	h := NewConfigHandler(prov)
	st.fail = errors.New("database is locked")

	w := httptest.NewRecorder()
	h.HandleSetTrigger(w, httptest.NewRequest("PUT", "/api/config/trigger",
		strings.NewReader(`{"record_landing": false, "retention": "2w"}`)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	st.fail = nil
	assert.Equal(t, 30*24*time.Hour, prov.RecordingRetention(context.Background()))
	assert.True(t, prov.TriggerSettings(context.Background()).RecordLanding)
}
