package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"flightrecorder/pkg/model"
	"flightrecorder/pkg/store"
)

// currentRecording addresses the recorder's in-memory buffer instead of a saved row.
const currentRecording = "current"

// RecordingsHandler serves saved recordings.
type RecordingsHandler struct {
	store store.RecordingStore
	rec   RecorderControl
}

func NewRecordingsHandler(st store.RecordingStore, rec RecorderControl) *RecordingsHandler {
	return &RecordingsHandler{store: st, rec: rec}
}

// RecordingSummary is a listing entry with human-readable extras.
type RecordingSummary struct {
	*model.Recording
	Age            string `json:"age"`
	DurationText   string `json:"duration"`
	TrackText      string `json:"track"`
	FrameCountText string `json:"frame_count_text"`
}

func summarize(rec *model.Recording, now time.Time) RecordingSummary {
	return RecordingSummary{
		Recording:      rec,
		Age:            humanize.RelTime(rec.SavedAt, now, "ago", "from now"),
		DurationText:   rec.Duration().Round(time.Second).String(),
		TrackText:      humanize.SIWithDigits(rec.TrackLengthM, 1, "m"),
		FrameCountText: humanize.Comma(int64(rec.FrameCount)),
	}
}

// HandleList returns recording summaries, newest first. ?limit=N caps the result.
func (h *RecordingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := h.store.ListRecordings(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	out := make([]RecordingSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, summarize(rec, now))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet returns one recording including its frames.
func (h *RecordingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetRecording(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordingsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteRecording(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReplay loads a saved recording and starts playback. The id
// "current" replays whatever the recorder holds.
func (h *RecordingsHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == currentRecording {
		id = ""
	}
	if err := h.rec.Replay(r.Context(), id); err != nil {
		writeRecorderError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.rec.Status())
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "recording not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
