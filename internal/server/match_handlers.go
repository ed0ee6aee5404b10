package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pfrederiksen/acta-lineup/internal/export"
	"github.com/pfrederiksen/acta-lineup/internal/filter"
	"github.com/pfrederiksen/acta-lineup/internal/lineup"
	"github.com/pfrederiksen/acta-lineup/internal/logger"
	"github.com/pfrederiksen/acta-lineup/internal/match"
)

// StatsResponse is returned by GET /api/match/stats
type StatsResponse struct {
	match.Stats
	Score [2]int `json:"score"`
}

// GetMatch returns the current match snapshot
func (s *Server) GetMatch(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.match.Snapshot())
}

// SetLineup loads both teams into the match
func (s *Server) SetLineup(w http.ResponseWriter, r *http.Request) {
	var roster lineup.Roster
	if !decodeBody(w, r, &roster) {
		return
	}

	roster.AssignMissingIDs()
	if err := roster.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.match.SetTeams(roster); err != nil {
		s.respondMatchError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, s.match.Snapshot())
}

// ApplyCommand drives the match clock
func (s *Server) ApplyCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := match.ParseCommand(chi.URLParam(r, "command"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := s.match.Apply(cmd); err != nil {
		s.respondMatchError(w, r, err)
		return
	}

	s.updateGauges()
	logger.FromContext(r.Context()).Info("match command", logger.Fields{"command": string(cmd), "status": string(s.match.Status())})
	respondJSON(w, http.StatusOK, s.match.Snapshot())
}

// RecordEvent appends an event to the match log
func (s *Server) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var in match.EventInput
	if !decodeBody(w, r, &in) {
		return
	}

	evt, err := s.match.RecordEvent(in)
	if err != nil {
		s.respondMatchError(w, r, err)
		return
	}

	logger.IncrCounter("match.events_recorded")
	s.updateGauges()
	respondJSON(w, http.StatusCreated, evt)
}

// ListEvents returns the event log, optionally filtered
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	f, err := filter.FromQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, f.Apply(s.match.Events()))
}

// GetStats returns per-team tallies
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := s.match.Stats()
	home, away := stats.Score()
	respondJSON(w, http.StatusOK, StatsResponse{Stats: stats, Score: [2]int{home, away}})
}

// ExportMatch downloads the match as JSON or CSV
func (s *Server) ExportMatch(w http.ResponseWriter, r *http.Request) {
	doc, format, ok := s.exportRequest(w, r)
	if !ok {
		return
	}

	data, err := export.Render(doc, format)
	if err != nil {
		logger.FromContext(r.Context()).Error("export failed", nil, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(doc, format)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// SaveMatch writes the export to the data directory
func (s *Server) SaveMatch(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage not configured")
		return
	}

	doc, format, ok := s.exportRequest(w, r)
	if !ok {
		return
	}

	path, err := s.store.SaveExport(doc, format)
	if err != nil {
		logger.FromContext(r.Context()).Error("save failed", nil, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.FromContext(r.Context()).Info("match saved", logger.Fields{"path": path})
	respondJSON(w, http.StatusCreated, map[string]string{"path": path})
}

// exportRequest resolves ?format=, the event filters and the current
// document. It writes the error response itself when ok is false.
func (s *Server) exportRequest(w http.ResponseWriter, r *http.Request) (export.Document, export.Format, bool) {
	format := export.FormatJSON
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := export.ParseFormat(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return export.Document{}, "", false
		}
		format = f
	}

	f, err := filter.FromQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return export.Document{}, "", false
	}

	snap := s.match.Snapshot()
	if snap.HomeTeam == nil || snap.AwayTeam == nil {
		respondError(w, http.StatusConflict, match.ErrNoTeams.Error())
		return export.Document{}, "", false
	}

	doc := export.FromSnapshot(snap)
	doc.Events = f.Apply(doc.Events)
	return doc, format, true
}

func (s *Server) respondMatchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, match.ErrInvalidEvent):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, match.ErrInvalidTransition), errors.Is(err, match.ErrNoTeams):
		respondError(w, http.StatusConflict, err.Error())
	default:
		logger.FromContext(r.Context()).Error("match operation failed", nil, err)
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// updateGauges publishes the size of the current event log
func (s *Server) updateGauges() {
	logger.SetGauge("match.events", float64(len(s.match.Events())))
}
