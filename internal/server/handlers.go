package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pfrederiksen/acta-lineup/internal/logger"
	"github.com/pfrederiksen/acta-lineup/internal/scraper"
)

// MaxRequestBody caps the size of JSON request bodies
const MaxRequestBody = 1 << 20

// ScrapeRequest is the body of POST /api/scrape-lineup
type ScrapeRequest struct {
	URL string `json:"url"`
}

// HealthCheck returns service health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// Metrics returns the in-process counters and timings
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, logger.GetMetricsSnapshot())
}

// ScrapeLineupOptions answers plain OPTIONS requests. Browser preflights are
// handled by the CORS middleware before reaching the router.
func (s *Server) ScrapeLineupOptions(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}

// ScrapeLineup imports a roster from a match report URL
func (s *Server) ScrapeLineup(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	roster, err := s.source.FetchRoster(r.Context(), req.URL)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scraper.ErrInvalidInput) {
			status = http.StatusBadRequest
		} else {
			logger.FromContext(r.Context()).Error("scrape failed", logger.Fields{"url": req.URL}, err)
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, roster)
}

// decodeBody reads a JSON body of at most MaxRequestBody bytes into v. It
// writes the error response itself and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBody)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("encoding response failed", logger.Fields{"error": err.Error()})
	}
}

// respondError writes an {"error": message} response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
