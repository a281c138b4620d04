package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/normalize"
	"github.com/FocuswithJustin/JuniperLectionary/core/verse"
)

// Version is reported by / and /health.
var Version = "dev"

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Translation string `json:"translation"`
	Entries     int    `json:"entries"`
	Jobs        int    `json:"jobs"`
	Clients     int    `json:"clients"`
}

// NormalizeRequest is the body of POST /normalize.
type NormalizeRequest struct {
	Text  string `json:"text"`
	Slot  string `json:"slot,omitempty"` // default firstReading
	Cycle string `json:"cycle,omitempty"`
}

// FailureInfo describes a candidate citation that produced no option.
type FailureInfo struct {
	Citation string `json:"citation"`
	Error    string `json:"error"`
}

// NormalizeResult is the response of POST /normalize.
type NormalizeResult struct {
	Slot     string                    `json:"slot"`
	Options  []normalize.ReadingOption `json:"options"`
	Failures []FailureInfo             `json:"failures,omitempty"`
}

// VersesRequest is the body of POST /verses.
type VersesRequest struct {
	Text string `json:"text"`
}

// VersesResult is the response of POST /verses.
type VersesResult struct {
	Code     string   `json:"code"`
	Standard string   `json:"standard"`
	Verses   []string `json:"verses"`
}

// MatchRequest is the body of POST /match.
type MatchRequest struct {
	Description string `json:"description"`

	// Cycle overrides the cycle tag of the description.
	Cycle string `json:"cycle,omitempty"`
}

// CycleMatch is the outcome for one cycle of a description.
type CycleMatch struct {
	Cycle string          `json:"cycle,omitempty"`
	Match *calendar.Match `json:"match"`
}

// MatchResult is the response of POST /match.
type MatchResult struct {
	Description calendar.DayDescription `json:"description"`
	Matches     []CycleMatch            `json:"matches"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"name":    "Juniper Lectionary API",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"POST /normalize",
			"POST /verses",
			"POST /match",
			"GET /jobs",
			"POST /jobs",
			"GET /jobs/:id",
			"DELETE /jobs/:id",
			"WS /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, HealthInfo{
		Status:      "healthy",
		Version:     Version,
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		Translation: string(s.table.ID()),
		Entries:     s.matcher.Catalogue().Len(),
		Jobs:        len(s.jobs.List()),
		Clients:     s.hub.Clients(),
	})
}

// handleNormalize handles POST /normalize.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !decodePost(w, r, &req) {
		return
	}

	slot := normalize.FirstReading
	if req.Slot != "" {
		parsed, err := normalize.ParseSlot(req.Slot)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_SLOT", err.Error())
			return
		}
		slot = parsed
	}

	out := s.normalizer.Normalize(req.Text, slot, req.Cycle)
	res := NormalizeResult{
		Slot:    slot.String(),
		Options: out.Options,
	}
	if res.Options == nil {
		res.Options = []normalize.ReadingOption{}
	}
	for _, f := range out.Failures {
		res.Failures = append(res.Failures, FailureInfo{Citation: f.Citation, Error: f.Error()})
	}
	respond(w, http.StatusOK, res)
}

// handleVerses handles POST /verses: parse one citation and list the verses
// it covers in canonical order.
func (s *Server) handleVerses(w http.ResponseWriter, r *http.Request) {
	var req VersesRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "text is required")
		return
	}

	cleaned := s.normalizer.Clean(req.Text)
	if res, ok := s.verses.Get(cleaned); ok {
		respondMeta(w, http.StatusOK, res, len(res.Verses))
		return
	}

	parsed, err := s.parser.Parse(cleaned)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "PARSE_FAILURE", err.Error())
		return
	}

	ids, err := verse.Enumerate(parsed.Entity(), s.table)
	switch {
	case errors.Is(err, errors.ErrBoundaryOverrun):
		respondError(w, http.StatusUnprocessableEntity, "BOUNDARY_OVERRUN", err.Error())
		return
	case err != nil:
		respondError(w, http.StatusUnprocessableEntity, "INVALID_VERSE", err.Error())
		return
	}
	verse.Sort(ids, s.table)

	res := VersesResult{
		Code:     parsed.Code,
		Standard: parsed.Standard,
		Verses:   make([]string, len(ids)),
	}
	for i, id := range ids {
		res.Verses[i] = id.String()
	}
	s.verses.Set(cleaned, res)
	respondMeta(w, http.StatusOK, res, len(ids))
}

// handleMatch handles POST /match. A description tagged with several cycles
// is matched once per cycle; a cycle without an entry has a null match.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !decodePost(w, r, &req) {
		return
	}

	d, err := calendar.ParseDescription(req.Description)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "MALFORMED_DESCRIPTION", err.Error())
		return
	}

	tag := d.CycleTag
	if req.Cycle != "" {
		tag = req.Cycle
	}
	cycles, err := calendar.ExpandCycles(tag)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_CYCLE", err.Error())
		return
	}

	res := MatchResult{Description: d, Matches: make([]CycleMatch, 0, len(cycles))}
	for _, cycle := range cycles {
		m, err := s.matcher.Match(r.Context(), d.ForCycle(cycle))
		switch {
		case err == nil:
			res.Matches = append(res.Matches, CycleMatch{Cycle: cycle, Match: &m})
		case errors.Is(err, errors.ErrNoMatch):
			res.Matches = append(res.Matches, CycleMatch{Cycle: cycle})
		default:
			respondError(w, http.StatusInternalServerError, "MATCH_FAILED", err.Error())
			return
		}
	}
	respond(w, http.StatusOK, res)
}

// decodePost enforces POST and decodes a JSON body into v. It writes the
// error response itself and reports whether the handler should go on.
func decodePost(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return false
	}
	return true
}

func respond(w http.ResponseWriter, status int, data any) {
	respondMeta(w, status, data, 0)
}

func respondMeta(w http.ResponseWriter, status int, data any, total int) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
