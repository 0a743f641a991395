package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/types"
)

// ArchiveRequest represents the request body for archiving an application.
type ArchiveRequest struct {
	ActorID uuid.UUID `json:"actor_id"`
	Notes   string    `json:"notes,omitempty"`
}

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// parseQueryTime parses an optional RFC3339 query parameter.
func parseQueryTime(r *http.Request, key string) (*time.Time, error) {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return nil, nil
	}
	val, err := time.Parse(time.RFC3339, valStr)
	if err != nil {
		return nil, err
	}
	return &val, nil
}

// pathID parses the {id} path value as a UUID, writing a 400 on failure.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

// handleCreateApplication tracks a new application
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req types.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.engineError(w, err)
		return
	}

	record, err := s.manager.Create(r.Context(), req)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, record)
}

// handleBulkCreate runs a batch of creations through the intake pool
func (s *Server) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	var req types.BulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.engineError(w, err)
		return
	}

	summary, err := s.pool.Run(r.Context(), req.Requests)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, summary)
}

// handleGetApplication retrieves an application by ID
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	record, err := s.manager.Get(r.Context(), id)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, record)
}

// handleUpdateStatus applies a status transition
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req types.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.engineError(w, err)
		return
	}

	record, err := s.manager.UpdateStatus(r.Context(), id, req)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, record)
}

// handleArchive transitions an application into the terminal archived status
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ActorID == uuid.Nil {
		s.errorResponse(w, http.StatusBadRequest, "actor_id is required")
		return
	}

	record, err := s.manager.Archive(r.Context(), id, req.ActorID, req.Notes)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, record)
}

// handleAddNote appends a note to an application
func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req types.AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.engineError(w, err)
		return
	}

	record, err := s.manager.AddNote(r.Context(), id, req.Text)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, record)
}

// handleSetFollowUp sets the follow-up date on an application
func (s *Server) handleSetFollowUp(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req types.SetFollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.engineError(w, err)
		return
	}

	record, err := s.manager.SetFollowUp(r.Context(), id, req.FollowUpDate)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, record)
}

// handleHistory returns an application's ledger entries
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	since, err := parseQueryTime(r, "since")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid 'since' timestamp, expected RFC3339")
		return
	}
	until, err := parseQueryTime(r, "until")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid 'until' timestamp, expected RFC3339")
		return
	}

	entries, err := s.manager.History(r.Context(), id, since, until)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleDuplicateCheck classifies a job reference without creating anything
func (s *Server) handleDuplicateCheck(w http.ResponseWriter, r *http.Request) {
	var req types.DuplicateCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.engineError(w, err)
		return
	}

	match, err := s.manager.CheckDuplicate(r.Context(), req.UserID, req.Job)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, match)
}

// handleListApplications lists a user's applications with optional filters
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	filter := types.ListFilter{
		Status:  r.URL.Query().Get("status"),
		Company: r.URL.Query().Get("company"),
		Limit:   parseQueryInt(r, "limit", 0, 500),
		Offset:  parseQueryInt(r, "offset", 0, 0),
	}
	if filter.Status != "" && !types.KnownStatus(filter.Status) {
		s.errorResponse(w, http.StatusBadRequest, "Unknown status: "+filter.Status)
		return
	}

	records, err := s.manager.ListFiltered(r.Context(), userID, filter)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": records,
		"count":        len(records),
	})
}

// handleStatistics aggregates metrics over a user's applications
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	windowDays := parseQueryInt(r, "window_days", 0, 3650)

	stats, err := s.manager.Statistics(r.Context(), userID, windowDays)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, stats)
}

// handleDuplicateReport runs pairwise duplicate analysis for a user
func (s *Server) handleDuplicateReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	report, err := s.manager.DuplicateReport(r.Context(), userID)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}
