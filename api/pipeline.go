package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/oakhurst/talentpipe/internal/models"
	"github.com/oakhurst/talentpipe/internal/pipeline"
	"github.com/oakhurst/talentpipe/internal/stage"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

type PipelineHandler struct {
	svc     *pipeline.Service
	entries repository.PipelineRepo
}

func NewPipelineHandler(svc *pipeline.Service, entries repository.PipelineRepo) *PipelineHandler {
	return &PipelineHandler{svc: svc, entries: entries}
}

type postEntryRequest struct {
	JobID       int64  `json:"job_id"`
	CandidateID int64  `json:"candidate_id"`
	Notes       string `json:"notes,omitempty"`
}

func (h *PipelineHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req postEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.JobID <= 0 || req.CandidateID <= 0 {
		http.Error(w, "job_id and candidate_id are required", http.StatusBadRequest)
		return
	}

	entry, err := h.svc.AddCandidate(r.Context(), req.JobID, req.CandidateID, userIDFromContext(r), req.Notes)
	if err != nil {
		http.Error(w, "failed to create pipeline entry", http.StatusInternalServerError)
		return
	}

	writeJSON(w, entry, http.StatusCreated)
}

func (h *PipelineHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.entries.GetEntry(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load pipeline entry", http.StatusInternalServerError)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "not_found", "pipeline entry not found", nil)
		return
	}

	writeJSON(w, entry, http.StatusOK)
}

func (h *PipelineHandler) ListEntriesByJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(r.URL.Query().Get("job_id"), 10, 64)
	if err != nil || jobID <= 0 {
		http.Error(w, "job_id is required", http.StatusBadRequest)
		return
	}

	rows, err := h.entries.ListEntriesByJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, "failed to list pipeline entries", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []models.PipelineEntry{}
	}

	writeJSON(w, map[string]any{"job_id": jobID, "items": rows}, http.StatusOK)
}

type postTransitionRequest struct {
	Target string       `json:"target"`
	Fields stage.Fields `json:"fields,omitempty"`
}

// Transition applies one stage change. Rule violations come back as
// structured 4xx responses so the UI can explain exactly what is missing
// or why the move is not allowed.
func (h *PipelineHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var req postTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	target := stage.Stage(req.Target)
	if !stage.Valid(target) {
		writeError(w, http.StatusBadRequest, "unknown_stage", "unknown target stage", map[string]any{
			"target": req.Target,
		})
		return
	}

	entry, err := h.svc.Transition(r.Context(), id, target, req.Fields, userIDFromContext(r))
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	writeJSON(w, entry, http.StatusOK)
}

func writeTransitionError(w http.ResponseWriter, err error) {
	var illegal *stage.IllegalTransitionError
	if errors.As(err, &illegal) {
		writeError(w, http.StatusUnprocessableEntity, "illegal_transition", illegal.Error(), map[string]any{
			"from": string(illegal.From), "to": string(illegal.To),
		})
		return
	}

	var missing *stage.MissingFieldsError
	if errors.As(err, &missing) {
		writeError(w, http.StatusUnprocessableEntity, "missing_required_fields", missing.Error(), map[string]any{
			"fields": missing.Keys,
		})
		return
	}

	var invalid *stage.InvalidFieldError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusUnprocessableEntity, "invalid_field", invalid.Error(), map[string]any{
			"field": invalid.Key,
		})
		return
	}

	if errors.Is(err, repository.ErrConflict) {
		writeError(w, http.StatusConflict, "conflict", "entry changed since read, reload and retry", nil)
		return
	}

	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "pipeline entry not found", nil)
		return
	}

	http.Error(w, "failed to apply transition", http.StatusInternalServerError)
}

func (h *PipelineHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	recs, err := h.svc.History(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "pipeline entry not found", nil)
			return
		}
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []models.StageTransitionRecord{}
	}

	writeJSON(w, map[string]any{"entry_id": id, "items": recs}, http.StatusOK)
}

// DeleteEntry hard-deletes an entry. Admin only.
func (h *PipelineHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if roleFromContext(r) != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden", "admin role required", nil)
		return
	}

	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id, userIDFromContext(r)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "pipeline entry not found", nil)
			return
		}
		http.Error(w, "failed to delete pipeline entry", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
