package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/oakhurst/talentpipe/internal/gdpr"
	"github.com/oakhurst/talentpipe/internal/models"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

type GDPRHandler struct {
	svc *gdpr.Service
}

func NewGDPRHandler(svc *gdpr.Service) *GDPRHandler {
	return &GDPRHandler{svc: svc}
}

// Overview lists candidates with their retention classification, computed at
// request time.
func (h *GDPRHandler) Overview(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	rows, err := h.svc.Overview(r.Context(), limit, offset)
	if err != nil {
		http.Error(w, "failed to build gdpr overview", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []gdpr.CandidateStatus{}
	}

	writeJSON(w, map[string]any{"limit": limit, "offset": offset, "items": rows}, http.StatusOK)
}

func (h *GDPRHandler) Anonymise(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Anonymise(r.Context(), id, userIDFromContext(r)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "candidate not found", nil)
			return
		}
		http.Error(w, "failed to anonymise candidate", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id, "anonymised": true}, http.StatusOK)
}

// Delete hard-deletes one candidate. Admin only.
func (h *GDPRHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if roleFromContext(r) != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden", "admin role required", nil)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id, userIDFromContext(r)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "candidate not found", nil)
			return
		}
		http.Error(w, "failed to delete candidate", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bulkRequest struct {
	IDs []int64 `json:"ids"`
}

// BulkAnonymise anonymises a batch of candidates, reporting success and
// failure counts per batch. A failed item never aborts the rest.
func (h *GDPRHandler) BulkAnonymise(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeBulk(w, r)
	if !ok {
		return
	}

	res := h.svc.BulkAnonymise(r.Context(), ids, userIDFromContext(r))
	writeJSON(w, res, http.StatusOK)
}

// BulkDelete hard-deletes a batch of candidates. Admin only.
func (h *GDPRHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	if roleFromContext(r) != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden", "admin role required", nil)
		return
	}

	ids, ok := decodeBulk(w, r)
	if !ok {
		return
	}

	res := h.svc.BulkDelete(r.Context(), ids, userIDFromContext(r))
	writeJSON(w, res, http.StatusOK)
}

func decodeBulk(w http.ResponseWriter, r *http.Request) ([]int64, bool) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return nil, false
	}
	if len(req.IDs) == 0 {
		http.Error(w, "ids is required", http.StatusBadRequest)
		return nil, false
	}
	if len(req.IDs) > 1000 {
		http.Error(w, "too many ids", http.StatusBadRequest)
		return nil, false
	}
	return req.IDs, true
}
