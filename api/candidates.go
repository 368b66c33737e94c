package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/oakhurst/talentpipe/internal/gdpr"
	"github.com/oakhurst/talentpipe/internal/importer"
	"github.com/oakhurst/talentpipe/internal/jobs"
	"github.com/oakhurst/talentpipe/internal/models"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

type CandidatesHandler struct {
	candidateRepo repository.CandidateRepo
	importer      *importer.Importer
	gdprSvc       *gdpr.Service
	pool          *jobs.WorkerPool
}

func NewCandidatesHandler(cr repository.CandidateRepo, imp *importer.Importer, gs *gdpr.Service, pool *jobs.WorkerPool) *CandidatesHandler {
	return &CandidatesHandler{candidateRepo: cr, importer: imp, gdprSvc: gs, pool: pool}
}

type postCandidateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func (h *CandidatesHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req postCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		http.Error(w, "name and email are required", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC().UnixMilli()
	cand := &models.Candidate{
		PublicID:    uuid.NewString(),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		LastContact: &now,
	}
	id, err := h.candidateRepo.CreateCandidate(r.Context(), cand)
	if err != nil {
		http.Error(w, "failed to create candidate", http.StatusInternalServerError)
		return
	}
	cand.ID = id

	h.enqueueDuplicateScan(r, id)

	writeJSON(w, cand, http.StatusCreated)
}

// ImportCandidate accepts a raw payload and validates it against the stored
// schema for the version named in the query (default v1) before creating
// the candidate.
func (h *CandidatesHandler) ImportCandidate(w http.ResponseWriter, r *http.Request) {
	version := r.URL.Query().Get("schema_version")
	if version == "" {
		version = "v1"
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}

	cand, err := h.importer.Import(r.Context(), version, raw, userIDFromContext(r))
	if err != nil {
		var verr *importer.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusUnprocessableEntity, "invalid_payload", "import payload failed schema validation", map[string]any{
				"issues": verr.Issues,
			})
			return
		}
		writeError(w, http.StatusBadRequest, "import_failed", err.Error(), nil)
		return
	}

	h.enqueueDuplicateScan(r, cand.ID)

	writeJSON(w, cand, http.StatusCreated)
}

func (h *CandidatesHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	cand, err := h.candidateRepo.GetCandidate(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load candidate", http.StatusInternalServerError)
		return
	}
	if cand == nil {
		writeError(w, http.StatusNotFound, "not_found", "candidate not found", nil)
		return
	}

	writeJSON(w, cand, http.StatusOK)
}

func (h *CandidatesHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	rows, err := h.candidateRepo.ListCandidates(r.Context(), limit, offset)
	if err != nil {
		http.Error(w, "failed to list candidates", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []models.Candidate{}
	}

	writeJSON(w, map[string]any{"limit": limit, "offset": offset, "items": rows}, http.StatusOK)
}

// TouchContact resets the candidate's retention clock to now.
func (h *CandidatesHandler) TouchContact(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.gdprSvc.TouchContact(r.Context(), id, userIDFromContext(r)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "candidate not found", nil)
			return
		}
		http.Error(w, "failed to touch contact", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id, "touched": true}, http.StatusOK)
}

func (h *CandidatesHandler) enqueueDuplicateScan(r *http.Request, candidateID int64) {
	payload := jobs.DuplicateScanPayload{CandidateID: candidateID}
	if _, err := h.pool.Enqueue(r.Context(), jobs.TypeDuplicateScan, payload, 50, 3); err != nil {
		logger.Error("enqueue duplicate scan", "candidate_id", candidateID, "err", err)
	}
}
