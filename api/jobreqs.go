package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/oakhurst/talentpipe/internal/models"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

type JobReqsHandler struct {
	jobReqRepo repository.JobReqRepo
}

func NewJobReqsHandler(jr repository.JobReqRepo) *JobReqsHandler {
	return &JobReqsHandler{jobReqRepo: jr}
}

type postJobReqRequest struct {
	Title      string `json:"title"`
	ClientName string `json:"client_name"`
}

func (h *JobReqsHandler) CreateJobReq(w http.ResponseWriter, r *http.Request) {
	var req postJobReqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	j := &models.JobReq{Title: req.Title, ClientName: req.ClientName, Status: "open"}
	id, err := h.jobReqRepo.CreateJobReq(r.Context(), j)
	if err != nil {
		http.Error(w, "failed to create job req", http.StatusInternalServerError)
		return
	}
	j.ID = id

	writeJSON(w, j, http.StatusCreated)
}

func (h *JobReqsHandler) GetJobReq(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	j, err := h.jobReqRepo.GetJobReq(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load job req", http.StatusInternalServerError)
		return
	}
	if j == nil {
		writeError(w, http.StatusNotFound, "not_found", "job req not found", nil)
		return
	}

	writeJSON(w, j, http.StatusOK)
}

func (h *JobReqsHandler) ListJobReqs(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	rows, err := h.jobReqRepo.ListJobReqs(r.Context(), limit, offset)
	if err != nil {
		http.Error(w, "failed to list job reqs", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []models.JobReq{}
	}

	writeJSON(w, map[string]any{"limit": limit, "offset": offset, "items": rows}, http.StatusOK)
}

type patchJobReqRequest struct {
	Status string `json:"status"`
}

func (h *JobReqsHandler) UpdateJobReqStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req patchJobReqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	switch req.Status {
	case "open", "on_hold", "closed":
	default:
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	if err := h.jobReqRepo.UpdateJobReqStatus(r.Context(), id, req.Status); err != nil {
		http.Error(w, "failed to update job req", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id, "status": req.Status}, http.StatusOK)
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit = 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	offset = 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
