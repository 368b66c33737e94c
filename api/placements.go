package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/oakhurst/talentpipe/internal/models"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

type PlacementsHandler struct {
	placementRepo repository.PlacementRepo
}

func NewPlacementsHandler(pr repository.PlacementRepo) *PlacementsHandler {
	return &PlacementsHandler{placementRepo: pr}
}

func (h *PlacementsHandler) ListPlacements(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	rows, err := h.placementRepo.ListPlacements(r.Context(), limit, offset)
	if err != nil {
		http.Error(w, "failed to list placements", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []models.Placement{}
	}

	writeJSON(w, map[string]any{"limit": limit, "offset": offset, "items": rows}, http.StatusOK)
}

func (h *PlacementsHandler) GetPlacementByEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || entryID <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.placementRepo.GetPlacementByEntry(r.Context(), entryID)
	if err != nil {
		http.Error(w, "failed to load placement", http.StatusInternalServerError)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "not_found", "placement not found", nil)
		return
	}

	writeJSON(w, p, http.StatusOK)
}
