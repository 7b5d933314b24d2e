package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/repository"
)

type BranchHandler struct {
	Repo repository.BranchRepository
}

func (h *BranchHandler) SaveBranch(w http.ResponseWriter, r *http.Request) {
	var branch models.BranchProfile
	if err := json.NewDecoder(r.Body).Decode(&branch); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if branch.BranchCode == "" {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: "branch code is required"})
		return
	}

	if err := h.Repo.SaveBranch(r.Context(), &branch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "Branch saved", Data: branch})
}

func (h *BranchHandler) GetBranch(w http.ResponseWriter, r *http.Request, branchCode string) {
	branch, err := h.Repo.GetBranch(r.Context(), branchCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: branch})
}
