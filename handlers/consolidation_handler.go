package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/service"

	"github.com/go-playground/validator/v10"
)

type ConsolidationHandler struct {
	Svc      *service.ConsolidationService
	Validate *validator.Validate
}

type assignBagRequest struct {
	AWBNo string `json:"awb_no" validate:"required"`
	BagNo string `json:"bag_no" validate:"required"`
	RunNo string `json:"run_no" validate:"required"`
	Actor string `json:"actor"`
}

type attachClubRequest struct {
	AWBNo  string `json:"awb_no" validate:"required"`
	ClubNo string `json:"club_no" validate:"required"`
}

type offloadRequest struct {
	AWBNo  string `json:"awb_no" validate:"required"`
	Reason string `json:"reason" validate:"required"`
	Actor  string `json:"actor"`
}

type runStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

type runOffloadRequest struct {
	Reason string `json:"reason" validate:"required"`
	Actor  string `json:"actor"`
}

func (h *ConsolidationHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var run models.Run
	if err := json.NewDecoder(r.Body).Decode(&run); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	if err := h.Svc.CreateRun(r.Context(), &run); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "Run created", Data: run})
}

func (h *ConsolidationHandler) AdvanceRun(w http.ResponseWriter, r *http.Request, runNo string) {
	var req runStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	if err := h.Svc.AdvanceRun(r.Context(), runNo, req.Status, req.Note); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Run status recorded"})
}

func (h *ConsolidationHandler) RunSummary(w http.ResponseWriter, r *http.Request, runNo string) {
	summary, err := h.Svc.RunSummary(r.Context(), runNo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: summary})
}

func (h *ConsolidationHandler) RunHistory(w http.ResponseWriter, r *http.Request, runNo string) {
	history, err := h.Svc.Repo.RunProcessHistory(r.Context(), runNo)
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []*models.RunProcess{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: history})
}

func (h *ConsolidationHandler) AssignToBag(w http.ResponseWriter, r *http.Request) {
	var req assignBagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	if err := h.Svc.AssignToBag(r.Context(), req.AWBNo, req.BagNo, req.RunNo, req.Actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Shipment assigned to bag"})
}

func (h *ConsolidationHandler) FinalizeBag(w http.ResponseWriter, r *http.Request, bagNo string) {
	actor := r.URL.Query().Get("actor")
	bag, err := h.Svc.FinalizeBag(r.Context(), bagNo, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Bag finalized", Data: bag})
}

func (h *ConsolidationHandler) GetBag(w http.ResponseWriter, r *http.Request, bagNo string) {
	bag, err := h.Svc.Repo.GetBag(r.Context(), bagNo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: bag})
}

func (h *ConsolidationHandler) AttachToClub(w http.ResponseWriter, r *http.Request) {
	var req attachClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	if err := h.Svc.AttachToClub(r.Context(), req.AWBNo, req.ClubNo); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Shipment attached to club"})
}

func (h *ConsolidationHandler) LockClub(w http.ResponseWriter, r *http.Request, clubNo string) {
	actor := r.URL.Query().Get("actor")
	club, err := h.Svc.LockClub(r.Context(), clubNo, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Club locked", Data: club})
}

func (h *ConsolidationHandler) Offload(w http.ResponseWriter, r *http.Request) {
	var req offloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	if err := h.Svc.Offload(r.Context(), req.AWBNo, req.Reason, req.Actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Shipment offloaded"})
}

// OffloadRun pulls every remaining shipment off a run, for a cancelled or
// overweight departure.
func (h *ConsolidationHandler) OffloadRun(w http.ResponseWriter, r *http.Request, runNo string) {
	var req runOffloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	offloaded, err := h.Svc.OffloadRun(r.Context(), runNo, req.Reason, req.Actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Run offloaded",
		Data:    map[string]int{"offloaded": offloaded},
	})
}

func (h *ConsolidationHandler) OffloadHistory(w http.ResponseWriter, r *http.Request, awbNo string) {
	history, err := h.Svc.Repo.OffloadHistory(r.Context(), awbNo)
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []*models.OffloadRecord{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: history})
}

// LockEvents returns the audit trail of one-way transitions for an entity.
func (h *ConsolidationHandler) LockEvents(w http.ResponseWriter, r *http.Request) {
	entity := r.URL.Query().Get("entity")
	ref := r.URL.Query().Get("ref")
	if entity == "" || ref == "" {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: "entity and ref are required"})
		return
	}

	events, err := h.Svc.Repo.LockEvents(r.Context(), entity, ref)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []*models.LockEvent{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: events})
}
