package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/repository"
	"github.com/M5Csoftware/m5-server-sub003/service"

	"github.com/go-playground/validator/v10"
)

type ShipmentHandler struct {
	Credit   *service.CreditControl
	Repo     repository.ShipmentRepository
	Validate *validator.Validate
}

type correctAmountRequest struct {
	TotalAmt float64 `json:"total_amt" validate:"required,gt=0"`
}

// CreateShipment books a shipment; credit control runs before the insert.
func (h *ShipmentHandler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var shipment models.Shipment
	if err := json.NewDecoder(r.Body).Decode(&shipment); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	if err := h.Credit.RegisterShipment(r.Context(), &shipment); err != nil {
		writeError(w, err)
		return
	}

	msg := "Shipment created"
	if shipment.IsHold {
		msg = "Shipment created on hold: " + shipment.HoldReason
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: msg, Data: shipment})
}

func (h *ShipmentHandler) GetAllShipments(w http.ResponseWriter, r *http.Request) {
	filters := make(map[string]interface{})
	for key, values := range r.URL.Query() {
		if len(values) > 0 && values[0] != "" {
			if boolVal, err := strconv.ParseBool(values[0]); err == nil {
				filters[key] = boolVal
			} else {
				filters[key] = values[0]
			}
		}
	}

	list, err := h.Repo.Find(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Shipment{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: list})
}

func (h *ShipmentHandler) GetShipmentByAWB(w http.ResponseWriter, r *http.Request, awbNo string) {
	shipment, err := h.Repo.GetByAWB(r.Context(), awbNo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: shipment})
}

// CorrectAmount revises a shipment total. A correction that brings the
// account back under its limit releases any credit hold.
func (h *ShipmentHandler) CorrectAmount(w http.ResponseWriter, r *http.Request, awbNo string) {
	var req correctAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	before, err := h.Credit.CorrectAmount(r.Context(), awbNo, req.TotalAmt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Amount corrected", Data: before})
}

func (h *ShipmentHandler) LockCompleteData(w http.ResponseWriter, r *http.Request, awbNo string) {
	actor := r.URL.Query().Get("actor")
	if err := h.Repo.SetCompleteDataLock(r.Context(), awbNo, actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Shipment data locked"})
}
