package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/service"

	"github.com/go-playground/validator/v10"
)

type LedgerHandler struct {
	Svc      *service.LedgerService
	Validate *validator.Validate
}

type receiptRequest struct {
	AccountCode string  `json:"account_code" validate:"required"`
	Mode        string  `json:"mode" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Narration   string  `json:"narration"`
}

type adjustmentRequest struct {
	AccountCode string  `json:"account_code" validate:"required"`
	Debit       float64 `json:"debit" validate:"gte=0"`
	Credit      float64 `json:"credit" validate:"gte=0"`
	Narration   string  `json:"narration"`
}

func (h *LedgerHandler) RecordReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	if err := h.Svc.RecordReceipt(r.Context(), req.AccountCode, req.Mode, req.Amount, req.Narration); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "Receipt recorded"})
}

func (h *LedgerHandler) RecordAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	if err := h.Svc.RecordAdjustment(r.Context(), req.AccountCode, req.Debit, req.Credit, req.Narration); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "Adjustment recorded"})
}

func (h *LedgerHandler) GetEntries(w http.ResponseWriter, r *http.Request, accountCode string) {
	entries, err := h.Svc.Entries(r.Context(), accountCode)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*models.AccountLedger{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: entries})
}

func (h *LedgerHandler) GetSummary(w http.ResponseWriter, r *http.Request, accountCode string) {
	summary, err := h.Svc.Summary(r.Context(), accountCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: summary})
}
