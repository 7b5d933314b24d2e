package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/service"

	"github.com/go-playground/validator/v10"
)

type BillingHandler struct {
	Svc      *service.BillingService
	Validate *validator.Validate
}

type billingLockRequest struct {
	AccountCode string    `json:"account_code" validate:"required"`
	FromDate    time.Time `json:"from_date" validate:"required"`
	ToDate      time.Time `json:"to_date" validate:"required"`
	Actor       string    `json:"actor"`
}

type createInvoicesRequest struct {
	Bundles []service.InvoiceBundle `json:"bundles" validate:"required,min=1,dive"`
}

func (h *BillingHandler) LockForBilling(w http.ResponseWriter, r *http.Request) {
	var req billingLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	locked, err := h.Svc.LockForBilling(r.Context(), req.AccountCode, req.FromDate, req.ToDate, req.Actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Billing window locked",
		Data:    map[string]int64{"locked": locked},
	})
}

// BillableSummary previews the billable set for an account and window.
func (h *BillingHandler) BillableSummary(w http.ResponseWriter, r *http.Request) {
	accountCode := r.URL.Query().Get("account_code")
	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid from date"})
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid to date"})
		return
	}

	lines, summary, err := h.Svc.BillableSummary(r.Context(), accountCode, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: map[string]interface{}{
		"shipments": lines,
		"summary":   summary,
	}})
}

func (h *BillingHandler) CreateInvoices(w http.ResponseWriter, r *http.Request) {
	var req createInvoicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}

	created, err := h.Svc.CreateInvoices(r.Context(), req.Bundles)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "Invoices created", Data: created})
}

func (h *BillingHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.ListInvoices(r.Context(), r.URL.Query().Get("account_code"))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Invoice{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: list})
}

// SequencePosition exposes the invoice counter for sequence audits.
func (h *BillingHandler) SequencePosition(w http.ResponseWriter, r *http.Request) {
	srNo, err := h.Svc.SequencePosition(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    map[string]int64{"invoice_sr_no": srNo},
	})
}

func (h *BillingHandler) GetInvoice(w http.ResponseWriter, r *http.Request, invoiceNumber string) {
	inv, err := h.Svc.GetInvoice(r.Context(), invoiceNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: inv})
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
