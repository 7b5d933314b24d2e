package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/repository"
	"github.com/M5Csoftware/m5-server-sub003/service"
	"github.com/M5Csoftware/m5-server-sub003/utils"

	"github.com/rs/zerolog"
)

type PDFHandler struct {
	Billing       repository.BillingRepository
	Consolidation *service.ConsolidationService
	Accounts      repository.AccountRepository
	Branches      repository.BranchRepository
	BranchCode    string
	SavePath      string
	Log           zerolog.Logger
}

func (h *PDFHandler) saveDir() (string, error) {
	dir := h.SavePath
	if dir == "" {
		dir = "./pdfs"
	}
	return dir, os.MkdirAll(dir, os.ModePerm)
}

// InvoicePDF generates, saves, and archives the PDF for a cut invoice.
func (h *PDFHandler) InvoicePDF(w http.ResponseWriter, r *http.Request, invoiceNumber string) {
	inv, err := h.Billing.GetInvoice(r.Context(), invoiceNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	branch, err := h.Branches.GetBranch(r.Context(), h.BranchCode)
	if err != nil {
		writeError(w, err)
		return
	}
	account, err := h.Accounts.GetByCode(r.Context(), inv.AccountCode)
	if err != nil {
		writeError(w, err)
		return
	}

	pdfBytes, err := utils.GenerateInvoicePDF(branch, account, inv)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ApiResponse{Success: false, Message: "failed to generate PDF: " + err.Error()})
		return
	}

	saveDir, err := h.saveDir()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ApiResponse{Success: false, Message: "failed to create save directory: " + err.Error()})
		return
	}

	filename := fmt.Sprintf("invoice_%d_%d.pdf", inv.InvoiceSrNo, time.Now().Unix())
	savePath := filepath.Join(saveDir, filename)
	if err := os.WriteFile(savePath, pdfBytes, 0644); err != nil {
		writeJSON(w, http.StatusInternalServerError, ApiResponse{Success: false, Message: "failed to save PDF: " + err.Error()})
		return
	}

	fileURL, err := utils.UploadToR2(pdfBytes, filename)
	if err != nil {
		// Archive failure keeps the local copy usable.
		h.Log.Warn().Err(err).Str("invoice", invoiceNumber).Msg("R2 upload failed")
		fileURL = savePath
	}

	if err := h.Billing.SetInvoicePDF(r.Context(), inv.InvoiceSrNo, fileURL); err != nil {
		h.Log.Warn().Err(err).Str("invoice", invoiceNumber).Msg("failed to record pdf path")
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: map[string]string{"file": fileURL}})
}

// RunManifestPDF generates the manifest for a run and stamps the manifest
// number onto the run.
func (h *PDFHandler) RunManifestPDF(w http.ResponseWriter, r *http.Request, runNo string) {
	run, err := h.Consolidation.Repo.GetRun(r.Context(), runNo)
	if err != nil {
		writeError(w, err)
		return
	}
	branch, err := h.Branches.GetBranch(r.Context(), h.BranchCode)
	if err != nil {
		writeError(w, err)
		return
	}
	bags, err := h.Consolidation.Repo.BagsForRun(r.Context(), runNo)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := h.Consolidation.RunSummary(r.Context(), runNo)
	if err != nil {
		writeError(w, err)
		return
	}

	manifestNo := run.ManifestNo
	if manifestNo == "" {
		manifestNo = fmt.Sprintf("MF-%s-%s", h.BranchCode, runNo)
	}
	run.ManifestNo = manifestNo

	pdfBytes, err := utils.GenerateRunManifestPDF(branch, run, bags, summary)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ApiResponse{Success: false, Message: "failed to generate PDF: " + err.Error()})
		return
	}

	saveDir, err := h.saveDir()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ApiResponse{Success: false, Message: "failed to create save directory: " + err.Error()})
		return
	}

	filename := fmt.Sprintf("manifest_%s_%d.pdf", runNo, time.Now().Unix())
	savePath := filepath.Join(saveDir, filename)
	if err := os.WriteFile(savePath, pdfBytes, 0644); err != nil {
		writeJSON(w, http.StatusInternalServerError, ApiResponse{Success: false, Message: "failed to save PDF: " + err.Error()})
		return
	}

	fileURL, err := utils.UploadToR2(pdfBytes, filename)
	if err != nil {
		h.Log.Warn().Err(err).Str("run", runNo).Msg("R2 upload failed")
		fileURL = savePath
	}

	if err := h.Consolidation.Repo.SetRunManifest(r.Context(), runNo, manifestNo, fileURL, time.Now()); err != nil {
		h.Log.Warn().Err(err).Str("run", runNo).Msg("failed to record manifest on run")
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: map[string]string{
		"manifest_no": manifestNo,
		"file":        fileURL,
	}})
}
