package routes

import (
	"net/http"
	"strings"

	"github.com/M5Csoftware/m5-server-sub003/handlers"
)

// CORS middleware
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") // Replace * with your domain in production
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight request
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func handle(pattern string, fn http.HandlerFunc) {
	http.Handle(pattern, withCORS(http.HandlerFunc(handlers.RecoverWrapper(fn))))
}

func SetupRoutes(
	shipmentHandler *handlers.ShipmentHandler,
	accountHandler *handlers.AccountHandler,
	consolidationHandler *handlers.ConsolidationHandler,
	billingHandler *handlers.BillingHandler,
	ledgerHandler *handlers.LedgerHandler,
	branchHandler *handlers.BranchHandler,
	pdfHandler *handlers.PDFHandler,
) {
	// Shipment routes
	handle("/shipments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			shipmentHandler.CreateShipment(w, r)
		case http.MethodGet:
			shipmentHandler.GetAllShipments(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	handle("/shipments/", func(w http.ResponseWriter, r *http.Request) {
		rest := r.URL.Path[len("/shipments/"):]
		switch {
		case strings.HasSuffix(rest, "/amount") && r.Method == http.MethodPut:
			shipmentHandler.CorrectAmount(w, r, strings.TrimSuffix(rest, "/amount"))
		case strings.HasSuffix(rest, "/datalock") && r.Method == http.MethodPost:
			shipmentHandler.LockCompleteData(w, r, strings.TrimSuffix(rest, "/datalock"))
		case rest != "" && r.Method == http.MethodGet:
			shipmentHandler.GetShipmentByAWB(w, r, rest)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// Account routes
	handle("/accounts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			accountHandler.CreateAccount(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	handle("/accounts/", func(w http.ResponseWriter, r *http.Request) {
		rest := r.URL.Path[len("/accounts/"):]
		switch {
		case strings.HasSuffix(rest, "/ledger") && r.Method == http.MethodGet:
			ledgerHandler.GetEntries(w, r, strings.TrimSuffix(rest, "/ledger"))
		case strings.HasSuffix(rest, "/ledger/summary") && r.Method == http.MethodGet:
			ledgerHandler.GetSummary(w, r, strings.TrimSuffix(rest, "/ledger/summary"))
		case rest != "" && r.Method == http.MethodGet:
			accountHandler.GetAccount(w, r, rest)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// Run routes
	handle("/runs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			consolidationHandler.CreateRun(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	handle("/runs/", func(w http.ResponseWriter, r *http.Request) {
		rest := r.URL.Path[len("/runs/"):]
		switch {
		case strings.HasSuffix(rest, "/status") && r.Method == http.MethodPost:
			consolidationHandler.AdvanceRun(w, r, strings.TrimSuffix(rest, "/status"))
		case strings.HasSuffix(rest, "/summary") && r.Method == http.MethodGet:
			consolidationHandler.RunSummary(w, r, strings.TrimSuffix(rest, "/summary"))
		case strings.HasSuffix(rest, "/history") && r.Method == http.MethodGet:
			consolidationHandler.RunHistory(w, r, strings.TrimSuffix(rest, "/history"))
		case strings.HasSuffix(rest, "/manifest") && r.Method == http.MethodGet:
			pdfHandler.RunManifestPDF(w, r, strings.TrimSuffix(rest, "/manifest"))
		case strings.HasSuffix(rest, "/offload") && r.Method == http.MethodPost:
			consolidationHandler.OffloadRun(w, r, strings.TrimSuffix(rest, "/offload"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// Bag routes
	handle("/bags/assign", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		consolidationHandler.AssignToBag(w, r)
	})
	handle("/bags/", func(w http.ResponseWriter, r *http.Request) {
		rest := r.URL.Path[len("/bags/"):]
		switch {
		case strings.HasSuffix(rest, "/finalize") && r.Method == http.MethodPost:
			consolidationHandler.FinalizeBag(w, r, strings.TrimSuffix(rest, "/finalize"))
		case rest != "" && r.Method == http.MethodGet:
			consolidationHandler.GetBag(w, r, rest)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// Club routes
	handle("/clubs/attach", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		consolidationHandler.AttachToClub(w, r)
	})
	handle("/clubs/", func(w http.ResponseWriter, r *http.Request) {
		rest := r.URL.Path[len("/clubs/"):]
		if strings.HasSuffix(rest, "/lock") && r.Method == http.MethodPost {
			consolidationHandler.LockClub(w, r, strings.TrimSuffix(rest, "/lock"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	// Offload routes
	handle("/offload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		consolidationHandler.Offload(w, r)
	})
	handle("/offload/", func(w http.ResponseWriter, r *http.Request) {
		awbNo := r.URL.Path[len("/offload/"):]
		if awbNo != "" && r.Method == http.MethodGet {
			consolidationHandler.OffloadHistory(w, r, awbNo)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	// Lock audit trail
	handle("/lock-events", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		consolidationHandler.LockEvents(w, r)
	})

	// Billing routes
	handle("/billing/lock", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		billingHandler.LockForBilling(w, r)
	})
	handle("/billing/billable", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		billingHandler.BillableSummary(w, r)
	})
	handle("/billing/sequence", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		billingHandler.SequencePosition(w, r)
	})
	handle("/invoices", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			billingHandler.CreateInvoices(w, r)
		case http.MethodGet:
			billingHandler.ListInvoices(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	handle("/invoices/", func(w http.ResponseWriter, r *http.Request) {
		rest := r.URL.Path[len("/invoices/"):]
		switch {
		case strings.HasSuffix(rest, "/pdf") && r.Method == http.MethodGet:
			pdfHandler.InvoicePDF(w, r, strings.TrimSuffix(rest, "/pdf"))
		case rest != "" && r.Method == http.MethodGet:
			billingHandler.GetInvoice(w, r, rest)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// Ledger routes
	handle("/ledger/receipts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ledgerHandler.RecordReceipt(w, r)
	})
	handle("/ledger/adjustments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ledgerHandler.RecordAdjustment(w, r)
	})

	// Branch routes
	handle("/branch", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			branchHandler.SaveBranch(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	handle("/branch/", func(w http.ResponseWriter, r *http.Request) {
		branchCode := r.URL.Path[len("/branch/"):]
		if branchCode != "" && r.Method == http.MethodGet {
			branchHandler.GetBranch(w, r, branchCode)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
}
