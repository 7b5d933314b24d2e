package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/notify"
	"github.com/M5Csoftware/m5-server-sub003/repository"
)

// In-memory repositories backing the service tests. They mirror the store
// semantics: atomic balance deltas, conditional one-way locks, and the
// single-open-bag-row rule.

type memStore struct {
	mu        sync.Mutex
	accounts  map[string]*models.CustomerAccount
	shipments map[string]*models.Shipment
	runs      map[string]*models.Run
	processes []*models.RunProcess
	bags      map[string]*models.Bag
	clubs     map[string]*models.Club
	offloads  []*models.OffloadRecord
	events    []*models.LockEvent
	invoices  map[string]*models.Invoice
	ledger    []*models.AccountLedger
}

func newMemStore() *memStore {
	return &memStore{
		accounts:  make(map[string]*models.CustomerAccount),
		shipments: make(map[string]*models.Shipment),
		runs:      make(map[string]*models.Run),
		bags:      make(map[string]*models.Bag),
		clubs:     make(map[string]*models.Club),
		invoices:  make(map[string]*models.Invoice),
	}
}

func (m *memStore) applyDelta(accountCode string, delta float64) {
	if acc, ok := m.accounts[accountCode]; ok {
		acc.LeftOverBalance += delta
	}
}

// ------------------------ accounts ------------------------

type memAccountRepo struct{ s *memStore }

func (r *memAccountRepo) Create(ctx context.Context, account *models.CustomerAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[account.AccountCode]; ok {
		return repository.ErrDuplicateRecord
	}
	cp := *account
	r.s.accounts[account.AccountCode] = &cp
	return nil
}

func (r *memAccountRepo) GetByCode(ctx context.Context, accountCode string) (*models.CustomerAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	acc, ok := r.s.accounts[accountCode]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

// ------------------------ shipments ------------------------

type memShipmentRepo struct{ s *memStore }

func (r *memShipmentRepo) Create(ctx context.Context, shipment *models.Shipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.shipments[shipment.AWBNo]; ok {
		return repository.ErrDuplicateRecord
	}
	if shipment.CreatedAt.IsZero() {
		shipment.CreatedAt = time.Now()
	}
	cp := *shipment
	r.s.shipments[shipment.AWBNo] = &cp
	r.s.applyDelta(shipment.AccountCode, shipment.TotalAmt)
	return nil
}

func (r *memShipmentRepo) GetByAWB(ctx context.Context, awbNo string) (*models.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[awbNo]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *sh
	return &cp, nil
}

func (r *memShipmentRepo) Find(ctx context.Context, filters map[string]interface{}) ([]*models.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Shipment
	for _, sh := range r.s.shipments {
		if run, ok := filters["run_no"]; ok && sh.RunNo != run {
			continue
		}
		if acc, ok := filters["account_code"]; ok && sh.AccountCode != acc {
			continue
		}
		cp := *sh
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memShipmentRepo) UpdateHold(ctx context.Context, awbNo string, isHold bool, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[awbNo]
	if !ok {
		return repository.ErrNotFound
	}
	sh.IsHold = isHold
	sh.HoldReason = reason
	return nil
}

func (r *memShipmentRepo) CorrectTotalAmount(ctx context.Context, awbNo string, newTotal float64) (*models.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[awbNo]
	if !ok {
		return nil, repository.ErrNotFound
	}
	before := *sh
	r.s.applyDelta(sh.AccountCode, newTotal-sh.TotalAmt)
	sh.TotalAmt = newTotal
	sh.IsHold = false
	sh.HoldReason = ""
	return &before, nil
}

func (r *memShipmentRepo) SetCompleteDataLock(ctx context.Context, awbNo, actor string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[awbNo]
	if !ok {
		return repository.ErrNotFound
	}
	sh.CompleteDataLock = true
	r.s.events = append(r.s.events, &models.LockEvent{
		Entity: "shipment", Ref: awbNo, Action: models.LockActionDataLock, Actor: actor,
	})
	return nil
}

// ------------------------ consolidation ------------------------

type memConsolidationRepo struct{ s *memStore }

func (r *memConsolidationRepo) CreateRun(ctx context.Context, run *models.Run) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.runs[run.RunNo]; ok {
		return repository.ErrDuplicateRecord
	}
	cp := *run
	r.s.runs[run.RunNo] = &cp
	r.s.processes = append(r.s.processes, &models.RunProcess{RunNo: run.RunNo, Status: models.RunStatusCreated})
	return nil
}

func (r *memConsolidationRepo) GetRun(ctx context.Context, runNo string) (*models.Run, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	run, ok := r.s.runs[runNo]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (r *memConsolidationRepo) AppendRunProcess(ctx context.Context, proc *models.RunProcess) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *proc
	r.s.processes = append(r.s.processes, &cp)
	return nil
}

func (r *memConsolidationRepo) RunProcessHistory(ctx context.Context, runNo string) ([]*models.RunProcess, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.RunProcess
	for _, p := range r.s.processes {
		if p.RunNo == runNo {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memConsolidationRepo) BagsForRun(ctx context.Context, runNo string) ([]*models.Bag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Bag
	for _, b := range r.s.bags {
		if b.RunNo == runNo {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memConsolidationRepo) SetRunManifest(ctx context.Context, runNo, manifestNo, pdfPath string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	run, ok := r.s.runs[runNo]
	if !ok {
		return repository.ErrNotFound
	}
	run.ManifestNo = manifestNo
	run.PdfPath = pdfPath
	run.PdfCreatedAt = &at
	return nil
}

func (r *memConsolidationRepo) GetBag(ctx context.Context, bagNo string) (*models.Bag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bag, ok := r.s.bags[bagNo]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *bag
	return &cp, nil
}

func (r *memConsolidationRepo) AssignShipment(ctx context.Context, awbNo, bagNo, runNo string, weight float64, actor string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sh, ok := r.s.shipments[awbNo]
	if !ok {
		return repository.ErrNotFound
	}
	if sh.CompleteDataLock {
		return repository.ErrShipmentLocked
	}

	// Pull any prior row from open bags.
	for _, b := range r.s.bags {
		if b.IsFinal {
			continue
		}
		rows := b.Rows[:0]
		for _, row := range b.Rows {
			if row.AWBNo != awbNo {
				rows = append(rows, row)
			}
		}
		b.Rows = rows
	}

	bag, ok := r.s.bags[bagNo]
	if !ok {
		bag = &models.Bag{BagNo: bagNo, RunNo: runNo, CreatedAt: time.Now()}
		r.s.bags[bagNo] = bag
	}
	if bag.IsFinal {
		return repository.ErrBagFinalized
	}
	bag.Rows = append(bag.Rows, models.BagRow{
		AWBNo: awbNo, RunNo: runNo, Weight: weight, AddedAt: time.Now(), AddedBy: actor,
	})

	sh.RunNo = runNo
	sh.BagNo = bagNo
	return nil
}

func (r *memConsolidationRepo) FinalizeBag(ctx context.Context, bagNo, actor string) (*models.Bag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bag, ok := r.s.bags[bagNo]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !bag.IsFinal {
		now := time.Now()
		bag.IsFinal = true
		bag.FinalizedAt = &now
		bag.FinalizedBy = actor
		r.s.events = append(r.s.events, &models.LockEvent{
			Entity: "bag", Ref: bagNo, Action: models.LockActionFinalizeBag, Actor: actor,
		})
	}
	cp := *bag
	return &cp, nil
}

func (r *memConsolidationRepo) GetClub(ctx context.Context, clubNo string) (*models.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	club, ok := r.s.clubs[clubNo]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *club
	return &cp, nil
}

func (r *memConsolidationRepo) AttachToClub(ctx context.Context, awbNo, clubNo string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sh, ok := r.s.shipments[awbNo]
	if !ok {
		return repository.ErrNotFound
	}
	switch {
	case sh.CompleteDataLock:
		return repository.ErrShipmentLocked
	case sh.ClubNo != "":
		return repository.ErrAlreadyClubbed
	case sh.Payment == models.PaymentRTO:
		return repository.ErrNotClubbable
	}

	club, ok := r.s.clubs[clubNo]
	if !ok {
		club = &models.Club{ClubNo: clubNo, CreatedAt: time.Now()}
		r.s.clubs[clubNo] = club
	}
	if club.IsLocked {
		return repository.ErrClubLocked
	}
	sh.ClubNo = clubNo
	return nil
}

func (r *memConsolidationRepo) LockClub(ctx context.Context, clubNo, actor string) (*models.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	club, ok := r.s.clubs[clubNo]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !club.IsLocked {
		now := time.Now()
		club.IsLocked = true
		club.LockedAt = &now
		club.LockedBy = actor
		r.s.events = append(r.s.events, &models.LockEvent{
			Entity: "club", Ref: clubNo, Action: models.LockActionLockClub, Actor: actor,
		})
	}
	cp := *club
	return &cp, nil
}

func (r *memConsolidationRepo) Offload(ctx context.Context, rec *models.OffloadRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sh, ok := r.s.shipments[rec.AWBNo]
	if !ok {
		return repository.ErrNotFound
	}
	for _, b := range r.s.bags {
		if b.IsFinal {
			continue
		}
		rows := b.Rows[:0]
		for _, row := range b.Rows {
			if row.AWBNo != rec.AWBNo {
				rows = append(rows, row)
			}
		}
		b.Rows = rows
	}
	sh.RunNo = ""
	sh.BagNo = ""

	cp := *rec
	r.s.offloads = append(r.s.offloads, &cp)
	return nil
}

func (r *memConsolidationRepo) OffloadHistory(ctx context.Context, awbNo string) ([]*models.OffloadRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.OffloadRecord
	for _, rec := range r.s.offloads {
		if rec.AWBNo == awbNo {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memConsolidationRepo) LockEvents(ctx context.Context, entity, ref string) ([]*models.LockEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.LockEvent
	for _, ev := range r.s.events {
		if ev.Entity == entity && ev.Ref == ref {
			out = append(out, ev)
		}
	}
	return out, nil
}

// ------------------------ billing ------------------------

type memBillingRepo struct{ s *memStore }

func (r *memBillingRepo) LockForBilling(ctx context.Context, accountCode string, from, to time.Time, actor string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, sh := range r.s.shipments {
		if sh.AccountCode != accountCode || sh.IsBilled {
			continue
		}
		if sh.Date.Before(from) || sh.Date.After(to) {
			continue
		}
		if !sh.BillingLocked {
			sh.BillingLocked = true
			count++
		}
	}
	if count > 0 {
		r.s.events = append(r.s.events, &models.LockEvent{
			Entity: "account", Ref: accountCode, Action: models.LockActionBillingLock, Actor: actor,
		})
	}
	return count, nil
}

func (r *memBillingRepo) FindBillable(ctx context.Context, accountCode string, from, to time.Time) ([]*models.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Shipment
	for _, sh := range r.s.shipments {
		if sh.AccountCode != accountCode || !sh.BillingLocked || sh.IsBilled {
			continue
		}
		if sh.Date.Before(from) || sh.Date.After(to) {
			continue
		}
		if sh.IsHold && sh.HoldReason == models.HoldReasonCreditLimit {
			continue
		}
		cp := *sh
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memBillingRepo) CreateInvoice(ctx context.Context, inv *models.Invoice, awbNos []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(awbNos) == 0 {
		return repository.ErrEmptyInvoice
	}
	for _, awb := range awbNos {
		sh, ok := r.s.shipments[awb]
		if !ok || sh.IsBilled {
			return repository.ErrAlreadyBilled
		}
	}

	cp := *inv
	r.s.invoices[inv.InvoiceNumber] = &cp
	for _, awb := range awbNos {
		sh := r.s.shipments[awb]
		sh.IsBilled = true
		sh.InvoiceNumber = inv.InvoiceNumber
	}
	for _, line := range inv.Shipments {
		r.s.ledger = append(r.s.ledger, &models.AccountLedger{
			AccountCode:   inv.AccountCode,
			AWBNo:         line.AWBNo,
			EntryDate:     line.Date,
			PaymentType:   models.PaymentCredit,
			TotalAmt:      line.Amount,
			InvoiceNumber: inv.InvoiceNumber,
		})
	}
	return nil
}

func (r *memBillingRepo) GetInvoice(ctx context.Context, invoiceNumber string) (*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[invoiceNumber]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *memBillingRepo) ListInvoices(ctx context.Context, accountCode string) ([]*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range r.s.invoices {
		if accountCode == "" || inv.AccountCode == accountCode {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memBillingRepo) SetInvoicePDF(ctx context.Context, invoiceSrNo int64, pdfPath string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if inv.InvoiceSrNo == invoiceSrNo {
			inv.PdfPath = pdfPath
			return nil
		}
	}
	return repository.ErrNotFound
}

// ------------------------ ledger ------------------------

type memLedgerRepo struct{ s *memStore }

func (r *memLedgerRepo) Append(ctx context.Context, entry *models.AccountLedger, balanceDelta float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *entry
	r.s.ledger = append(r.s.ledger, &cp)
	r.s.applyDelta(entry.AccountCode, balanceDelta)
	return nil
}

func (r *memLedgerRepo) ForAccount(ctx context.Context, accountCode string) ([]*models.AccountLedger, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.AccountLedger
	for _, e := range r.s.ledger {
		if e.AccountCode == accountCode {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ------------------------ sequencer ------------------------

type memSequencer struct {
	mu  sync.Mutex
	seq int64
}

func (s *memSequencer) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func (s *memSequencer) Current(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq, nil
}

// ------------------------ notifier ------------------------

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Event
	fail bool
}

func (n *recordingNotifier) Send(ctx context.Context, ev notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return fmt.Errorf("dispatch refused")
	}
	n.sent = append(n.sent, ev)
	return nil
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, ev := range n.sent {
		out[i] = ev.Kind
	}
	return out
}
