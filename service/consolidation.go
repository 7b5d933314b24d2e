package service

import (
	"context"
	"fmt"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/notify"
	"github.com/M5Csoftware/m5-server-sub003/repository"

	"github.com/rs/zerolog"
)

// ConsolidationService owns the Bag -> Run -> Club -> Manifest grouping and
// the one-way lock transitions that freeze a physical grouping.
type ConsolidationService struct {
	Repo      repository.ConsolidationRepository
	Shipments repository.ShipmentRepository
	Notifier  notify.Dispatcher
	Log       zerolog.Logger
}

func (s *ConsolidationService) CreateRun(ctx context.Context, run *models.Run) error {
	if run.RunNo == "" {
		return fmt.Errorf("%w: run number is required", repository.ErrValidation)
	}
	if err := s.Repo.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("create run %s: %w", run.RunNo, err)
	}
	return nil
}

// AdvanceRun appends one status record to the run's history.
func (s *ConsolidationService) AdvanceRun(ctx context.Context, runNo, status, note string) error {
	if runNo == "" || status == "" {
		return fmt.Errorf("%w: run number and status are required", repository.ErrValidation)
	}
	if _, err := s.Repo.GetRun(ctx, runNo); err != nil {
		return fmt.Errorf("load run %s: %w", runNo, err)
	}
	return s.Repo.AppendRunProcess(ctx, &models.RunProcess{RunNo: runNo, Status: status, Note: note})
}

// AssignToBag scans a shipment into a bag. The stored row weight is the
// chargeable weight, so every later total is computed on the same basis.
func (s *ConsolidationService) AssignToBag(ctx context.Context, awbNo, bagNo, runNo string, actor string) error {
	if awbNo == "" || bagNo == "" || runNo == "" {
		return fmt.Errorf("%w: awb, bag, and run numbers are required", repository.ErrValidation)
	}

	shipment, err := s.Shipments.GetByAWB(ctx, awbNo)
	if err != nil {
		return fmt.Errorf("load shipment %s: %w", awbNo, err)
	}

	if err := s.Repo.AssignShipment(ctx, awbNo, bagNo, runNo, shipment.ChargeableWeight(), actor); err != nil {
		return fmt.Errorf("assign %s to bag %s: %w", awbNo, bagNo, err)
	}

	s.Log.Info().Str("awb", awbNo).Str("bag", bagNo).Str("run", runNo).Msg("shipment bagged")
	return nil
}

// FinalizeBag freezes the bag's row set. Repeated calls succeed as no-ops.
func (s *ConsolidationService) FinalizeBag(ctx context.Context, bagNo, actor string) (*models.Bag, error) {
	if bagNo == "" {
		return nil, fmt.Errorf("%w: bag number is required", repository.ErrValidation)
	}

	bag, err := s.Repo.FinalizeBag(ctx, bagNo, actor)
	if err != nil {
		return nil, fmt.Errorf("finalize bag %s: %w", bagNo, err)
	}

	s.dispatch(ctx, notify.Event{
		Kind:    notify.EventBagFinalized,
		Ref:     bagNo,
		Subject: "Bag " + bagNo + " finalized",
		Body:    fmt.Sprintf("Bag %s on run %s finalized with %d shipments.", bagNo, bag.RunNo, len(bag.Rows)),
	})
	return bag, nil
}

func (s *ConsolidationService) AttachToClub(ctx context.Context, awbNo, clubNo string) error {
	if awbNo == "" || clubNo == "" {
		return fmt.Errorf("%w: awb and club numbers are required", repository.ErrValidation)
	}
	if err := s.Repo.AttachToClub(ctx, awbNo, clubNo); err != nil {
		return fmt.Errorf("attach %s to club %s: %w", awbNo, clubNo, err)
	}
	return nil
}

func (s *ConsolidationService) LockClub(ctx context.Context, clubNo, actor string) (*models.Club, error) {
	if clubNo == "" {
		return nil, fmt.Errorf("%w: club number is required", repository.ErrValidation)
	}
	club, err := s.Repo.LockClub(ctx, clubNo, actor)
	if err != nil {
		return nil, fmt.Errorf("lock club %s: %w", clubNo, err)
	}
	return club, nil
}

// Offload pulls a shipment off its run, returning it to unassigned. A
// shipment that was never bagged cannot be offloaded.
func (s *ConsolidationService) Offload(ctx context.Context, awbNo, reason, actor string) error {
	if awbNo == "" || reason == "" {
		return fmt.Errorf("%w: awb number and reason are required", repository.ErrValidation)
	}

	shipment, err := s.Shipments.GetByAWB(ctx, awbNo)
	if err != nil {
		return fmt.Errorf("load shipment %s: %w", awbNo, err)
	}
	if shipment.RunNo == "" {
		return fmt.Errorf("offload %s: %w", awbNo, repository.ErrNoRunAssigned)
	}

	rec := &models.OffloadRecord{
		AWBNo:  awbNo,
		RunNo:  shipment.RunNo,
		BagNo:  shipment.BagNo,
		Reason: reason,
		Actor:  actor,
	}
	if err := s.Repo.Offload(ctx, rec); err != nil {
		return fmt.Errorf("offload %s: %w", awbNo, err)
	}

	s.Log.Info().Str("awb", awbNo).Str("run", rec.RunNo).Str("reason", reason).Msg("shipment offloaded")
	s.dispatch(ctx, notify.Event{
		Kind:    notify.EventOffloaded,
		Ref:     awbNo,
		Subject: "Shipment " + awbNo + " offloaded",
		Body:    fmt.Sprintf("Shipment %s offloaded from run %s: %s.", awbNo, rec.RunNo, reason),
	})
	return nil
}

// OffloadRun offloads every shipment still riding the run.
func (s *ConsolidationService) OffloadRun(ctx context.Context, runNo, reason, actor string) (int, error) {
	if runNo == "" || reason == "" {
		return 0, fmt.Errorf("%w: run number and reason are required", repository.ErrValidation)
	}

	shipments, err := s.Shipments.Find(ctx, map[string]interface{}{"run_no": runNo})
	if err != nil {
		return 0, fmt.Errorf("list shipments for run %s: %w", runNo, err)
	}

	var offloaded int
	for _, shipment := range shipments {
		rec := &models.OffloadRecord{
			AWBNo:  shipment.AWBNo,
			RunNo:  runNo,
			BagNo:  shipment.BagNo,
			Reason: reason,
			Actor:  actor,
		}
		if err := s.Repo.Offload(ctx, rec); err != nil {
			return offloaded, fmt.Errorf("offload %s: %w", shipment.AWBNo, err)
		}
		offloaded++
	}
	return offloaded, nil
}

// RunSummary aggregates bag weights, not raw shipment weights, so a manually
// re-bagged shipment is never counted twice.
func (s *ConsolidationService) RunSummary(ctx context.Context, runNo string) (*models.RunSummary, error) {
	if _, err := s.Repo.GetRun(ctx, runNo); err != nil {
		return nil, fmt.Errorf("load run %s: %w", runNo, err)
	}

	bags, err := s.Repo.BagsForRun(ctx, runNo)
	if err != nil {
		return nil, fmt.Errorf("list bags for run %s: %w", runNo, err)
	}

	summary := &models.RunSummary{RunNo: runNo, Bags: len(bags)}
	for _, bag := range bags {
		summary.Shipments += len(bag.Rows)
		summary.TotalWeight += bag.TotalWeight()
	}
	return summary, nil
}

func (s *ConsolidationService) dispatch(ctx context.Context, ev notify.Event) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Send(ctx, ev); err != nil {
		s.Log.Warn().Err(err).Str("kind", ev.Kind).Str("ref", ev.Ref).Msg("notification failed")
	}
}
