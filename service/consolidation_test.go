package service

import (
	"context"
	"testing"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newConsolidationFixture(t *testing.T) (*ConsolidationService, *memStore, *recordingNotifier) {
	t.Helper()
	store := newMemStore()
	notifier := &recordingNotifier{}
	svc := &ConsolidationService{
		Repo:      &memConsolidationRepo{s: store},
		Shipments: &memShipmentRepo{s: store},
		Notifier:  notifier,
		Log:       zerolog.Nop(),
	}
	store.runs["RUN1"] = &models.Run{RunNo: "RUN1", Origin: "BOM", Destination: "DEL"}
	store.shipments["AWB1"] = &models.Shipment{AWBNo: "AWB1", AccountCode: "CUST01", ActualWeight: 10, VolumetricWeight: 12}
	store.shipments["AWB2"] = &models.Shipment{AWBNo: "AWB2", AccountCode: "CUST01", ActualWeight: 8, VolumetricWeight: 5}
	return svc, store, notifier
}

func TestAssignToBagUsesChargeableWeight(t *testing.T) {
	svc, store, _ := newConsolidationFixture(t)

	require.NoError(t, svc.AssignToBag(context.Background(), "AWB1", "BAG1", "RUN1", "op1"))

	bag := store.bags["BAG1"]
	require.Len(t, bag.Rows, 1)
	require.InDelta(t, 12, bag.Rows[0].Weight, 0.001) // volumetric wins

	sh := store.shipments["AWB1"]
	require.Equal(t, "RUN1", sh.RunNo)
	require.Equal(t, "BAG1", sh.BagNo)
}

func TestReassignMovesRowOutOfOpenBag(t *testing.T) {
	svc, store, _ := newConsolidationFixture(t)

	require.NoError(t, svc.AssignToBag(context.Background(), "AWB1", "BAG1", "RUN1", "op1"))
	require.NoError(t, svc.AssignToBag(context.Background(), "AWB1", "BAG2", "RUN1", "op1"))

	require.Empty(t, store.bags["BAG1"].Rows)
	require.Len(t, store.bags["BAG2"].Rows, 1)
	require.Equal(t, "BAG2", store.shipments["AWB1"].BagNo)
}

func TestFinalizeBagIdempotent(t *testing.T) {
	svc, _, _ := newConsolidationFixture(t)

	require.NoError(t, svc.AssignToBag(context.Background(), "AWB1", "BAG1", "RUN1", "op1"))

	first, err := svc.FinalizeBag(context.Background(), "BAG1", "op1")
	require.NoError(t, err)
	require.True(t, first.IsFinal)

	second, err := svc.FinalizeBag(context.Background(), "BAG1", "op2")
	require.NoError(t, err)
	require.True(t, second.IsFinal)
	require.Equal(t, "op1", second.FinalizedBy)

	// One audit record, not two.
	events, err := svc.Repo.LockEvents(context.Background(), "bag", "BAG1")
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestAssignAfterFinalizeRejected(t *testing.T) {
	svc, _, _ := newConsolidationFixture(t)

	require.NoError(t, svc.AssignToBag(context.Background(), "AWB1", "BAG1", "RUN1", "op1"))
	_, err := svc.FinalizeBag(context.Background(), "BAG1", "op1")
	require.NoError(t, err)

	err = svc.AssignToBag(context.Background(), "AWB2", "BAG1", "RUN1", "op1")
	require.ErrorIs(t, err, repository.ErrBagFinalized)
}

func TestAssignLockedShipmentRejected(t *testing.T) {
	svc, store, _ := newConsolidationFixture(t)
	store.shipments["AWB1"].CompleteDataLock = true

	err := svc.AssignToBag(context.Background(), "AWB1", "BAG1", "RUN1", "op1")
	require.ErrorIs(t, err, repository.ErrShipmentLocked)
}

func TestAttachToClubPreconditions(t *testing.T) {
	svc, store, _ := newConsolidationFixture(t)

	require.NoError(t, svc.AttachToClub(context.Background(), "AWB1", "CLUB1"))
	require.Equal(t, "CLUB1", store.shipments["AWB1"].ClubNo)

	// Already clubbed.
	err := svc.AttachToClub(context.Background(), "AWB1", "CLUB2")
	require.ErrorIs(t, err, repository.ErrAlreadyClubbed)

	// RTO shipments never club.
	store.shipments["AWB2"].Payment = models.PaymentRTO
	err = svc.AttachToClub(context.Background(), "AWB2", "CLUB1")
	require.ErrorIs(t, err, repository.ErrNotClubbable)
}

func TestAttachToLockedClubRejected(t *testing.T) {
	svc, _, _ := newConsolidationFixture(t)

	require.NoError(t, svc.AttachToClub(context.Background(), "AWB1", "CLUB1"))
	_, err := svc.LockClub(context.Background(), "CLUB1", "op1")
	require.NoError(t, err)

	err = svc.AttachToClub(context.Background(), "AWB2", "CLUB1")
	require.ErrorIs(t, err, repository.ErrClubLocked)
}

func TestLockClubIdempotent(t *testing.T) {
	svc, _, _ := newConsolidationFixture(t)

	require.NoError(t, svc.AttachToClub(context.Background(), "AWB1", "CLUB1"))

	first, err := svc.LockClub(context.Background(), "CLUB1", "op1")
	require.NoError(t, err)
	require.True(t, first.IsLocked)

	second, err := svc.LockClub(context.Background(), "CLUB1", "op2")
	require.NoError(t, err)
	require.Equal(t, "op1", second.LockedBy)
}

func TestOffloadRequiresRun(t *testing.T) {
	svc, _, _ := newConsolidationFixture(t)

	err := svc.Offload(context.Background(), "AWB1", "space constraint", "op1")
	require.ErrorIs(t, err, repository.ErrNoRunAssigned)
}

func TestOffloadClearsAssignment(t *testing.T) {
	svc, store, notifier := newConsolidationFixture(t)

	require.NoError(t, svc.AssignToBag(context.Background(), "AWB1", "BAG1", "RUN1", "op1"))
	require.NoError(t, svc.Offload(context.Background(), "AWB1", "space constraint", "op1"))

	sh := store.shipments["AWB1"]
	require.Empty(t, sh.RunNo)
	require.Empty(t, sh.BagNo)
	require.Empty(t, store.bags["BAG1"].Rows)

	history, err := svc.Repo.OffloadHistory(context.Background(), "AWB1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "RUN1", history[0].RunNo)
	require.Contains(t, notifier.kinds(), "shipment.offloaded")
}

func TestRunSummaryAggregatesBagWeights(t *testing.T) {
	svc, _, _ := newConsolidationFixture(t)

	require.NoError(t, svc.AssignToBag(context.Background(), "AWB1", "BAG1", "RUN1", "op1"))
	require.NoError(t, svc.AssignToBag(context.Background(), "AWB2", "BAG2", "RUN1", "op1"))

	summary, err := svc.RunSummary(context.Background(), "RUN1")
	require.NoError(t, err)
	require.Equal(t, 2, summary.Bags)
	require.Equal(t, 2, summary.Shipments)
	require.InDelta(t, 20, summary.TotalWeight, 0.001) // 12 + 8 chargeable

	// A re-bagged shipment counts once.
	require.NoError(t, svc.AssignToBag(context.Background(), "AWB1", "BAG2", "RUN1", "op1"))
	summary, err = svc.RunSummary(context.Background(), "RUN1")
	require.NoError(t, err)
	require.Equal(t, 2, summary.Shipments)
	require.InDelta(t, 20, summary.TotalWeight, 0.001)
}

func TestAdvanceRunAppendsHistory(t *testing.T) {
	svc, _, _ := newConsolidationFixture(t)

	require.NoError(t, svc.AdvanceRun(context.Background(), "RUN1", models.RunStatusDeparted, "wheels up"))

	history, err := svc.Repo.RunProcessHistory(context.Background(), "RUN1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, models.RunStatusDeparted, history[0].Status)
}
