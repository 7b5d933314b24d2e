package repository

import (
	"context"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
)

type ConsolidationRepository interface {
	CreateRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, runNo string) (*models.Run, error)
	AppendRunProcess(ctx context.Context, proc *models.RunProcess) error
	RunProcessHistory(ctx context.Context, runNo string) ([]*models.RunProcess, error)
	BagsForRun(ctx context.Context, runNo string) ([]*models.Bag, error)
	SetRunManifest(ctx context.Context, runNo, manifestNo, pdfPath string, at time.Time) error

	GetBag(ctx context.Context, bagNo string) (*models.Bag, error)
	// AssignShipment appends a row to the target bag (creating the bag for the
	// run if it does not exist yet), removes any prior open-bag row for the
	// same AWB, and stamps run/bag onto the shipment in one transaction.
	// Fails with ErrBagFinalized or ErrShipmentLocked.
	AssignShipment(ctx context.Context, awbNo, bagNo, runNo string, weight float64, actor string) error
	// FinalizeBag is a one-way transition; repeating it is a no-op success.
	FinalizeBag(ctx context.Context, bagNo, actor string) (*models.Bag, error)

	GetClub(ctx context.Context, clubNo string) (*models.Club, error)
	AttachToClub(ctx context.Context, awbNo, clubNo string) error
	// LockClub is one-way like bag finalization.
	LockClub(ctx context.Context, clubNo, actor string) (*models.Club, error)

	// Offload clears the shipment's run/bag association, pulls its row from
	// any open bag, and persists the offload record in one transaction.
	Offload(ctx context.Context, rec *models.OffloadRecord) error
	OffloadHistory(ctx context.Context, awbNo string) ([]*models.OffloadRecord, error)

	LockEvents(ctx context.Context, entity, ref string) ([]*models.LockEvent, error)
}
