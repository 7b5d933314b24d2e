package repository

import (
	"context"

	"github.com/M5Csoftware/m5-server-sub003/models"
)

type BranchRepository interface {
	SaveBranch(ctx context.Context, branch *models.BranchProfile) error
	GetBranch(ctx context.Context, branchCode string) (*models.BranchProfile, error)
}
