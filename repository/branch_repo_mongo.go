package repository

import (
	"context"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoBranchRepo struct {
	DB *mongo.Client
}

func NewMongoBranchRepo(db *mongo.Client) *MongoBranchRepo {
	return &MongoBranchRepo{DB: db}
}

func (r *MongoBranchRepo) SaveBranch(ctx context.Context, branch *models.BranchProfile) error {
	db := r.DB.Database(databaseName)

	if branch.CreatedAt.IsZero() {
		branch.CreatedAt = time.Now().UTC()
	}

	_, err := db.Collection("branch_profile").UpdateOne(ctx,
		bson.M{"_id": branch.BranchCode},
		bson.M{"$set": branch},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *MongoBranchRepo) GetBranch(ctx context.Context, branchCode string) (*models.BranchProfile, error) {
	db := r.DB.Database(databaseName)

	var branch models.BranchProfile
	err := db.Collection("branch_profile").FindOne(ctx, bson.M{"_id": branchCode}).Decode(&branch)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &branch, nil
}
