package repository

import (
	"context"
	"errors"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoAccountRepo struct {
	DB *mongo.Client
}

func NewMongoAccountRepo(db *mongo.Client) *MongoAccountRepo {
	return &MongoAccountRepo{DB: db}
}

func (r *MongoAccountRepo) Create(ctx context.Context, account *models.CustomerAccount) error {
	db := r.DB.Database(databaseName)

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	if account.LeftOverBalance == 0 {
		account.LeftOverBalance = account.OpeningBalance
	}

	if _, err := db.Collection("customer_account").InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateRecord
		}
		return err
	}
	return nil
}

func (r *MongoAccountRepo) GetByCode(ctx context.Context, accountCode string) (*models.CustomerAccount, error) {
	db := r.DB.Database(databaseName)

	var account models.CustomerAccount
	err := db.Collection("customer_account").FindOne(ctx, bson.M{"_id": accountCode}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}
