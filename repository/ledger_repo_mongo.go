package repository

import (
	"context"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/google/uuid"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoLedgerRepo struct {
	DB *mongo.Client
}

func NewMongoLedgerRepo(db *mongo.Client) *MongoLedgerRepo {
	return &MongoLedgerRepo{DB: db}
}

func (r *MongoLedgerRepo) Append(ctx context.Context, entry *models.AccountLedger, balanceDelta float64) error {
	db := r.DB.Database(databaseName)

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	return withMongoTxn(ctx, r.DB, func(sc mongo.SessionContext) error {
		if _, err := db.Collection("account_ledger").InsertOne(sc, entry); err != nil {
			return err
		}
		if balanceDelta != 0 {
			_, err := db.Collection("customer_account").UpdateOne(sc,
				bson.M{"_id": entry.AccountCode},
				bson.M{"$inc": bson.M{"left_over_balance": balanceDelta}},
			)
			return err
		}
		return nil
	})
}

func (r *MongoLedgerRepo) ForAccount(ctx context.Context, accountCode string) ([]*models.AccountLedger, error) {
	db := r.DB.Database(databaseName)

	opts := options.Find().SetSort(bson.M{"entry_date": 1})
	cur, err := db.Collection("account_ledger").Find(ctx, bson.M{"account_code": accountCode}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.AccountLedger
	for cur.Next(ctx) {
		var e models.AccountLedger
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, cur.Err()
}
