package repository

import (
	"context"
	"errors"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoShipmentRepo struct {
	DB *mongo.Client
}

func NewMongoShipmentRepo(db *mongo.Client) *MongoShipmentRepo {
	return &MongoShipmentRepo{DB: db}
}

// Create inserts the shipment and adds its total to the account's running
// balance with $inc, in one transaction.
func (r *MongoShipmentRepo) Create(ctx context.Context, shipment *models.Shipment) error {
	db := r.DB.Database(databaseName)

	if shipment.CreatedAt.IsZero() {
		shipment.CreatedAt = time.Now().UTC()
	}

	return withMongoTxn(ctx, r.DB, func(sc mongo.SessionContext) error {
		if _, err := db.Collection("shipment").InsertOne(sc, shipment); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicateRecord
			}
			return err
		}
		if shipment.TotalAmt != 0 {
			_, err := db.Collection("customer_account").UpdateOne(sc,
				bson.M{"_id": shipment.AccountCode},
				bson.M{"$inc": bson.M{"left_over_balance": shipment.TotalAmt}},
			)
			return err
		}
		return nil
	})
}

func (r *MongoShipmentRepo) GetByAWB(ctx context.Context, awbNo string) (*models.Shipment, error) {
	db := r.DB.Database(databaseName)

	var s models.Shipment
	err := db.Collection("shipment").FindOne(ctx, bson.M{"_id": awbNo}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Find fetches shipments matching the given filters.
func (r *MongoShipmentRepo) Find(ctx context.Context, filters map[string]interface{}) ([]*models.Shipment, error) {
	db := r.DB.Database(databaseName)

	bsonFilter := bson.M{}
	for k, v := range filters {
		bsonFilter[k] = v
	}

	cur, err := db.Collection("shipment").Find(ctx, bsonFilter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Shipment
	for cur.Next(ctx) {
		var s models.Shipment
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}

func (r *MongoShipmentRepo) UpdateHold(ctx context.Context, awbNo string, isHold bool, reason string) error {
	db := r.DB.Database(databaseName)

	update := bson.M{"$set": bson.M{
		"is_hold":     isHold,
		"hold_reason": reason,
		"updated_at":  time.Now().UTC(),
	}}
	res, err := db.Collection("shipment").UpdateOne(ctx, bson.M{"_id": awbNo}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CorrectTotalAmount applies the new total to the shipment, mirrors the signed
// delta into the account balance with $inc, and clears any hold. The balance
// is never overwritten, so concurrent corrections accumulate correctly.
func (r *MongoShipmentRepo) CorrectTotalAmount(ctx context.Context, awbNo string, newTotal float64) (*models.Shipment, error) {
	db := r.DB.Database(databaseName)

	var before models.Shipment
	err := withMongoTxn(ctx, r.DB, func(sc mongo.SessionContext) error {
		if err := db.Collection("shipment").FindOne(sc, bson.M{"_id": awbNo}).Decode(&before); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return err
		}
		if before.CompleteDataLock {
			return ErrShipmentLocked
		}

		update := bson.M{"$set": bson.M{
			"total_amt":  newTotal,
			"updated_at": time.Now().UTC(),
		}}
		if before.IsHold {
			update["$set"].(bson.M)["is_hold"] = false
			update["$set"].(bson.M)["hold_reason"] = ""
		}
		if _, err := db.Collection("shipment").UpdateOne(sc, bson.M{"_id": awbNo}, update); err != nil {
			return err
		}

		delta := newTotal - before.TotalAmt
		if delta != 0 {
			if _, err := db.Collection("customer_account").UpdateOne(sc,
				bson.M{"_id": before.AccountCode},
				bson.M{"$inc": bson.M{"left_over_balance": delta}},
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &before, nil
}

func (r *MongoShipmentRepo) SetCompleteDataLock(ctx context.Context, awbNo, actor string) error {
	db := r.DB.Database(databaseName)

	return withMongoTxn(ctx, r.DB, func(sc mongo.SessionContext) error {
		res, err := db.Collection("shipment").UpdateOne(sc,
			bson.M{"_id": awbNo},
			bson.M{"$set": bson.M{"complete_data_lock": true, "updated_at": time.Now().UTC()}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		return insertMongoLockEvent(sc, db, "shipment", awbNo, models.LockActionDataLock, actor)
	})
}
