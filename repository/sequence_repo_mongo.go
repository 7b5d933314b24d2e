package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const invoiceCounterID = "invoiceSrNo"

// MongoInvoiceSequencer issues serial numbers with a single findAndModify
// $inc against one counter document. The server applies the increment
// atomically, so concurrent callers never see the same value.
type MongoInvoiceSequencer struct {
	DB *mongo.Client
}

func NewMongoInvoiceSequencer(db *mongo.Client) *MongoInvoiceSequencer {
	return &MongoInvoiceSequencer{DB: db}
}

func (s *MongoInvoiceSequencer) Next(ctx context.Context) (int64, error) {
	db := s.DB.Database(databaseName)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection("counters").FindOneAndUpdate(ctx,
		bson.M{"_id": invoiceCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

func (s *MongoInvoiceSequencer) Current(ctx context.Context) (int64, error) {
	db := s.DB.Database(databaseName)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection("counters").FindOne(ctx, bson.M{"_id": invoiceCounterID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return doc.Seq, nil
}
