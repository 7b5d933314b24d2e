package repository

import (
	"context"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/google/uuid"

	"go.mongodb.org/mongo-driver/mongo"
)

const databaseName = "m5ops"

// withMongoTxn runs fn inside a session transaction. Every multi-document
// write pair (invoice + billed marks, amount correction + balance delta,
// bag row + shipment stamp) goes through here.
func withMongoTxn(ctx context.Context, client *mongo.Client, fn func(mongo.SessionContext) error) error {
	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// insertMongoLockEvent records a one-way transition inside the caller's
// transaction.
func insertMongoLockEvent(ctx context.Context, db *mongo.Database, entity, ref, action, actor string) error {
	_, err := db.Collection("lock_event").InsertOne(ctx, &models.LockEvent{
		ID:        uuid.NewString(),
		Entity:    entity,
		Ref:       ref,
		Action:    action,
		Actor:     actor,
		CreatedAt: time.Now().UTC(),
	})
	return err
}
