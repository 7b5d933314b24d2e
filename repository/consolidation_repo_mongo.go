package repository

import (
	"context"
	"errors"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/google/uuid"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoConsolidationRepo struct {
	DB *mongo.Client
}

func NewMongoConsolidationRepo(db *mongo.Client) *MongoConsolidationRepo {
	return &MongoConsolidationRepo{DB: db}
}

// ------------------------ Runs ------------------------

func (r *MongoConsolidationRepo) CreateRun(ctx context.Context, run *models.Run) error {
	db := r.DB.Database(databaseName)

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if _, err := db.Collection("run").InsertOne(ctx, run); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateRecord
		}
		return err
	}
	return r.AppendRunProcess(ctx, &models.RunProcess{
		RunNo:  run.RunNo,
		Status: models.RunStatusCreated,
	})
}

func (r *MongoConsolidationRepo) GetRun(ctx context.Context, runNo string) (*models.Run, error) {
	db := r.DB.Database(databaseName)

	var run models.Run
	err := db.Collection("run").FindOne(ctx, bson.M{"_id": runNo}).Decode(&run)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

func (r *MongoConsolidationRepo) AppendRunProcess(ctx context.Context, proc *models.RunProcess) error {
	db := r.DB.Database(databaseName)

	if proc.ID == "" {
		proc.ID = uuid.NewString()
	}
	if proc.CreatedAt.IsZero() {
		proc.CreatedAt = time.Now().UTC()
	}
	_, err := db.Collection("run_process").InsertOne(ctx, proc)
	return err
}

func (r *MongoConsolidationRepo) RunProcessHistory(ctx context.Context, runNo string) ([]*models.RunProcess, error) {
	db := r.DB.Database(databaseName)

	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cur, err := db.Collection("run_process").Find(ctx, bson.M{"run_no": runNo}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.RunProcess
	for cur.Next(ctx) {
		var p models.RunProcess
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, cur.Err()
}

func (r *MongoConsolidationRepo) BagsForRun(ctx context.Context, runNo string) ([]*models.Bag, error) {
	db := r.DB.Database(databaseName)

	cur, err := db.Collection("bag").Find(ctx, bson.M{"run_no": runNo})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Bag
	for cur.Next(ctx) {
		var b models.Bag
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, cur.Err()
}

func (r *MongoConsolidationRepo) SetRunManifest(ctx context.Context, runNo, manifestNo, pdfPath string, at time.Time) error {
	db := r.DB.Database(databaseName)

	res, err := db.Collection("run").UpdateOne(ctx,
		bson.M{"_id": runNo},
		bson.M{"$set": bson.M{"manifest_no": manifestNo, "pdf_path": pdfPath, "pdf_created_at": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ------------------------ Bags ------------------------

func (r *MongoConsolidationRepo) GetBag(ctx context.Context, bagNo string) (*models.Bag, error) {
	db := r.DB.Database(databaseName)

	var bag models.Bag
	err := db.Collection("bag").FindOne(ctx, bson.M{"_id": bagNo}).Decode(&bag)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bag, nil
}

// AssignShipment puts the AWB into the target bag. The prior open-bag row for
// the same AWB is pulled in the same transaction, so a shipment sits in at
// most one open bag at a time.
func (r *MongoConsolidationRepo) AssignShipment(ctx context.Context, awbNo, bagNo, runNo string, weight float64, actor string) error {
	db := r.DB.Database(databaseName)

	return withMongoTxn(ctx, r.DB, func(sc mongo.SessionContext) error {
		var shipment models.Shipment
		if err := db.Collection("shipment").FindOne(sc, bson.M{"_id": awbNo}).Decode(&shipment); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return err
		}
		if shipment.CompleteDataLock {
			return ErrShipmentLocked
		}

		// Pull any prior row from open bags only; finalized bags stay frozen.
		if _, err := db.Collection("bag").UpdateMany(sc,
			bson.M{"is_final": false, "rows.awb_no": awbNo},
			bson.M{"$pull": bson.M{"rows": bson.M{"awb_no": awbNo}}},
		); err != nil {
			return err
		}

		row := models.BagRow{
			AWBNo:   awbNo,
			RunNo:   runNo,
			Weight:  weight,
			AddedAt: time.Now().UTC(),
			AddedBy: actor,
		}

		// The is_final filter makes the append conditional: a finalized bag
		// never matches, so its row set cannot grow.
		res, err := db.Collection("bag").UpdateOne(sc,
			bson.M{"_id": bagNo, "is_final": false},
			bson.M{
				"$push":        bson.M{"rows": row},
				"$setOnInsert": bson.M{"run_no": runNo, "created_at": time.Now().UTC()},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Upsert raced a finalized bag with the same _id.
				return ErrBagFinalized
			}
			return err
		}
		if res.MatchedCount == 0 && res.UpsertedCount == 0 {
			return ErrBagFinalized
		}

		_, err = db.Collection("shipment").UpdateOne(sc,
			bson.M{"_id": awbNo},
			bson.M{"$set": bson.M{"run_no": runNo, "bag_no": bagNo, "updated_at": time.Now().UTC()}},
		)
		return err
	})
}

// FinalizeBag flips is_final exactly once. A repeat call is a no-op success
// because operators double-submit.
func (r *MongoConsolidationRepo) FinalizeBag(ctx context.Context, bagNo, actor string) (*models.Bag, error) {
	db := r.DB.Database(databaseName)

	var bag models.Bag
	err := withMongoTxn(ctx, r.DB, func(sc mongo.SessionContext) error {
		now := time.Now().UTC()
		res := db.Collection("bag").FindOneAndUpdate(sc,
			bson.M{"_id": bagNo, "is_final": false},
			bson.M{"$set": bson.M{"is_final": true, "finalized_at": now, "finalized_by": actor}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		if err := res.Decode(&bag); err != nil {
			if !errors.Is(err, mongo.ErrNoDocuments) {
				return err
			}
			// Already finalized, or missing entirely.
			if err := db.Collection("bag").FindOne(sc, bson.M{"_id": bagNo}).Decode(&bag); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return ErrNotFound
				}
				return err
			}
			return nil
		}
		return insertMongoLockEvent(sc, db, "bag", bagNo, models.LockActionFinalizeBag, actor)
	})
	if err != nil {
		return nil, err
	}
	return &bag, nil
}

// ------------------------ Clubs ------------------------

func (r *MongoConsolidationRepo) GetClub(ctx context.Context, clubNo string) (*models.Club, error) {
	db := r.DB.Database(databaseName)

	var club models.Club
	err := db.Collection("club").FindOne(ctx, bson.M{"_id": clubNo}).Decode(&club)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &club, nil
}

func (r *MongoConsolidationRepo) AttachToClub(ctx context.Context, awbNo, clubNo string) error {
	db := r.DB.Database(databaseName)

	return withMongoTxn(ctx, r.DB, func(sc mongo.SessionContext) error {
		var shipment models.Shipment
		if err := db.Collection("shipment").FindOne(sc, bson.M{"_id": awbNo}).Decode(&shipment); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return err
		}
		switch {
		case shipment.CompleteDataLock:
			return ErrShipmentLocked
		case shipment.ClubNo != "":
			return ErrAlreadyClubbed
		case shipment.Payment == models.PaymentRTO:
			return ErrNotClubbable
		}

		// Create the club on first attach; reject a locked one.
		res, err := db.Collection("club").UpdateOne(sc,
			bson.M{"_id": clubNo, "is_locked": false},
			bson.M{"$setOnInsert": bson.M{"created_at": time.Now().UTC()}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrClubLocked
			}
			return err
		}
		if res.MatchedCount == 0 && res.UpsertedCount == 0 {
			return ErrClubLocked
		}

		_, err = db.Collection("shipment").UpdateOne(sc,
			bson.M{"_id": awbNo},
			bson.M{"$set": bson.M{"club_no": clubNo, "updated_at": time.Now().UTC()}},
		)
		return err
	})
}

func (r *MongoConsolidationRepo) LockClub(ctx context.Context, clubNo, actor string) (*models.Club, error) {
	db := r.DB.Database(databaseName)

	var club models.Club
	err := withMongoTxn(ctx, r.DB, func(sc mongo.SessionContext) error {
		now := time.Now().UTC()
		res := db.Collection("club").FindOneAndUpdate(sc,
			bson.M{"_id": clubNo, "is_locked": false},
			bson.M{"$set": bson.M{"is_locked": true, "locked_at": now, "locked_by": actor}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		if err := res.Decode(&club); err != nil {
			if !errors.Is(err, mongo.ErrNoDocuments) {
				return err
			}
			if err := db.Collection("club").FindOne(sc, bson.M{"_id": clubNo}).Decode(&club); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return ErrNotFound
				}
				return err
			}
			return nil
		}
		return insertMongoLockEvent(sc, db, "club", clubNo, models.LockActionLockClub, actor)
	})
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// ------------------------ Offload ------------------------

func (r *MongoConsolidationRepo) Offload(ctx context.Context, rec *models.OffloadRecord) error {
	db := r.DB.Database(databaseName)

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	return withMongoTxn(ctx, r.DB, func(sc mongo.SessionContext) error {
		if _, err := db.Collection("bag").UpdateMany(sc,
			bson.M{"is_final": false, "rows.awb_no": rec.AWBNo},
			bson.M{"$pull": bson.M{"rows": bson.M{"awb_no": rec.AWBNo}}},
		); err != nil {
			return err
		}
		if _, err := db.Collection("shipment").UpdateOne(sc,
			bson.M{"_id": rec.AWBNo},
			bson.M{"$set": bson.M{"run_no": "", "bag_no": "", "updated_at": time.Now().UTC()}},
		); err != nil {
			return err
		}
		_, err := db.Collection("offload_record").InsertOne(sc, rec)
		return err
	})
}

func (r *MongoConsolidationRepo) OffloadHistory(ctx context.Context, awbNo string) ([]*models.OffloadRecord, error) {
	db := r.DB.Database(databaseName)

	cur, err := db.Collection("offload_record").Find(ctx, bson.M{"awb_no": awbNo})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.OffloadRecord
	for cur.Next(ctx) {
		var rec models.OffloadRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, cur.Err()
}

func (r *MongoConsolidationRepo) LockEvents(ctx context.Context, entity, ref string) ([]*models.LockEvent, error) {
	db := r.DB.Database(databaseName)

	cur, err := db.Collection("lock_event").Find(ctx, bson.M{"entity": entity, "ref": ref})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.LockEvent
	for cur.Next(ctx) {
		var ev models.LockEvent
		if err := cur.Decode(&ev); err != nil {
			return nil, err
		}
		out = append(out, &ev)
	}
	return out, cur.Err()
}
