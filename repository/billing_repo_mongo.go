package repository

import (
	"context"
	"errors"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/google/uuid"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoBillingRepo struct {
	DB *mongo.Client
}

func NewMongoBillingRepo(db *mongo.Client) *MongoBillingRepo {
	return &MongoBillingRepo{DB: db}
}

func (r *MongoBillingRepo) LockForBilling(ctx context.Context, accountCode string, from, to time.Time, actor string) (int64, error) {
	db := r.DB.Database(databaseName)

	var count int64
	err := withMongoTxn(ctx, r.DB, func(sc mongo.SessionContext) error {
		res, err := db.Collection("shipment").UpdateMany(sc,
			bson.M{
				"account_code":   accountCode,
				"date":           bson.M{"$gte": from, "$lte": to},
				"is_billed":      false,
				"billing_locked": false,
			},
			bson.M{"$set": bson.M{"billing_locked": true, "updated_at": time.Now().UTC()}},
		)
		if err != nil {
			return err
		}
		count = res.ModifiedCount
		if count == 0 {
			return nil
		}
		return insertMongoLockEvent(sc, db, "account", accountCode, models.LockActionBillingLock, actor)
	})
	return count, err
}

// FindBillable only ever sees billing-locked, unbilled shipments; a credit
// limit hold keeps a shipment out even when locked.
func (r *MongoBillingRepo) FindBillable(ctx context.Context, accountCode string, from, to time.Time) ([]*models.Shipment, error) {
	db := r.DB.Database(databaseName)

	filter := bson.M{
		"account_code":   accountCode,
		"date":           bson.M{"$gte": from, "$lte": to},
		"billing_locked": true,
		"is_billed":      false,
		"$nor": []bson.M{
			{"is_hold": true, "hold_reason": models.HoldReasonCreditLimit},
		},
	}

	cur, err := db.Collection("shipment").Find(ctx, filter)
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

// CreateInvoice persists the invoice, marks its shipments billed, and appends
// the sale ledger rows in one transaction, so a half-applied invoice cannot
// exist.
func (r *MongoBillingRepo) CreateInvoice(ctx context.Context, inv *models.Invoice, awbNos []string) error {
	if len(awbNos) == 0 {
		return ErrEmptyInvoice
	}
	db := r.DB.Database(databaseName)

	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	return withMongoTxn(ctx, r.DB, func(sc mongo.SessionContext) error {
		if _, err := db.Collection("invoice").InsertOne(sc, inv); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicateRecord
			}
			return err
		}

		res, err := db.Collection("shipment").UpdateMany(sc,
			bson.M{"_id": bson.M{"$in": awbNos}, "is_billed": false},
			bson.M{"$set": bson.M{
				"is_billed":      true,
				"invoice_number": inv.InvoiceNumber,
				"updated_at":     time.Now().UTC(),
			}},
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount != int64(len(awbNos)) {
			// A shipment was billed under a racing invoice; abort the whole
			// transaction rather than double-billing.
			return ErrAlreadyBilled
		}

		for _, line := range inv.Shipments {
			entry := &models.AccountLedger{
				ID:            uuid.NewString(),
				AccountCode:   inv.AccountCode,
				AWBNo:         line.AWBNo,
				EntryDate:     line.Date,
				PaymentType:   models.PaymentCredit,
				TotalAmt:      line.Amount,
				InvoiceNumber: inv.InvoiceNumber,
				CreatedAt:     time.Now().UTC(),
			}
			if _, err := db.Collection("account_ledger").InsertOne(sc, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MongoBillingRepo) GetInvoice(ctx context.Context, invoiceNumber string) (*models.Invoice, error) {
	db := r.DB.Database(databaseName)

	var inv models.Invoice
	err := db.Collection("invoice").FindOne(ctx, bson.M{"invoice_number": invoiceNumber}).Decode(&inv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *MongoBillingRepo) ListInvoices(ctx context.Context, accountCode string) ([]*models.Invoice, error) {
	db := r.DB.Database(databaseName)

	filter := bson.M{}
	if accountCode != "" {
		filter["account_code"] = accountCode
	}
	cur, err := db.Collection("invoice").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Invoice
	for cur.Next(ctx) {
		var inv models.Invoice
		if err := cur.Decode(&inv); err != nil {
			return nil, err
		}
		out = append(out, &inv)
	}
	return out, cur.Err()
}

func (r *MongoBillingRepo) SetInvoicePDF(ctx context.Context, invoiceSrNo int64, pdfPath string) error {
	db := r.DB.Database(databaseName)

	res, err := db.Collection("invoice").UpdateOne(ctx,
		bson.M{"_id": invoiceSrNo},
		bson.M{"$set": bson.M{"pdf_path": pdfPath}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
