package service

import "context"

// RateQuote is the amount breakup a rate lookup produces for a shipment.
type RateQuote struct {
	BasicAmount float64 `json:"basic_amount"`
	FuelAmount  float64 `json:"fuel_amount"`
	CGSTAmount  float64 `json:"cgst_amount"`
	SGSTAmount  float64 `json:"sgst_amount"`
	TotalAmt    float64 `json:"total_amt"`
}

// RateEngine quotes freight for a sector/service/weight triple. Lookups are
// advisory; booking proceeds with operator-entered amounts when the engine
// cannot quote.
type RateEngine interface {
	Quote(ctx context.Context, sector, service string, chargeableWeight float64) (*RateQuote, error)
}

// StaticRateEngine quotes from a fixed per-kg tariff table keyed by sector.
type StaticRateEngine struct {
	PerKg       map[string]float64
	DefaultRate float64
	FuelPct     float64
	GSTPct      float64
}

func (e *StaticRateEngine) Quote(ctx context.Context, sector, service string, chargeableWeight float64) (*RateQuote, error) {
	rate, ok := e.PerKg[sector]
	if !ok {
		rate = e.DefaultRate
	}

	q := &RateQuote{BasicAmount: rate * chargeableWeight}
	q.FuelAmount = q.BasicAmount * e.FuelPct / 100
	taxable := q.BasicAmount + q.FuelAmount
	q.CGSTAmount = taxable * e.GSTPct / 200
	q.SGSTAmount = taxable * e.GSTPct / 200
	q.TotalAmt = taxable + q.CGSTAmount + q.SGSTAmount
	return q, nil
}
