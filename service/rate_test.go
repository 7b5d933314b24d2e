package service

import (
	"context"
	"testing"

	"github.com/M5Csoftware/m5-server-sub003/models"

	"github.com/stretchr/testify/require"
)

func TestStaticRateEngineQuote(t *testing.T) {
	engine := &StaticRateEngine{
		PerKg:       map[string]float64{"BOM-DEL": 60},
		DefaultRate: 50,
		FuelPct:     10,
		GSTPct:      18,
	}

	q, err := engine.Quote(context.Background(), "BOM-DEL", "Express", 10)
	require.NoError(t, err)
	require.InDelta(t, 600, q.BasicAmount, 0.001)
	require.InDelta(t, 60, q.FuelAmount, 0.001)
	require.InDelta(t, 59.4, q.CGSTAmount, 0.001)
	require.InDelta(t, 59.4, q.SGSTAmount, 0.001)
	require.InDelta(t, 778.8, q.TotalAmt, 0.001)

	// Unknown sector falls back to the default rate.
	q, err = engine.Quote(context.Background(), "XXX-YYY", "Express", 2)
	require.NoError(t, err)
	require.InDelta(t, 100, q.BasicAmount, 0.001)
}

func TestRegisterShipmentQuotesWhenNoAmount(t *testing.T) {
	cc, store, _ := newCreditFixture(t)
	cc.Rates = &StaticRateEngine{DefaultRate: 50, FuelPct: 0, GSTPct: 0}

	require.NoError(t, cc.RegisterShipment(context.Background(), &models.Shipment{
		AWBNo:        "AWB200",
		AccountCode:  "CUST01",
		ActualWeight: 4,
	}))

	sh := store.shipments["AWB200"]
	require.InDelta(t, 200, sh.TotalAmt, 0.001)
	require.InDelta(t, 200, sh.BasicAmount, 0.001)
}
