package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/beanmarket/internal/engine"
	"github.com/talgya/beanmarket/internal/entropy"
	"github.com/talgya/beanmarket/internal/trade"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHasSnapshotEmptyDB(t *testing.T) {
	db := openTestDB(t)
	assert.False(t, db.HasSnapshot())
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)

	eng := engine.New(entropy.NewSource(42))
	eng.Initialize(5, 42)
	for i := 0; i < 10; i++ {
		eng.AdvanceStep()
	}
	require.NoError(t, eng.AddContract(&trade.Contract{
		ID:            "c-test",
		SupplierID:    "S1",
		Status:        trade.ContractActive,
		PricePerPound: 5.25,
		BeanTypes:     []string{"Arabica"},
	}))
	require.NoError(t, eng.AddOrder(&trade.Order{
		ID:                   "o-test",
		ContractID:           "c-test",
		Status:               trade.OrderPending,
		VolumeLbs:            10000,
		ExpectedDeliveryDate: "2026-06-01",
	}))

	require.NoError(t, db.SaveSnapshot(eng))
	assert.True(t, db.HasSnapshot())

	snap, err := db.LoadSnapshot()
	require.NoError(t, err)

	assert.Equal(t, 10, snap.Step)
	assert.WithinDuration(t, eng.SimDate(), snap.SimDate, time.Second)

	require.Len(t, snap.Suppliers, 5)
	want := eng.Suppliers()
	for i, s := range snap.Suppliers {
		assert.Equal(t, want[i].ID, s.ID)
		assert.Equal(t, want[i].Region, s.Region)
		assert.Equal(t, want[i].QualityScore, s.QualityScore)
		assert.Equal(t, want[i].BeanTypes, s.BeanTypes)
		assert.Equal(t, want[i].Certifications, s.Certifications)
	}

	var loaded *trade.Contract
	for _, c := range snap.Contracts {
		if c.ID == "c-test" {
			loaded = c
		}
	}
	require.NotNil(t, loaded)
	assert.Equal(t, 5.25, loaded.PricePerPound)
	assert.Equal(t, []string{"Arabica"}, loaded.BeanTypes)

	var order *trade.Order
	for _, o := range snap.Orders {
		if o.ID == "o-test" {
			order = o
		}
	}
	require.NotNil(t, order)
	assert.Equal(t, 10000, order.VolumeLbs)
	assert.Equal(t, "2026-06-01", order.ExpectedDeliveryDate)

	wantCond := eng.MarketConditions()
	assert.Equal(t, wantCond.AveragePrice, snap.Conditions.AveragePrice)
	assert.Equal(t, wantCond.PriceTrend, snap.Conditions.PriceTrend)
	assert.Len(t, snap.Conditions.PriceHistory, len(wantCond.PriceHistory))
	assert.Equal(t, wantCond.RegionalPrices, snap.Conditions.RegionalPrices)
	assert.Equal(t, wantCond.BeanPrices, snap.Conditions.BeanPrices)
}

func TestSaveSnapshotIsFullReplace(t *testing.T) {
	db := openTestDB(t)

	eng := engine.New(entropy.NewSource(1))
	eng.Initialize(3, 1)
	require.NoError(t, eng.AddOrder(&trade.Order{ID: "o1", Status: trade.OrderPending}))
	require.NoError(t, db.SaveSnapshot(eng))

	// A later save must replace, not accumulate.
	require.NoError(t, db.SaveSnapshot(eng))

	snap, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Suppliers, 3)
	assert.Len(t, snap.Orders, 1)
}

func TestRestoreFromSnapshotContinues(t *testing.T) {
	db := openTestDB(t)

	eng := engine.New(entropy.NewSource(7))
	eng.Initialize(4, 7)
	for i := 0; i < 5; i++ {
		eng.AdvanceStep()
	}
	require.NoError(t, db.SaveSnapshot(eng))

	snap, err := db.LoadSnapshot()
	require.NoError(t, err)

	resumed := engine.New(entropy.NewSource(8))
	resumed.Restore(snap.Suppliers, snap.Contracts, snap.Orders, snap.Conditions,
		snap.Step, snap.SimDate, 7)

	require.Equal(t, 5, resumed.Step())
	priceBefore := resumed.MarketConditions().AveragePrice

	resumed.AdvanceStep()
	assert.Equal(t, 6, resumed.Step())
	assert.NotNil(t, resumed.Changes().MarketConditions)
	assert.Equal(t, priceBefore, resumed.Changes().MarketConditions.OldPrice)
}
