package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tieredVenue = 38

func item(product, price string, reservations int64, total int64) LineItem {
	return LineItem{
		Product:          product,
		Price:            price,
		ReservationCount: Int64Ptr(reservations),
		TotalRevenue:     decimal.NewFromInt(total),
	}
}

func productNames(items []LineItem) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Product
	}
	return names
}

func TestTierRenamer_GeneralAccessReleases(t *testing.T) {
	r := NewTierRenamer(DefaultVenueRules(), nil)

	out := r.Retier([]LineItem{
		item("GENERAL ACCESS", "500.00", 2, 1000),
		item("GENERAL ACCESS", "1000.00", 1, 1000),
		item("GENERAL ACCESS", "1500.00", 1, 1500),
		item("GENERAL ACCESS", "2000.00", 1, 2000),
		item("Vagalume GENERAL ACCESS", "500.00", 3, 1500),
	}, tieredVenue)

	require.Len(t, out, 4)
	assert.Equal(t, []string{
		"GA - Early Bird",
		"GA - First Release",
		"GA - Second Release",
		"GA - Last Release",
	}, productNames(out))

	early := out[0]
	assert.Equal(t, int64(5), early.Reservations())
	require.NotNil(t, early.Quantity)
	assert.Equal(t, int64(5), *early.Quantity)
	assert.True(t, early.TotalRevenue.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, "500.00", early.Price)
}

func TestTierRenamer_ExtraPricesShareFinalLabel(t *testing.T) {
	r := NewTierRenamer(DefaultVenueRules(), nil)

	out := r.Retier([]LineItem{
		item("GENERAL ACCESS", "100", 1, 100),
		item("GENERAL ACCESS", "200", 1, 200),
		item("GENERAL ACCESS", "300", 1, 300),
		item("GENERAL ACCESS", "400", 1, 400),
		item("GENERAL ACCESS", "500", 1, 500),
	}, tieredVenue)

	require.Len(t, out, 5)
	assert.Equal(t, "GA - Last Release", out[3].Product)
	assert.Equal(t, "GA - Last Release", out[4].Product)
	assert.Equal(t, "500", out[4].Price)
}

func TestTierRenamer_BucketOrder(t *testing.T) {
	r := NewTierRenamer(DefaultVenueRules(), nil)

	out := r.Retier([]LineItem{
		item("VIP TABLE", "8000", 1, 8000),
		item("NYE DINNER TABLE EXPERIENCE", "5000", 2, 10000),
		item("NYE GENERAL ADMISSION", "1200", 1, 1200),
		item("NYE GENERAL ACCESS", "800", 1, 800),
		item("NYE FAMILY STYLE DINNER", "3000", 1, 3000),
		item("GENERAL ACCESS", "500", 4, 2000),
	}, tieredVenue)

	assert.Equal(t, []string{
		"GA - Early Bird",
		"NYE - GA - First Release",
		"NYE - GA - Early Bird",
		"NYE Dinner Experience - Early Bird",
		"NYE Family Style - Early Bird",
		"VIP TABLE",
	}, productNames(out))
}

func TestTierRenamer_Passthrough(t *testing.T) {
	r := NewTierRenamer(DefaultVenueRules(), nil)
	items := []LineItem{item("GENERAL ACCESS", "500", 1, 500)}

	t.Run("venue without tiering", func(t *testing.T) {
		assert.Equal(t, items, r.Retier(items, 41))
	})

	t.Run("no tiered products", func(t *testing.T) {
		plain := []LineItem{item("VIP TABLE", "8000", 1, 8000)}
		assert.Equal(t, plain, r.Retier(plain, tieredVenue))
	})
}

func TestTierRenamer_DoesNotMutateInput(t *testing.T) {
	r := NewTierRenamer(DefaultVenueRules(), nil)
	items := []LineItem{
		item("GENERAL ACCESS", "500", 1, 500),
		item("GENERAL ACCESS", "500", 2, 1000),
	}

	out := r.Retier(items, tieredVenue)

	require.Len(t, out, 1)
	assert.Equal(t, "GENERAL ACCESS", items[0].Product)
	assert.Equal(t, int64(1), items[0].Reservations())
	assert.Equal(t, int64(2), items[1].Reservations())
}

func TestTierRenamer_CustomBuckets(t *testing.T) {
	buckets := []TierBucket{{
		Name:   "terrace",
		Match:  func(u string) bool { return u == "TERRACE" },
		Labels: []string{"Terrace - Presale", "Terrace - Door"},
	}}
	r := NewTierRenamer(NewVenueRules([]int{7}, nil), buckets)

	out := r.Retier([]LineItem{
		item("terrace", "300", 1, 300),
		item("terrace", "200", 1, 200),
	}, 7)

	assert.Equal(t, []string{"Terrace - Door", "Terrace - Presale"}, productNames(out))
}
