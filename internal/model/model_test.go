package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-backoffice/internal/numeric"
)

func TestQuantityAfter(t *testing.T) {
	tests := []struct {
		typ      MovementType
		before   float64
		quantity float64
		want     float64
	}{
		{MovementEntry, 5, 10, 15},
		{MovementExit, 15, 4, 11},
		{MovementLoss, 3, 5, -2},
		{MovementAdjustment, 12, 7, 7},
		{MovementInventory, 0, 42, 42},
		{MovementEntry, 0.1, 0.2, 0.3},
		{MovementExit, 2.005, 1, 1.005},
		{MovementEntry, 0, 0.125, 0.125},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			got := QuantityAfter(tt.typ, tt.before, tt.quantity)
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, got, tt.before+SignedDelta(tt.typ, tt.before, tt.quantity), 1e-9)
		})
	}
}

func TestMovementType_SetsLevel(t *testing.T) {
	assert.True(t, MovementInventory.SetsLevel())
	assert.True(t, MovementAdjustment.SetsLevel())
	assert.False(t, MovementEntry.SetsLevel())
	assert.False(t, MovementType("VOL").Valid())
}

func TestSale_ApplyTotals(t *testing.T) {
	sale := &Sale{Discount: 100, DeliveryFee: 500}
	lines := []SaleLine{
		{Quantity: 2, UnitPrice: 2500, VATRate: 18},
		{
			Quantity:    1,
			UnitPrice:   1000,
			VATRate:     0,
			Discount:    200,
			Supplements: []LineSupplement{{Name: "fromage", Price: 300}},
		},
	}

	sale.ApplyTotals(lines)

	assert.Equal(t, numeric.Number(5000), lines[0].Subtotal)
	assert.Equal(t, numeric.Number(900), lines[0].VATAmount)
	assert.Equal(t, numeric.Number(5900), lines[0].Total)
	assert.Equal(t, numeric.Number(1300), lines[1].Subtotal)
	assert.Equal(t, numeric.Number(1100), lines[1].Total)

	assert.Equal(t, numeric.Number(6300), sale.Subtotal)
	assert.Equal(t, numeric.Number(900), sale.VATTotal)
	assert.Equal(t, numeric.Number(300), sale.DiscountTotal)
	assert.Equal(t, numeric.Number(7400), sale.Total)
}

func TestSale_ApplyTotalsNeverNegative(t *testing.T) {
	sale := &Sale{Discount: 5000}
	sale.ApplyTotals([]SaleLine{{Quantity: 1, UnitPrice: 1000}})
	assert.Equal(t, numeric.Number(0), sale.Total)
}

func TestChangeDue(t *testing.T) {
	assert.Equal(t, 1500.0, ChangeDue(3500, 5000))
	assert.Equal(t, -500.0, ChangeDue(3500, 3000))
}

func TestCashSession_Reconcile(t *testing.T) {
	s := &CashSession{OpeningFloat: 20000, TotalCash: 45500}
	assert.Equal(t, 65500.0, s.ExpectedCash())

	s.Reconcile(65000)
	require.NotNil(t, s.Variance)
	assert.Equal(t, numeric.Number(65000), *s.CountedCash)
	assert.Equal(t, numeric.Number(-500), *s.Variance)
}

func TestEmployee_CanAccess(t *testing.T) {
	cashier := &Employee{Role: RoleCashier}
	assert.True(t, cashier.CanAccess("/caisse"))
	assert.True(t, cashier.CanAccess("/ventes/123"))
	assert.False(t, cashier.CanAccess("/employes"))

	restricted := &Employee{Role: RoleAdmin, AllowedRoutes: StringList{"/rapports", "/stocks*"}}
	assert.True(t, restricted.CanAccess("/rapports"))
	assert.True(t, restricted.CanAccess("/stocks/mouvements"))
	assert.False(t, restricted.CanAccess("/rapports/ventes"))
	assert.False(t, restricted.CanAccess("/caisse"))

	admin := &Employee{Role: RoleAdmin}
	assert.True(t, admin.CanAccess("/anything"))
}

func TestEmployee_JSONHasNoHashes(t *testing.T) {
	data, err := json.Marshal(&Employee{LastName: "Nze", Email: "nze@example.com", HasPin: true})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), "pin_hash")
	assert.Contains(t, string(data), `"has_pin":true`)
}

func TestProduct_AvailableOnAndLowStock(t *testing.T) {
	p := &Product{AvailableDirect: true, AvailableDelivery: false, TrackStock: true, StockCurrent: 2, StockMin: 5}
	assert.True(t, p.AvailableOn(ChannelDirect))
	assert.False(t, p.AvailableOn(ChannelDelivery))
	assert.False(t, p.AvailableOn(Channel("DRIVE")))
	assert.True(t, p.IsLowStock())

	p.TrackStock = false
	assert.False(t, p.IsLowStock())
}

func TestStringList(t *testing.T) {
	var s StringList
	require.NoError(t, s.Scan([]byte(`["/caisse","/ventes"]`)))
	assert.Equal(t, StringList{"/caisse", "/ventes"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, StringList{}, s)

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	assert.Error(t, s.Scan(42))
}

func TestJSON(t *testing.T) {
	j, err := ToJSON(map[string]int{"stock": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stock":3}`, string(j))

	v, err := JSON(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var scanned JSON
	require.NoError(t, scanned.Scan([]byte(`{"a":1}`)))
	out, err := json.Marshal(struct {
		After JSON `json:"after"`
	}{scanned})
	require.NoError(t, err)
	assert.JSONEq(t, `{"after":{"a":1}}`, string(out))

	empty, err := ToJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestCashSession_ApplyPaymentTotals(t *testing.T) {
	s := CashSession{OpeningFloat: 20000}
	s.ApplyPaymentTotals(map[PaymentMode]float64{
		PaymentCash:          12500,
		PaymentCard:          8000,
		PaymentAirtelMoney:   3000.5,
		PaymentMoovMoney:     1999.5,
		PaymentCheck:         1000,
		PaymentAccountCredit: 500,
	}, 7, 27000)

	assert.Equal(t, 12500.0, s.TotalCash.Float64())
	assert.Equal(t, 8000.0, s.TotalCard.Float64())
	assert.Equal(t, 5000.0, s.TotalMobile.Float64())
	assert.Equal(t, 1500.0, s.TotalOther.Float64())
	assert.Equal(t, 27000.0, s.TotalSales.Float64())
	assert.Equal(t, 7, s.SaleCount)
	assert.Equal(t, 32500.0, s.ExpectedCash())

	s.ApplyPaymentTotals(nil, 0, 0)
	assert.Zero(t, s.TotalCash.Float64())
	assert.Zero(t, s.TotalMobile.Float64())
	assert.Zero(t, s.SaleCount)
}

func TestPrinterType_Valid(t *testing.T) {
	for _, p := range []PrinterType{PrinterTicket, PrinterKitchen, PrinterBar} {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, PrinterType("LASER").Valid())
	assert.False(t, PrinterType("").Valid())
}
