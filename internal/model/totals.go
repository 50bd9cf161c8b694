package model

import (
	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-backoffice/internal/numeric"
)

var hundred = decimal.NewFromInt(100)

// ComputeTotals fills the derived amounts of the line:
// sous_total = quantite * (prix_unitaire + supplements), montant_tva on
// sous_total at taux_tva, total = sous_total + montant_tva - remise.
func (l *SaleLine) ComputeTotals() {
	unit := l.UnitPrice.Decimal()
	for _, s := range l.Supplements {
		unit = unit.Add(s.Price.Decimal())
	}
	sub := l.Quantity.Decimal().Mul(unit).Round(2)
	vat := sub.Mul(l.VATRate.Decimal()).Div(hundred).Round(2)
	total := sub.Add(vat).Sub(l.Discount.Decimal()).Round(2)

	l.Subtotal = toNumber(sub)
	l.VATAmount = toNumber(vat)
	l.Total = toNumber(total)
}

// ApplyTotals recomputes the sale amounts from lines. total_remise is the sum
// of line discounts plus the sale-level discount.
func (s *Sale) ApplyTotals(lines []SaleLine) {
	sub, vat, disc := decimal.Zero, decimal.Zero, s.Discount.Decimal()
	for i := range lines {
		lines[i].ComputeTotals()
		sub = sub.Add(lines[i].Subtotal.Decimal())
		vat = vat.Add(lines[i].VATAmount.Decimal())
		disc = disc.Add(lines[i].Discount.Decimal())
	}
	total := sub.Add(vat).Sub(disc).Add(s.DeliveryFee.Decimal())
	if total.IsNegative() {
		total = decimal.Zero
	}

	s.Subtotal = toNumber(sub)
	s.VATTotal = toNumber(vat)
	s.DiscountTotal = toNumber(disc)
	s.Total = toNumber(total.Round(2))
}

// ChangeDue returns received - amount for a cash payment.
func ChangeDue(amount, received float64) float64 {
	return numeric.Round2(received - amount)
}

// QuantityAfter applies a movement of kind t to before. Entries add, exits and
// losses subtract, adjustments and inventories set the level to quantity.
func QuantityAfter(t MovementType, before, quantity float64) float64 {
	b, q := decimal.NewFromFloat(before), decimal.NewFromFloat(quantity)
	switch t {
	case MovementEntry:
		return b.Add(q).InexactFloat64()
	case MovementExit, MovementLoss:
		return b.Sub(q).InexactFloat64()
	case MovementAdjustment, MovementInventory:
		return quantity
	}
	return before
}

// SignedDelta is the change a movement applies to stock.
func SignedDelta(t MovementType, before, quantity float64) float64 {
	after := decimal.NewFromFloat(QuantityAfter(t, before, quantity))
	return after.Sub(decimal.NewFromFloat(before)).InexactFloat64()
}

// Reconcile fills the close figures of a session from the counted cash.
func (s *CashSession) Reconcile(counted float64) {
	c := numeric.Number(numeric.Round2(counted))
	v := numeric.Number(numeric.Round2(counted - s.ExpectedCash()))
	s.CountedCash = &c
	s.Variance = &v
}

func toNumber(d decimal.Decimal) numeric.Number {
	return numeric.Number(d.InexactFloat64())
}

// ApplyPaymentTotals sets the per-family totals of the session from payment
// sums by mode. Mobile money operators share one family; cheques, transfers,
// account payments and mixed tenders count as other.
func (s *CashSession) ApplyPaymentTotals(byMode map[PaymentMode]float64, saleCount int, salesTotal float64) {
	var cash, card, mobile, other decimal.Decimal
	for mode, amount := range byMode {
		d := decimal.NewFromFloat(amount)
		switch {
		case mode == PaymentCash:
			cash = cash.Add(d)
		case mode == PaymentCard:
			card = card.Add(d)
		case mode.IsMobileMoney():
			mobile = mobile.Add(d)
		default:
			other = other.Add(d)
		}
	}
	s.TotalCash = toNumber(cash.Round(2))
	s.TotalCard = toNumber(card.Round(2))
	s.TotalMobile = toNumber(mobile.Round(2))
	s.TotalOther = toNumber(other.Round(2))
	s.TotalSales = numeric.Number(numeric.Round2(salesTotal))
	s.SaleCount = saleCount
}
