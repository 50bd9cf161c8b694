package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	auditdto "github.com/fekuna/omnipos-backoffice/internal/audit/dto"
	"github.com/fekuna/omnipos-backoffice/internal/auth"
	cashdto "github.com/fekuna/omnipos-backoffice/internal/cashsession/dto"
	catdto "github.com/fekuna/omnipos-backoffice/internal/category/dto"
	custdto "github.com/fekuna/omnipos-backoffice/internal/customer/dto"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/event"
	"github.com/fekuna/omnipos-backoffice/internal/inventory"
	stockuc "github.com/fekuna/omnipos-backoffice/internal/inventory/usecase"
	empdto "github.com/fekuna/omnipos-backoffice/internal/employee/dto"
	estdto "github.com/fekuna/omnipos-backoffice/internal/establishment/dto"
	stockdto "github.com/fekuna/omnipos-backoffice/internal/inventory/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/numeric"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
	proddto "github.com/fekuna/omnipos-backoffice/internal/product/dto"
	saledto "github.com/fekuna/omnipos-backoffice/internal/sale/dto"
	"github.com/fekuna/omnipos-backoffice/migrations"
	"github.com/fekuna/omnipos-backoffice/pkg/database/postgres"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

// These tests need a disposable database. TEST_DATABASE_URL connects as a
// role able to migrate (and bypass row-level security); the optional
// TEST_APP_DATABASE_URL connects as the restricted application role.

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *db.Provider {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()

	serviceDB, err := postgres.Open(dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serviceDB.Close() })

	_, err = migrations.Apply(ctx, serviceDB, logger.NewNop())
	require.NoError(t, err)
	_, err = serviceDB.ExecContext(ctx, `TRUNCATE etablissements CASCADE`)
	require.NoError(t, err)

	appDB := serviceDB
	if appDSN := os.Getenv("TEST_APP_DATABASE_URL"); appDSN != "" {
		appDB, err = postgres.Open(appDSN, nil)
		require.NoError(t, err)
		t.Cleanup(func() { appDB.Close() })
	}
	return db.NewProvider(appDB, serviceDB)
}

type tenant struct {
	ID    string
	Admin *model.Employee
	Store *Store
}

// seedTenant provisions an establishment and its administrator through the
// service client, then returns a store bound to that administrator.
func seedTenant(t *testing.T, p *db.Provider, name string) tenant {
	t.Helper()
	ctx := context.Background()
	svc := New(p.Service(), WithClock(func() time.Time { return testNow }))

	est, err := svc.Establishments.Create(ctx, &estdto.CreateEstablishmentInput{Name: name})
	require.NoError(t, err)

	pin := "4321"
	admin, err := svc.Employees.Create(ctx, &empdto.CreateEmployeeInput{
		EstablishmentID: est.ID,
		LastName:        "Admin",
		FirstName:       name,
		Email:           fmt.Sprintf("admin-%s@example.com", est.ID[:8]),
		Password:        "motdepasse-solide",
		Pin:             &pin,
		Role:            model.RoleAdmin,
	})
	require.NoError(t, err)

	client, err := p.ForContext(auth.UserContext{UserID: admin.ID, EstablishmentID: est.ID, Role: model.RoleAdmin})
	require.NoError(t, err)
	return tenant{ID: est.ID, Admin: admin, Store: New(client, WithClock(func() time.Time { return testNow }))}
}

func seedProduct(t *testing.T, tn tenant, name string, price float64, tracked bool) *model.Product {
	t.Helper()
	vat := numeric.Number(0)
	p, err := tn.Store.Products.Create(context.Background(), &proddto.CreateProductInput{
		EstablishmentID: tn.ID,
		Name:            name,
		SellPrice:       numeric.Number(price),
		VATRate:         &vat,
		TrackStock:      tracked,
	})
	require.NoError(t, err)
	return p
}

func TestIntegration_TenantIsolation(t *testing.T) {
	p := setupTestDB(t)
	ctx := context.Background()
	a := seedTenant(t, p, "Chez A")
	b := seedTenant(t, p, "Chez B")

	cat, err := a.Store.Categories.Create(ctx, &catdto.CreateCategoryInput{EstablishmentID: a.ID, Name: "Boissons"})
	require.NoError(t, err)

	got, err := b.Store.Categories.FindByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	name := "Piraté"
	_, err = b.Store.Categories.Update(ctx, cat.ID, &catdto.UpdateCategoryInput{Name: &name})
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(b.Store.Categories.SoftDelete(ctx, cat.ID)))

	own, err := b.Store.Categories.List(ctx, &catdto.CategoryFilters{EstablishmentID: b.ID})
	require.NoError(t, err)
	assert.Empty(t, own)

	if os.Getenv("TEST_APP_DATABASE_URL") != "" {
		foreign, err := b.Store.Categories.List(ctx, &catdto.CategoryFilters{EstablishmentID: a.ID})
		require.NoError(t, err)
		assert.Empty(t, foreign, "row-level security must hide the other tenant")
	}

	_, err = b.Store.Categories.List(ctx, &catdto.CategoryFilters{})
	assert.True(t, apperror.IsValidation(err))
}

func TestIntegration_Pagination(t *testing.T) {
	p := setupTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, p, "Pagination")

	for i := 0; i < 25; i++ {
		_, err := tn.Store.Customers.Create(ctx, &custdto.CreateCustomerInput{
			EstablishmentID: tn.ID,
			LastName:        fmt.Sprintf("Client %02d", i),
		})
		require.NoError(t, err)
	}

	f := &custdto.CustomerFilters{EstablishmentID: tn.ID}
	page2, err := tn.Store.Customers.ListPaginated(ctx, f, pagination.Params{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page2.Count)
	assert.Equal(t, 3, page2.TotalPages)
	require.Len(t, page2.Data, 10)
	assert.Equal(t, "Client 10", page2.Data[0].LastName)

	page3, err := tn.Store.Customers.ListPaginated(ctx, f, pagination.Params{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page3.Data, 5)
	assert.Equal(t, "Client 24", page3.Data[4].LastName)

	all, err := tn.Store.Customers.List(ctx, f)
	require.NoError(t, err)
	var paged []string
	for page := 1; page <= 4; page++ {
		res, err := tn.Store.Customers.ListPaginated(ctx, f, pagination.Params{Page: page, PageSize: 7})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Data), 7)
		for _, c := range res.Data {
			paged = append(paged, c.ID)
		}
	}
	require.Len(t, paged, len(all))
	for i := range all {
		assert.Equal(t, all[i].ID, paged[i])
	}
}

func TestIntegration_SoftDeleteIsIdempotent(t *testing.T) {
	p := setupTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, p, "Soft")

	prod := seedProduct(t, tn, "Café", 500, false)
	require.NoError(t, tn.Store.Products.SoftDelete(ctx, prod.ID))
	require.NoError(t, tn.Store.Products.SoftDelete(ctx, prod.ID))

	got, err := tn.Store.Products.FindByID(ctx, prod.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Active)

	active := true
	list, err := tn.Store.Products.List(ctx, &proddto.ProductFilters{EstablishmentID: tn.ID, Active: &active})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIntegration_ProductPriceRoundTrip(t *testing.T) {
	p := setupTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, p, "Prix")

	var in proddto.CreateProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"nom":"Brochette","prix_vente":"2500","taux_tva":18}`), &in))
	in.EstablishmentID = tn.ID

	created, err := tn.Store.Products.Create(ctx, &in)
	require.NoError(t, err)

	got, err := tn.Store.Products.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2500.0, got.SellPrice.Float64())
	assert.Equal(t, 18.0, got.VATRate.Float64())
}

func TestIntegration_StockMovements(t *testing.T) {
	p := setupTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, p, "Stock")
	prod := seedProduct(t, tn, "Bière", 1000, true)

	m, err := tn.Store.StockMovements.RegisterEntry(ctx, &stockdto.CreateMovementInput{
		ProductID:      prod.ID,
		Quantity:       10,
		QuantityBefore: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 15.0, m.QuantityAfter.Float64())

	for _, qty := range []numeric.Number{5, 10} {
		_, err := tn.Store.StockMovements.Apply(ctx, &stockdto.ApplyMovementInput{
			ProductID: prod.ID,
			Type:      model.MovementEntry,
			Quantity:  qty,
		})
		require.NoError(t, err)
	}
	got, err := tn.Store.Products.FindByID(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.StockCurrent.Float64())

	_, err = tn.Store.StockMovements.Apply(ctx, &stockdto.ApplyMovementInput{
		ProductID: prod.ID,
		Type:      model.MovementExit,
		Quantity:  20,
	})
	assert.True(t, apperror.IsValidation(err))

	list, err := tn.Store.StockMovements.List(ctx, &stockdto.MovementFilters{EstablishmentID: tn.ID, ProductID: prod.ID})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestIntegration_TicketNumbers(t *testing.T) {
	p := setupTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, p, "Tickets")

	first, err := tn.Store.Establishments.NextTicketNumber(ctx, tn.ID)
	require.NoError(t, err)
	second, err := tn.Store.Establishments.NextTicketNumber(ctx, tn.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026031400001", first)
	assert.Equal(t, "2026031400002", second)

	tn.Store.Establishments.Now = func() time.Time { return testNow.AddDate(0, 0, 1) }
	next, err := tn.Store.Establishments.NextTicketNumber(ctx, tn.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026031500001", next)
}

func TestIntegration_EmployeeRedaction(t *testing.T) {
	p := setupTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, p, "Redaction")

	got, err := tn.Store.Employees.FindByID(ctx, tn.Admin.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.HasPin)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "pin_hash")
	assert.NotContains(t, string(raw), "$2a$")

	svc := New(p.Service())
	authed, err := svc.Employees.Authenticate(ctx, tn.Admin.Email, "motdepasse-solide")
	require.NoError(t, err)
	require.NotNil(t, authed)
	assert.Equal(t, tn.Admin.ID, authed.ID)
}

func TestIntegration_SaleLifecycleAndCashSession(t *testing.T) {
	p := setupTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, p, "Caisse")
	prod := seedProduct(t, tn, "Poulet braisé", 2500, false)

	session, err := tn.Store.CashSessions.Open(ctx, &cashdto.OpenCashSessionInput{
		EstablishmentID: tn.ID,
		EmployeeID:      tn.Admin.ID,
		OpeningFloat:    10000,
	})
	require.NoError(t, err)

	_, err = tn.Store.CashSessions.Open(ctx, &cashdto.OpenCashSessionInput{EstablishmentID: tn.ID, EmployeeID: tn.Admin.ID})
	assert.True(t, apperror.IsConflict(err))

	sale, err := tn.Store.Sales.Create(ctx, &saledto.CreateSaleInput{
		EstablishmentID: tn.ID,
		CashierID:       tn.Admin.ID,
		CashSessionID:   &session.ID,
		Lines:           []saledto.LineInput{{ProductID: prod.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026031400001", sale.TicketNumber)
	assert.Equal(t, 5000.0, sale.Total.Float64())
	require.Len(t, sale.Lines, 1)

	_, err = tn.Store.Sales.MarkPaid(ctx, sale.ID)
	assert.True(t, apperror.IsValidation(err), "unpaid sale cannot be settled")

	received := numeric.Number(10000)
	pay, err := tn.Store.Sales.AddPayment(ctx, sale.ID, &saledto.PaymentInput{
		Mode:           model.PaymentCash,
		Amount:         5000,
		AmountReceived: &received,
	})
	require.NoError(t, err)
	require.NotNil(t, pay.ChangeGiven)
	assert.Equal(t, 5000.0, pay.ChangeGiven.Float64())

	paid, err := tn.Store.Sales.MarkPaid(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SalePaid, paid.Status)

	summary, err := tn.Store.Sales.Summarize(ctx, tn.ID, testNow.Truncate(24*time.Hour), testNow.Truncate(24*time.Hour).AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SaleCount)
	assert.Equal(t, 5000.0, summary.Revenue)
	assert.Equal(t, 5000.0, summary.ByPaymentMode[model.PaymentCash])
	assert.Equal(t, 5000.0, summary.AverageTicket)

	closed, err := tn.Store.CashSessions.Close(ctx, session.ID, &cashdto.CloseCashSessionInput{CountedCash: 14500})
	require.NoError(t, err)
	assert.Equal(t, model.CashSessionClosed, closed.Status)
	assert.Equal(t, 5000.0, closed.TotalCash.Float64())
	assert.Equal(t, 1, closed.SaleCount)
	require.NotNil(t, closed.Variance)
	assert.Equal(t, -500.0, closed.Variance.Float64())

	_, err = tn.Store.CashSessions.Close(ctx, session.ID, &cashdto.CloseCashSessionInput{CountedCash: 14500})
	assert.True(t, apperror.IsValidation(err))

	trail, err := tn.Store.AuditLogs.List(ctx, &auditdto.AuditFilters{EstablishmentID: tn.ID})
	require.NoError(t, err)
	actions := map[model.AuditAction]bool{}
	for _, e := range trail {
		actions[e.Action] = true
	}
	assert.True(t, actions[model.AuditCashOpen])
	assert.True(t, actions[model.AuditCashClose])
}

func TestIntegration_FractionalStockKeepsLedgerExact(t *testing.T) {
	p := setupTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, p, "Vrac")
	prod := seedProduct(t, tn, "Riz au kilo", 1200, true)

	var last *model.StockMovement
	for _, qty := range []numeric.Number{0.125, 2.005} {
		m, err := tn.Store.StockMovements.Apply(ctx, &stockdto.ApplyMovementInput{
			ProductID: prod.ID,
			Type:      model.MovementEntry,
			Quantity:  qty,
		})
		require.NoError(t, err)
		last = m
	}
	assert.Equal(t, 0.125, last.QuantityBefore.Float64())
	assert.Equal(t, 2.13, last.QuantityAfter.Float64())

	got, err := tn.Store.Products.FindByID(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.13, got.StockCurrent.Float64())

	list, err := tn.Store.StockMovements.List(ctx, &stockdto.MovementFilters{EstablishmentID: tn.ID, ProductID: prod.ID})
	require.NoError(t, err)
	for _, m := range list {
		assert.True(t, m.QuantityAfter.Decimal().Equal(m.QuantityBefore.Decimal().Add(m.Quantity.Decimal())),
			"avant=%v quantite=%v apres=%v", m.QuantityBefore, m.Quantity, m.QuantityAfter)
	}
}

func TestIntegration_CancelRefundsAccountPayments(t *testing.T) {
	p := setupTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, p, "Compte")
	prod := seedProduct(t, tn, "Brochettes", 2500, false)

	customer, err := tn.Store.Customers.Create(ctx, &custdto.CreateCustomerInput{EstablishmentID: tn.ID, LastName: "Mba"})
	require.NoError(t, err)

	chargeSale := func() string {
		s, err := tn.Store.Sales.Create(ctx, &saledto.CreateSaleInput{
			EstablishmentID: tn.ID,
			CashierID:       tn.Admin.ID,
			ClientID:        &customer.ID,
			Lines:           []saledto.LineInput{{ProductID: prod.ID, Quantity: 2}},
		})
		require.NoError(t, err)
		_, err = tn.Store.Sales.AddPayment(ctx, s.ID, &saledto.PaymentInput{Mode: model.PaymentAccountCredit, Amount: 5000})
		require.NoError(t, err)
		return s.ID
	}
	balance := func() float64 {
		c, err := tn.Store.Customers.FindByID(ctx, customer.ID)
		require.NoError(t, err)
		return c.CreditBalance.Float64()
	}

	open := chargeSale()
	assert.Equal(t, 5000.0, balance())
	_, err = tn.Store.Sales.Cancel(ctx, open, &saledto.CancelSaleInput{CancelledBy: tn.Admin.ID, Reason: "client parti"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance(), "cancelling an open sale gives the charge back")

	paid := chargeSale()
	_, err = tn.Store.Sales.MarkPaid(ctx, paid)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, balance())
	cancelled, err := tn.Store.Sales.Cancel(ctx, paid, &saledto.CancelSaleInput{CancelledBy: tn.Admin.ID, Reason: "erreur de saisie"})
	require.NoError(t, err)
	assert.NotNil(t, cancelled.PaidAt)
	assert.Equal(t, 0.0, balance(), "cancelling a paid sale gives the charge back")
}

func TestIntegration_CancelledPaidSaleRestoresStock(t *testing.T) {
	p := setupTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, p, "Retour")
	prod := seedProduct(t, tn, "Jus de bissap", 1000, true)

	_, err := tn.Store.StockMovements.Apply(ctx, &stockdto.ApplyMovementInput{ProductID: prod.ID, Type: model.MovementEntry, Quantity: 10})
	require.NoError(t, err)

	s, err := tn.Store.Sales.Create(ctx, &saledto.CreateSaleInput{
		EstablishmentID: tn.ID,
		CashierID:       tn.Admin.ID,
		Lines: []saledto.LineInput{
			{ProductID: prod.ID, Quantity: 2},
			{ProductID: prod.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	_, err = tn.Store.Sales.AddPayment(ctx, s.ID, &saledto.PaymentInput{Mode: model.PaymentCard, Amount: 3000})
	require.NoError(t, err)
	paid, err := tn.Store.Sales.MarkPaid(ctx, s.ID)
	require.NoError(t, err)

	uc := stockuc.NewInventoryUseCase(func(string) inventory.Repository { return tn.Store.StockMovements }, nil, nil, logger.NewNop())
	stock := func() float64 {
		got, err := tn.Store.Products.FindByID(ctx, prod.ID)
		require.NoError(t, err)
		return got.StockCurrent.Float64()
	}

	paidEvent := event.NewSalePaid(paid, testNow)
	require.NoError(t, uc.ApplySale(ctx, &paidEvent))
	require.NoError(t, uc.ApplySale(ctx, &paidEvent))
	assert.Equal(t, 7.0, stock(), "a redelivered event books the exit once")

	cancelled, err := tn.Store.Sales.Cancel(ctx, s.ID, &saledto.CancelSaleInput{CancelledBy: tn.Admin.ID, Reason: "retour client"})
	require.NoError(t, err)
	cancelEvent := event.NewSaleCancelled(cancelled, testNow)
	require.NoError(t, uc.RestoreSale(ctx, &cancelEvent))
	require.NoError(t, uc.RestoreSale(ctx, &cancelEvent))
	assert.Equal(t, 10.0, stock())

	entries, err := tn.Store.StockMovements.List(ctx, &stockdto.MovementFilters{
		EstablishmentID: tn.ID,
		Reference:       s.ID,
		Type:            model.MovementEntry,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3.0, entries[0].Quantity.Float64())
}
