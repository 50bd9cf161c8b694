// Package store groups every repository behind one client.
package store

import (
	"time"

	auditrepo "github.com/fekuna/omnipos-backoffice/internal/audit/repository"
	cashrepo "github.com/fekuna/omnipos-backoffice/internal/cashsession/repository"
	categoryrepo "github.com/fekuna/omnipos-backoffice/internal/category/repository"
	customerrepo "github.com/fekuna/omnipos-backoffice/internal/customer/repository"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	employeerepo "github.com/fekuna/omnipos-backoffice/internal/employee/repository"
	estrepo "github.com/fekuna/omnipos-backoffice/internal/establishment/repository"
	floorrepo "github.com/fekuna/omnipos-backoffice/internal/floor/repository"
	stockrepo "github.com/fekuna/omnipos-backoffice/internal/inventory/repository"
	printerrepo "github.com/fekuna/omnipos-backoffice/internal/printer/repository"
	productrepo "github.com/fekuna/omnipos-backoffice/internal/product/repository"
	salerepo "github.com/fekuna/omnipos-backoffice/internal/sale/repository"
	sessionrepo "github.com/fekuna/omnipos-backoffice/internal/session/repository"
)

type Store struct {
	Establishments *estrepo.PGRepository
	Employees      *employeerepo.PGRepository
	Categories     *categoryrepo.PGRepository
	Products       *productrepo.PGRepository
	Customers      *customerrepo.PGRepository
	Zones          *floorrepo.ZoneRepository
	Tables         *floorrepo.TableRepository
	Printers       *printerrepo.PGRepository
	Sales          *salerepo.PGRepository
	StockMovements *stockrepo.PGRepository
	CashSessions   *cashrepo.PGRepository
	AuditLogs      *auditrepo.PGRepository
	Sessions       *sessionrepo.PGRepository
}

type options struct {
	clock func() time.Time
	loc   *time.Location
}

type Option func(*options)

// WithClock replaces time.Now for every repository.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithLocation sets the timezone business days are computed in, which
// decides when ticket numbers restart.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func New(client *db.Client, opts ...Option) *Store {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	now := o.clock
	if o.loc != nil {
		clock, loc := o.clock, o.loc
		now = func() time.Time { return clock().In(loc) }
	}

	s := &Store{
		Establishments: estrepo.NewPGRepository(client),
		Employees:      employeerepo.NewPGRepository(client),
		Categories:     categoryrepo.NewPGRepository(client),
		Products:       productrepo.NewPGRepository(client),
		Customers:      customerrepo.NewPGRepository(client),
		Zones:          floorrepo.NewZoneRepository(client),
		Tables:         floorrepo.NewTableRepository(client),
		Printers:       printerrepo.NewPGRepository(client),
		Sales:          salerepo.NewPGRepository(client),
		StockMovements: stockrepo.NewPGRepository(client),
		CashSessions:   cashrepo.NewPGRepository(client),
		AuditLogs:      auditrepo.NewPGRepository(client),
		Sessions:       sessionrepo.NewPGRepository(client),
	}
	s.Establishments.Now = now
	s.Employees.Now = now
	s.Categories.Now = now
	s.Products.Now = now
	s.Customers.Now = now
	s.Zones.Now = now
	s.Tables.Now = now
	s.Printers.Now = now
	s.Sales.Now = now
	s.StockMovements.Now = now
	s.CashSessions.Now = now
	s.AuditLogs.Now = now
	s.Sessions.Now = now
	return s
}
