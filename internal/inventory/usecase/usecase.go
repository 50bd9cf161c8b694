package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/event"
	"github.com/fekuna/omnipos-backoffice/internal/inventory"
	"github.com/fekuna/omnipos-backoffice/internal/inventory/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/numeric"
	"github.com/fekuna/omnipos-backoffice/internal/product"
	"github.com/fekuna/omnipos-backoffice/pkg/cache"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

const bookedTTL = 7 * 24 * time.Hour

// Marker remembers which sale events were fully booked. *cache.RedisClient
// satisfies it.
type Marker interface {
	Exists(ctx context.Context, key string) (bool, error)
	SetIfAbsent(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
}

// ListCache holds the cached product lists, which carry stock levels.
// *cache.RedisClient satisfies it.
type ListCache interface {
	DeletePattern(ctx context.Context, pattern string) error
}

var (
	_ Marker    = (*cache.RedisClient)(nil)
	_ ListCache = (*cache.RedisClient)(nil)
)

// RepoFor returns the ledger for one establishment, typically backed by the
// service client scoped to it.
type RepoFor func(establishmentID string) inventory.Repository

type inventoryUseCase struct {
	repoFor RepoFor
	marker  Marker
	lists   ListCache
	logger  logger.ZapLogger
}

// NewInventoryUseCase accepts a nil marker and a nil lists cache. Without the
// marker every delivery reaches the ledger, which still books each product
// once per sale.
func NewInventoryUseCase(repoFor RepoFor, marker Marker, lists ListCache, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{repoFor: repoFor, marker: marker, lists: lists, logger: log}
}

func bookedKey(eventType, saleID string) string {
	return fmt.Sprintf("stock:%s:%s", strings.ToLower(eventType), saleID)
}

type item struct {
	productID string
	quantity  decimal.Decimal
}

func (uc *inventoryUseCase) ApplySale(ctx context.Context, e *event.SaleEvent) error {
	if err := checkEvent("inventory.apply_sale", e); err != nil {
		return err
	}
	var items []item
	for _, l := range e.Payload.Lines {
		items = addItem(items, l.ProductID, decimal.NewFromFloat(l.Quantity))
	}
	return uc.book(ctx, e, model.MovementExit, "Vente "+e.Payload.TicketNumber, items)
}

// RestoreSale reads the exits from the ledger rather than the event lines:
// lines skipped for short stock or untracked products took nothing.
func (uc *inventoryUseCase) RestoreSale(ctx context.Context, e *event.SaleEvent) error {
	if err := checkEvent("inventory.restore_sale", e); err != nil {
		return err
	}
	p := e.Payload
	exits, err := uc.repoFor(p.EstablishmentID).List(ctx, &dto.MovementFilters{
		EstablishmentID: p.EstablishmentID,
		Type:            model.MovementExit,
		Reference:       p.SaleID,
	})
	if err != nil {
		return err
	}
	var items []item
	for _, m := range exits {
		items = addItem(items, m.ProductID, m.Quantity.Decimal())
	}
	return uc.book(ctx, e, model.MovementEntry, "Annulation vente "+p.TicketNumber, items)
}

func checkEvent(op string, e *event.SaleEvent) error {
	if e.Payload.SaleID == "" || e.Payload.EstablishmentID == "" {
		return apperror.Validation(op, "événement incomplet: vente_id et etablissement_id requis")
	}
	return nil
}

// addItem sums quantities per product, keeping first-seen order.
func addItem(items []item, productID string, q decimal.Decimal) []item {
	for i := range items {
		if items[i].productID == productID {
			items[i].quantity = items[i].quantity.Add(q)
			return items
		}
	}
	return append(items, item{productID: productID, quantity: q})
}

// book applies one movement of type t per item, referenced by the sale. The
// marker is only set once every item went through, so a failure part way is
// retried and the ledger skips what was already booked.
func (uc *inventoryUseCase) book(ctx context.Context, e *event.SaleEvent, t model.MovementType, reason string, items []item) error {
	p := e.Payload
	key := bookedKey(e.EventType, p.SaleID)
	if uc.alreadyBooked(ctx, key) {
		uc.logger.Info("sale event already booked", zap.String("event_type", e.EventType), zap.String("sale_id", p.SaleID))
		return nil
	}

	repo := uc.repoFor(p.EstablishmentID)
	moved := false
	defer func() {
		if moved {
			uc.invalidate(ctx, p.EstablishmentID)
		}
	}()

	for _, it := range items {
		in := &dto.ApplyMovementInput{
			ProductID:        it.productID,
			Type:             t,
			Quantity:         numeric.Number(it.quantity.InexactFloat64()),
			Reason:           &reason,
			Reference:        &p.SaleID,
			OnlyTracked:      true,
			OncePerReference: true,
		}
		if p.CashierID != "" {
			in.UserID = &p.CashierID
		}

		m, err := repo.Apply(ctx, in)
		switch {
		case err == nil:
			moved = moved || m != nil
		case apperror.IsValidation(err), apperror.IsNotFound(err):
			// The goods already left; a short or missing product must not block the rest.
			uc.logger.Warn("stock movement skipped",
				zap.String("sale_id", p.SaleID),
				zap.String("product_id", it.productID),
				zap.String("type", string(t)),
				zap.Error(err),
			)
		default:
			return err
		}
	}

	if uc.marker != nil {
		if _, err := uc.marker.SetIfAbsent(ctx, key, e.EventID, bookedTTL); err != nil {
			uc.logger.Warn("failed to mark sale event booked", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (uc *inventoryUseCase) alreadyBooked(ctx context.Context, key string) bool {
	if uc.marker == nil {
		return false
	}
	ok, err := uc.marker.Exists(ctx, key)
	if err != nil {
		uc.logger.Warn("booked-event marker unavailable", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

func (uc *inventoryUseCase) invalidate(ctx context.Context, establishmentID string) {
	if uc.lists == nil {
		return
	}
	if err := uc.lists.DeletePattern(ctx, product.ListCachePattern(establishmentID)); err != nil {
		uc.logger.Error("failed to invalidate product cache", zap.String("etablissement_id", establishmentID), zap.Error(err))
	}
}
