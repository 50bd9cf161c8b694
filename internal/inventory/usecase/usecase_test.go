package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/event"
	"github.com/fekuna/omnipos-backoffice/internal/inventory"
	"github.com/fekuna/omnipos-backoffice/internal/inventory/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

// fakeRepo books movements in memory and, like the ledger, skips a
// OncePerReference movement it already holds.
type fakeRepo struct {
	inventory.Repository
	applied []dto.ApplyMovementInput
	errs    map[string]error
	ledger  []model.StockMovement
}

func (f *fakeRepo) Apply(_ context.Context, in *dto.ApplyMovementInput) (*model.StockMovement, error) {
	if err := f.errs[in.ProductID]; err != nil {
		return nil, err
	}
	if in.OncePerReference {
		for _, m := range f.ledger {
			if m.ProductID == in.ProductID && m.Type == in.Type && *m.Reference == *in.Reference {
				return nil, nil
			}
		}
	}
	f.applied = append(f.applied, *in)
	m := model.StockMovement{ProductID: in.ProductID, Type: in.Type, Quantity: in.Quantity, Reference: in.Reference}
	f.ledger = append(f.ledger, m)
	return &m, nil
}

func (f *fakeRepo) List(_ context.Context, filter *dto.MovementFilters) ([]model.StockMovement, error) {
	out := []model.StockMovement{}
	for _, m := range f.ledger {
		if m.Type == filter.Type && m.Reference != nil && *m.Reference == filter.Reference {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeMarker struct {
	mu   sync.Mutex
	keys map[string]any
}

func newFakeMarker() *fakeMarker { return &fakeMarker{keys: map[string]any{}} }

func (m *fakeMarker) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[key]
	return ok, nil
}

func (m *fakeMarker) SetIfAbsent(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = value
	return true, nil
}

type fakeLists struct {
	patterns []string
}

func (c *fakeLists) DeletePattern(_ context.Context, pattern string) error {
	c.patterns = append(c.patterns, pattern)
	return nil
}

func saleEvent() *event.SaleEvent {
	return &event.SaleEvent{
		EventID:   "evt-1",
		EventType: event.TypeSalePaid,
		Payload: event.SalePayload{
			SaleID:          "v1",
			EstablishmentID: "e1",
			TicketNumber:    "2026031400001",
			CashierID:       "u1",
			Lines: []event.SaleLineItem{
				{ProductID: "p1", Quantity: 2},
				{ProductID: "p2", Quantity: 1},
			},
		},
	}
}

func cancelEvent() *event.SaleEvent {
	e := saleEvent()
	e.EventID, e.EventType = "evt-2", event.TypeSaleCancelled
	return e
}

func newUseCase(repo *fakeRepo, marker Marker, lists ListCache) inventory.UseCase {
	return NewInventoryUseCase(func(string) inventory.Repository { return repo }, marker, lists, logger.NewNop())
}

func TestApplySale_OneExitPerProduct(t *testing.T) {
	repo := &fakeRepo{}
	var scoped string
	uc := NewInventoryUseCase(func(id string) inventory.Repository {
		scoped = id
		return repo
	}, newFakeMarker(), nil, logger.NewNop())

	require.NoError(t, uc.ApplySale(context.Background(), saleEvent()))

	assert.Equal(t, "e1", scoped)
	require.Len(t, repo.applied, 2)
	for _, in := range repo.applied {
		assert.Equal(t, model.MovementExit, in.Type)
		assert.True(t, in.OnlyTracked)
		assert.True(t, in.OncePerReference)
		assert.Equal(t, "v1", *in.Reference)
		assert.Equal(t, "u1", *in.UserID)
	}
	assert.EqualValues(t, 2, repo.applied[0].Quantity)
	assert.Equal(t, "Vente 2026031400001", *repo.applied[0].Reason)
}

func TestApplySale_SumsLinesOfTheSameProduct(t *testing.T) {
	repo := &fakeRepo{}
	e := saleEvent()
	e.Payload.Lines = []event.SaleLineItem{
		{ProductID: "p1", Quantity: 0.25},
		{ProductID: "p2", Quantity: 1},
		{ProductID: "p1", Quantity: 0.125},
	}

	require.NoError(t, newUseCase(repo, nil, nil).ApplySale(context.Background(), e))
	require.Len(t, repo.applied, 2)
	assert.Equal(t, "p1", repo.applied[0].ProductID)
	assert.EqualValues(t, 0.375, repo.applied[0].Quantity)
	assert.Equal(t, "p2", repo.applied[1].ProductID)
}

func TestApplySale_RedeliveryIsIgnored(t *testing.T) {
	repo := &fakeRepo{}
	uc := newUseCase(repo, newFakeMarker(), nil)

	require.NoError(t, uc.ApplySale(context.Background(), saleEvent()))
	require.NoError(t, uc.ApplySale(context.Background(), saleEvent()))
	assert.Len(t, repo.applied, 2)
}

func TestApplySale_ShortStockDoesNotBlockOtherLines(t *testing.T) {
	repo := &fakeRepo{errs: map[string]error{"p1": apperror.Validation("op", "stock insuffisant")}}

	require.NoError(t, newUseCase(repo, newFakeMarker(), nil).ApplySale(context.Background(), saleEvent()))
	require.Len(t, repo.applied, 1)
	assert.Equal(t, "p2", repo.applied[0].ProductID)
}

func TestApplySale_RetryAfterStorageErrorBooksRemainingLinesOnce(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &fakeRepo{errs: map[string]error{"p2": boom}}
	marker := newFakeMarker()
	uc := newUseCase(repo, marker, nil)

	err := uc.ApplySale(context.Background(), saleEvent())
	assert.ErrorIs(t, err, boom)
	assert.NotContains(t, marker.keys, bookedKey(event.TypeSalePaid, "v1"))
	require.Len(t, repo.applied, 1)

	delete(repo.errs, "p2")
	require.NoError(t, uc.ApplySale(context.Background(), saleEvent()))
	require.Len(t, repo.applied, 2)
	assert.Equal(t, "p1", repo.applied[0].ProductID)
	assert.Equal(t, "p2", repo.applied[1].ProductID)
	assert.Contains(t, marker.keys, bookedKey(event.TypeSalePaid, "v1"))
}

func TestApplySale_WithoutMarkerLedgerStillDeduplicates(t *testing.T) {
	repo := &fakeRepo{}
	uc := newUseCase(repo, nil, nil)

	require.NoError(t, uc.ApplySale(context.Background(), saleEvent()))
	require.NoError(t, uc.ApplySale(context.Background(), saleEvent()))
	assert.Len(t, repo.applied, 2)
}

func TestApplySale_InvalidatesProductLists(t *testing.T) {
	lists := &fakeLists{}
	require.NoError(t, newUseCase(&fakeRepo{}, nil, lists).ApplySale(context.Background(), saleEvent()))
	assert.Equal(t, []string{"produits:list:e1:*"}, lists.patterns)
}

func TestApplySale_NothingMovedKeepsProductLists(t *testing.T) {
	lists := &fakeLists{}
	repo := &fakeRepo{errs: map[string]error{
		"p1": apperror.NotFound("op", "produit", "p1"),
		"p2": apperror.NotFound("op", "produit", "p2"),
	}}
	require.NoError(t, newUseCase(repo, nil, lists).ApplySale(context.Background(), saleEvent()))
	assert.Empty(t, lists.patterns)
}

func TestApplySale_IncompleteEvent(t *testing.T) {
	e := saleEvent()
	e.Payload.EstablishmentID = ""
	err := newUseCase(&fakeRepo{}, nil, nil).ApplySale(context.Background(), e)
	assert.True(t, apperror.IsValidation(err))
}

func TestRestoreSale_BooksBackWhatWasTaken(t *testing.T) {
	repo := &fakeRepo{errs: map[string]error{"p2": apperror.Validation("op", "stock insuffisant")}}
	lists := &fakeLists{}
	uc := newUseCase(repo, newFakeMarker(), lists)

	require.NoError(t, uc.ApplySale(context.Background(), saleEvent()))
	delete(repo.errs, "p2")
	require.NoError(t, uc.RestoreSale(context.Background(), cancelEvent()))

	require.Len(t, repo.applied, 2)
	entry := repo.applied[1]
	assert.Equal(t, model.MovementEntry, entry.Type)
	assert.Equal(t, "p1", entry.ProductID)
	assert.EqualValues(t, 2, entry.Quantity)
	assert.Equal(t, "Annulation vente 2026031400001", *entry.Reason)
	assert.Len(t, lists.patterns, 2)
}

func TestRestoreSale_RedeliveryIsIgnored(t *testing.T) {
	repo := &fakeRepo{}
	uc := newUseCase(repo, nil, nil)

	require.NoError(t, uc.ApplySale(context.Background(), saleEvent()))
	require.NoError(t, uc.RestoreSale(context.Background(), cancelEvent()))
	require.NoError(t, uc.RestoreSale(context.Background(), cancelEvent()))
	assert.Len(t, repo.applied, 4)
}
