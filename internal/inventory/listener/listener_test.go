package listener

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/event"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

// sliceReader serves msgs in order then cancels the listener.
type sliceReader struct {
	mu        sync.Mutex
	msgs      [][]byte
	next      int64
	committed []int64
	cancel    context.CancelFunc
}

func (r *sliceReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.msgs) == 0 {
		r.mu.Unlock()
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := kafka.Message{Value: r.msgs[0], Offset: r.next}
	r.msgs = r.msgs[1:]
	r.next++
	r.mu.Unlock()
	return m, nil
}

func (r *sliceReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type recordingUseCase struct {
	mu       sync.Mutex
	applied  []string
	restored []string
	failures int
	err      error
}

func (u *recordingUseCase) ApplySale(_ context.Context, e *event.SaleEvent) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return u.err
	}
	if u.failures > 0 {
		u.failures--
		return errors.New("connection reset")
	}
	u.applied = append(u.applied, e.Payload.SaleID)
	return nil
}

func (u *recordingUseCase) RestoreSale(_ context.Context, e *event.SaleEvent) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.restored = append(u.restored, e.Payload.SaleID)
	return nil
}

func encode(t *testing.T, eventType, saleID string) []byte {
	t.Helper()
	data, err := json.Marshal(event.SaleEvent{
		EventType: eventType,
		Payload:   event.SalePayload{SaleID: saleID, EstablishmentID: "e1"},
	})
	require.NoError(t, err)
	return data
}

func run(t *testing.T, uc *recordingUseCase, msgs ...[]byte) *sliceReader {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &sliceReader{msgs: msgs, cancel: cancel}

	l := NewInventoryListener(reader, uc, logger.NewNop())
	l.backoff = time.Millisecond
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after cancellation")
	}
	return reader
}

func TestInventoryListener_DispatchesByEventType(t *testing.T) {
	uc := &recordingUseCase{}
	reader := run(t, uc,
		encode(t, event.TypeSalePaid, "v1"),
		[]byte("not json"),
		encode(t, event.TypeSaleCancelled, "v2"),
		encode(t, "TableLiberee", "v3"),
	)

	assert.Equal(t, []string{"v1"}, uc.applied)
	assert.Equal(t, []string{"v2"}, uc.restored)
	assert.Equal(t, []int64{0, 1, 2, 3}, reader.committed)
}

func TestInventoryListener_RetriesStorageFailureBeforeCommitting(t *testing.T) {
	uc := &recordingUseCase{failures: 2}
	reader := run(t, uc, encode(t, event.TypeSalePaid, "v1"))

	assert.Equal(t, []string{"v1"}, uc.applied)
	assert.Equal(t, []int64{0}, reader.committed)
}

func TestInventoryListener_CommitsUnusableEvent(t *testing.T) {
	uc := &recordingUseCase{err: apperror.Validation("inventory.apply_sale", "événement incomplet")}
	reader := run(t, uc, encode(t, event.TypeSalePaid, ""))

	assert.Empty(t, uc.applied)
	assert.Equal(t, []int64{0}, reader.committed)
}

func TestInventoryListener_StopsWithoutCommitWhenCancelledMidRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &sliceReader{msgs: [][]byte{encode(t, event.TypeSalePaid, "v1")}, cancel: cancel}
	uc := &recordingUseCase{err: errors.New("database unreachable")}

	l := NewInventoryListener(reader, uc, logger.NewNop())
	l.backoff = 10 * time.Millisecond
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after cancellation")
	}
	assert.Empty(t, reader.committed)
}
