package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobdeck/internal/domain/entity"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/infra/obs"
	"jobdeck/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdempotencyFixture(t *testing.T) (usecase.IdempotencyUsecase, *memStore) {
	t.Helper()

	store := newMemStore()
	service := NewIdempotencyService(IdempotencyServiceParams{
		IdempotencyRepo: &fakeIdempotencyRepo{store: store},
		Metrics:         obs.NewMetrics(),
		Config:          newTestConfig(),
		Logger:          newDiscardLogger(),
	})

	return service, store
}

func sampleRequest() usecase.IdempotentRequest {
	return usecase.IdempotentRequest{
		OrgID:       uuid.New(),
		ActorID:     uuid.New(),
		Method:      "POST",
		Path:        "/admin/leads",
		Key:         "client-key-1",
		RequestHash: "hash-a",
	}
}

func TestIdempotencyService_FirstExecutionRuns(t *testing.T) {
	service, _ := newIdempotencyFixture(t)

	calls := 0
	result, err := service.Execute(context.Background(), sampleRequest(), func(context.Context) (int, []byte, error) {
		calls++

		return 201, []byte(`{"id":"lead-1"}`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 201, result.Status)
	assert.Equal(t, []byte(`{"id":"lead-1"}`), result.Body)
	assert.False(t, result.Replayed)
}

func TestIdempotencyService_ReplayIsByteIdentical(t *testing.T) {
	service, _ := newIdempotencyFixture(t)
	req := sampleRequest()

	first, err := service.Execute(context.Background(), req, func(context.Context) (int, []byte, error) {
		return 201, []byte(`{"id":"lead-1"}`), nil
	})
	require.NoError(t, err)

	calls := 0
	second, err := service.Execute(context.Background(), req, func(context.Context) (int, []byte, error) {
		calls++

		return 500, []byte("must not run"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Body, second.Body)
}

func TestIdempotencyService_KeyReuseWithDifferentBodyConflicts(t *testing.T) {
	service, _ := newIdempotencyFixture(t)
	req := sampleRequest()

	_, err := service.Execute(context.Background(), req, func(context.Context) (int, []byte, error) {
		return 201, []byte(`{"id":"lead-1"}`), nil
	})
	require.NoError(t, err)

	mutated := req
	mutated.RequestHash = "hash-b"

	result, err := service.Execute(context.Background(), mutated, func(context.Context) (int, []byte, error) {
		return 201, nil, nil
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domainerrors.ErrIdempotencyConflict)
}

func TestIdempotencyService_HandlerFailureReleasesKey(t *testing.T) {
	service, store := newIdempotencyFixture(t)
	req := sampleRequest()

	boom := errors.New("downstream unavailable")
	_, err := service.Execute(context.Background(), req, func(context.Context) (int, []byte, error) {
		return 0, nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.idemRecords)

	// The client may retry the same key and win a fresh claim.
	result, err := service.Execute(context.Background(), req, func(context.Context) (int, []byte, error) {
		return 201, []byte("ok"), nil
	})
	require.NoError(t, err)
	assert.False(t, result.Replayed)
}

func TestIdempotencyService_ConcurrentDuplicateWaitsForWinner(t *testing.T) {
	service, _ := newIdempotencyFixture(t)
	req := sampleRequest()

	winnerStarted := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	var winnerResult, loserResult *usecase.IdempotentResult
	var winnerErr, loserErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		winnerResult, winnerErr = service.Execute(context.Background(), req, func(context.Context) (int, []byte, error) {
			close(winnerStarted)
			<-release

			return 201, []byte("winner"), nil
		})
	}()

	<-winnerStarted

	wg.Add(1)
	go func() {
		defer wg.Done()
		loserResult, loserErr = service.Execute(context.Background(), req, func(context.Context) (int, []byte, error) {
			return 500, []byte("must not run"), nil
		})
	}()

	// Give the loser time to lose the claim and start polling.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, winnerErr)
	require.NoError(t, loserErr)
	assert.False(t, winnerResult.Replayed)
	assert.True(t, loserResult.Replayed)
	assert.Equal(t, winnerResult.Body, loserResult.Body)
}

func TestIdempotencyService_WaitTimeoutConflicts(t *testing.T) {
	service, store := newIdempotencyFixture(t)
	req := sampleRequest()

	// Seed an in-flight claim that never completes.
	repo := &fakeIdempotencyRepo{store: store}
	require.NoError(t, repo.Insert(context.Background(), &entity.IdempotencyRecord{
		OrgID:       req.OrgID,
		ActorID:     req.ActorID,
		Method:      req.Method,
		Path:        req.Path,
		Key:         req.Key,
		RequestHash: req.RequestHash,
	}))

	result, err := service.Execute(context.Background(), req, func(context.Context) (int, []byte, error) {
		return 201, nil, nil
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domainerrors.ErrIdempotencyConflict)
}
