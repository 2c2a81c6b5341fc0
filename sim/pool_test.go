package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool returns a pool and n waiting customers that arrived at t=0.
func newTestPool(t *testing.T, capacity, n int) (*ServerPool, *Arena, []CustomerID) {
	t.Helper()
	arena := &Arena{}
	ids := make([]CustomerID, n)
	for i := range ids {
		ids[i] = arena.Add(0, i)
	}
	return NewServerPool(capacity, arena), arena, ids
}

func TestServerPool_Empty_NextDepartureIsNever(t *testing.T) {
	pool, _, _ := newTestPool(t, 3, 0)

	assert.True(t, IsNever(pool.NextDepartureTime()))
	assert.Equal(t, 3, pool.FreeSeats())
	assert.Equal(t, 0, pool.Occupied())
}

func TestServerPool_Board_SeatsCustomerAndTracksMinimum(t *testing.T) {
	// GIVEN a 3-seat pool
	pool, arena, ids := newTestPool(t, 3, 2)

	// WHEN two customers board with departures 7 and 4
	require.NoError(t, pool.Board(ids[0], 1, 7))
	require.NoError(t, pool.Board(ids[1], 1, 4))

	// THEN both are in service and the earliest departure is 4
	assert.Equal(t, 1, pool.FreeSeats())
	assert.Equal(t, 2, pool.Occupied())
	assert.Equal(t, 4.0, pool.NextDepartureTime())
	assert.Equal(t, StatusInService, arena.Get(ids[0]).Status)
	assert.Equal(t, 1.0, arena.Get(ids[1]).BoardedTime)
	assert.Equal(t, []CustomerID{ids[0], ids[1]}, pool.Seated())
}

func TestServerPool_Board_Full_IsNoOpReturningErrPoolFull(t *testing.T) {
	pool, arena, ids := newTestPool(t, 1, 2)
	require.NoError(t, pool.Board(ids[0], 0, 5))

	err := pool.Board(ids[1], 0, 6)

	assert.True(t, errors.Is(err, ErrPoolFull), "got %v", err)
	assert.Equal(t, 0, pool.FreeSeats())
	assert.Equal(t, 5.0, pool.NextDepartureTime())
	assert.Equal(t, StatusWaiting, arena.Get(ids[1]).Status)
}

func TestServerPool_Board_InvalidCompletion_IsRejected(t *testing.T) {
	for _, completion := range []float64{Never, math.NaN(), 0.5} {
		pool, arena, ids := newTestPool(t, 1, 1)

		err := pool.Board(ids[0], 1, completion)

		assert.True(t, errors.Is(err, ErrInvalidDeparture), "completion %v: got %v", completion, err)
		assert.Equal(t, 1, pool.FreeSeats())
		assert.Equal(t, StatusWaiting, arena.Get(ids[0]).Status)
	}
}

func TestServerPool_Board_AlreadySeatedCustomer_ReturnsInvalidTransition(t *testing.T) {
	pool, _, ids := newTestPool(t, 2, 1)
	require.NoError(t, pool.Board(ids[0], 0, 5))

	err := pool.Board(ids[0], 0, 6)

	assert.True(t, errors.Is(err, ErrInvalidTransition), "got %v", err)
	assert.Equal(t, 1, pool.FreeSeats(), "failed board must not take a seat")
}

func TestServerPool_ReleaseDue_ReleasesOnlyMatchingSeats(t *testing.T) {
	pool, arena, ids := newTestPool(t, 3, 3)
	require.NoError(t, pool.Board(ids[0], 0, 2))
	require.NoError(t, pool.Board(ids[1], 0, 5))
	require.NoError(t, pool.Board(ids[2], 0, 9))

	n, err := pool.ReleaseDue(5)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, StatusServed, arena.Get(ids[1]).Status)
	assert.Equal(t, StatusInService, arena.Get(ids[0]).Status)
	assert.Equal(t, 1, pool.FreeSeats())
	assert.Equal(t, 1, pool.Served())
	require.Len(t, pool.History(), 1)
	assert.Equal(t, ids[1], pool.History()[0].ID)
}

func TestServerPool_ReleaseDue_TiedDepartures_ReleaseTogether(t *testing.T) {
	// GIVEN two customers finishing at the same instant
	pool, _, ids := newTestPool(t, 3, 3)
	require.NoError(t, pool.Board(ids[0], 0, 4))
	require.NoError(t, pool.Board(ids[1], 1, 4))
	require.NoError(t, pool.Board(ids[2], 1, 8))

	// WHEN the pool releases at t=4
	n, err := pool.ReleaseDue(4)

	// THEN both leave in one call and both seats are free again
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, pool.FreeSeats())
	assert.Equal(t, 8.0, pool.NextDepartureTime())
}

func TestServerPool_ReleaseDue_NoMatch_ReturnsZero(t *testing.T) {
	pool, _, ids := newTestPool(t, 2, 1)
	require.NoError(t, pool.Board(ids[0], 0, 4))

	n, err := pool.ReleaseDue(3)

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, pool.Occupied())
}

func TestServerPool_ReleaseDue_AtNever_ReturnsSentinelCollision(t *testing.T) {
	// GIVEN a pool whose empty seats all carry the Never sentinel
	pool, _, _ := newTestPool(t, 4, 0)

	// WHEN a release is requested at Never
	n, err := pool.ReleaseDue(Never)

	// THEN nothing is released and the collision is reported
	assert.True(t, errors.Is(err, ErrSentinelCollision), "got %v", err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 4, pool.FreeSeats())
}

func TestServerPool_ReleaseDue_NeverReleasesTwice(t *testing.T) {
	pool, _, ids := newTestPool(t, 1, 1)
	require.NoError(t, pool.Board(ids[0], 0, 3))

	first, err := pool.ReleaseDue(3)
	require.NoError(t, err)
	second, err := pool.ReleaseDue(3)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
	assert.Len(t, pool.History(), 1)
}

func TestServerPool_SeatAccounting_AlwaysSumsToCapacity(t *testing.T) {
	pool, _, ids := newTestPool(t, 3, 5)
	check := func() {
		t.Helper()
		if pool.Occupied()+pool.FreeSeats() != pool.Capacity() {
			t.Fatalf("occupied %d + free %d != capacity %d", pool.Occupied(), pool.FreeSeats(), pool.Capacity())
		}
	}
	require.NoError(t, pool.Board(ids[0], 0, 1))
	check()
	require.NoError(t, pool.Board(ids[1], 0, 1))
	check()
	_, _ = pool.ReleaseDue(1)
	check()
	require.NoError(t, pool.Board(ids[2], 1, 2))
	require.NoError(t, pool.Board(ids[3], 1, 3))
	require.NoError(t, pool.Board(ids[4], 1, 3))
	check()
	_ = pool.Board(ids[4], 1, 3)
	check()
}

func TestNewServerPool_NonPositiveCapacity_Panics(t *testing.T) {
	assert.Panics(t, func() { NewServerPool(0, &Arena{}) })
}
