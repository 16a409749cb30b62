package helper

import (
	"backend-penjemputan/internal/config"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	config.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr
}

func TestNextSequenceStartsAtFloor(t *testing.T) {
	setupRedis(t)

	got, err := NextSequence("transfer_id", FloorDefault)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	got, err = NextSequence("parent_id", FloorParent)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got)

	got, err = NextSequence("teacher_id", FloorTeacher)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestNextSequenceMonotonic(t *testing.T) {
	setupRedis(t)

	prev, err := NextSequence("audit_id", FloorDefault)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		got, err := NextSequence("audit_id", FloorDefault)
		require.NoError(t, err)
		assert.Equal(t, prev+1, got)
		prev = got
	}
}

func TestNextSequenceYearScopedKeysIndependent(t *testing.T) {
	setupRedis(t)

	a, err := NextSequence("student_id_2026", FloorDefault)
	require.NoError(t, err)
	b, err := NextSequence("student_id_2027", FloorDefault)
	require.NoError(t, err)

	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(1), b)
}

func TestNextSequenceNoDuplicatesUnderConcurrency(t *testing.T) {
	setupRedis(t)

	const n = 50
	results := make(chan int64, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := NextSequence("concurrent_id", FloorParent)
			assert.NoError(t, err)
			results <- got
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for v := range results {
		assert.False(t, seen[v], "ID %d keluar dua kali", v)
		assert.GreaterOrEqual(t, v, int64(1000))
		seen[v] = true
	}
	assert.Len(t, seen, n)
}
