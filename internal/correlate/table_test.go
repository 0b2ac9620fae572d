package correlate

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ResolveOnlyCompletesItsOwnEntry(t *testing.T) {
	table := NewTable[string](0)
	idA, chA := table.Register()
	idB, chB := table.Register()
	require.NotEqual(t, idA, idB)

	assert.True(t, table.Resolve(idB, "b"))
	assert.Equal(t, Result[string]{Value: "b"}, <-chB)

	select {
	case r := <-chA:
		t.Fatalf("entry A completed unexpectedly: %+v", r)
	default:
	}
	assert.Equal(t, 1, table.Len())

	boom := errors.New("boom")
	assert.True(t, table.Reject(idA, boom))
	assert.ErrorIs(t, (<-chA).Err, boom)
	assert.Zero(t, table.Len())
}

func TestTable_UnknownOrRepeatedIDIsIgnored(t *testing.T) {
	table := NewTable[int](0)
	id, ch := table.Register()

	assert.False(t, table.Resolve("id_missing", 1))
	assert.True(t, table.Resolve(id, 7))
	assert.False(t, table.Resolve(id, 8), "second reply for the same id")
	assert.False(t, table.Reject(id, errors.New("late")))
	assert.Equal(t, 7, (<-ch).Value)
}

func TestTable_CapacityEvictsOldest(t *testing.T) {
	table := NewTable[string](2)
	first, firstCh := table.Register()
	_, secondCh := table.Register()
	_, thirdCh := table.Register()

	r := <-firstCh
	assert.ErrorIs(t, r.Err, ErrEvicted)
	assert.False(t, table.Resolve(first, "too late"))
	assert.Equal(t, 2, table.Len())

	select {
	case <-secondCh:
		t.Fatal("second entry should still be pending")
	case <-thirdCh:
		t.Fatal("third entry should still be pending")
	default:
	}
}

func TestTable_Forget(t *testing.T) {
	table := NewTable[string](0)
	id, _ := table.Register()
	assert.True(t, table.Forget(id))
	assert.False(t, table.Forget(id))
	assert.False(t, table.Resolve(id, "x"))
	assert.Zero(t, table.Len())
}

func TestTable_ConcurrentRegisterResolve(t *testing.T) {
	table := NewTable[int](0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, ch := table.Register()
			go table.Resolve(id, i)
			assert.Equal(t, i, (<-ch).Value)
		}(i)
	}
	wg.Wait()
	assert.Zero(t, table.Len())
}

func TestNewID(t *testing.T) {
	id := NewID()
	assert.True(t, strings.HasPrefix(id, "id_"))
	assert.NotEqual(t, id, NewID())
}
