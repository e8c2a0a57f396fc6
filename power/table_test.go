package power

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerwait/constants"
)

func TestWaitTableSetClear(t *testing.T) {
	tbl := NewWaitTable(2)
	require.Equal(t, uint(2), tbl.Len())

	var f flag
	addr := unsafe.Pointer(&f.v)

	assert.Nil(t, tbl.Armed(0))
	tbl.Set(0, addr, nil)
	assert.Equal(t, addr, tbl.Armed(0))
	assert.Nil(t, tbl.Armed(1), "neighbour untouched")

	tbl.Clear(0)
	assert.Nil(t, tbl.Armed(0))
}

func TestWaitTableSetArmsUnderLock(t *testing.T) {
	tbl := NewWaitTable(1)
	spy := newSpy(1)

	var f flag
	tbl.Set(0, unsafe.Pointer(&f.v), spy)

	assert.Equal(t, int32(1), spy.arms.Load())
	assert.True(t, spy.armed(0))
}

func TestWaitTableSignal(t *testing.T) {
	tbl := NewWaitTable(2)
	spy := newSpy(2)

	assert.False(t, tbl.Signal(1, spy), "nothing published")
	assert.Zero(t, spy.triggers.Load())

	f := flag{v: 42}
	tbl.Set(1, unsafe.Pointer(&f.v), nil)
	assert.True(t, tbl.Signal(1, spy))
	assert.Equal(t, int32(1), spy.triggers.Load())
	assert.Equal(t, uint64(42), f.v, "trigger must not change the value")
	assert.Equal(t, unsafe.Pointer(&f.v), tbl.Armed(1), "signal never mutates the record")
}

func TestWaitTableRecordIsolation(t *testing.T) {
	tbl := NewWaitTable(2)
	a := uintptr(unsafe.Pointer(&tbl.recs[0].mu))
	b := uintptr(unsafe.Pointer(&tbl.recs[1].mu))
	assert.GreaterOrEqual(t, b-a, uintptr(constants.CacheLineSize))

	addr0 := uintptr(unsafe.Pointer(&tbl.recs[0].addr))
	assert.GreaterOrEqual(t, b-addr0, uintptr(constants.CacheLineSize))
}

func TestWaitTableConcurrentOwners(t *testing.T) {
	const cores = 8
	tbl := NewWaitTable(cores)
	spy := newSpy(cores)
	flags := make([]flag, cores)

	var wg sync.WaitGroup
	for c := uint(0); c < cores; c++ {
		wg.Add(2)
		go func(c uint) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				tbl.Set(c, unsafe.Pointer(&flags[c].v), nil)
				tbl.Clear(c)
			}
		}(c)
		go func(c uint) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				tbl.Signal(c, spy)
			}
		}(c)
	}
	wg.Wait()

	for c := uint(0); c < cores; c++ {
		assert.Nil(t, tbl.Armed(c))
		assert.Zero(t, flags[c].v)
	}
}
