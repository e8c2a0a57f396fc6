// ============================================================================
// SPSC RING CORRECTNESS VALIDATION SUITE
// ============================================================================
//
// Unit tests for the monitor-aware SPSC ring.
//
// Test categories:
//   - Constructor validation: power-of-2 sizing and initialization
//   - Basic operations: Push/Pop semantics and data integrity
//   - Capacity management: full/empty handling and wraparound
//   - Monitor export: WaitCondition tracks the head slot
//   - Producer wakeups: PushWake reaches the Waker only on success

package ring

import (
	"fmt"
	"math"
	"testing"
	"unsafe"

	"powerwait/power"
	"powerwait/utils"
)

// ============================================================================
// TEST UTILITIES AND HELPERS
// ============================================================================

// testData generates deterministic test payloads for validation
func testData(seed byte) *[24]byte {
	data := &[24]byte{}
	for i := range data {
		data[i] = seed + byte(i)
	}
	return data
}

// validateData ensures payload integrity across operations
func validateData(t *testing.T, got, want *[24]byte, context string) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: got nil, want %v", context, want)
	}
	if *got != *want {
		t.Fatalf("%s: got %v, want %v", context, got, want)
	}
}

// conditionHolds evaluates c the same way Monitor does.
func conditionHolds(c *power.Condition) bool {
	return utils.LoadSized(c.Addr, c.Size)&c.Mask == c.Val
}

// recordingWaker remembers every core it was asked to wake.
type recordingWaker struct {
	cores []uint
	err   error
}

func (w *recordingWaker) Wakeup(core uint) error {
	w.cores = append(w.cores, core)
	return w.err
}

// ============================================================================
// CONSTRUCTOR VALIDATION
// ============================================================================

// TestNewValidSizes validates constructor with valid power-of-2 sizes
func TestNewValidSizes(t *testing.T) {
	for _, size := range []int{2, 4, 8, 64, 1024} {
		t.Run(fmt.Sprintf("size_%d", size), func(t *testing.T) {
			r := New(size)
			if r.mask != uint64(size-1) {
				t.Errorf("mask = %d, want %d", r.mask, size-1)
			}
			if r.step != uint64(size) {
				t.Errorf("step = %d, want %d", r.step, size)
			}
			for i := 0; i < size; i++ {
				if r.buf[i].seq != uint64(i) {
					t.Errorf("buf[%d].seq = %d, want %d", i, r.buf[i].seq, i)
				}
			}
		})
	}
}

// TestNewPanicsOnInvalidSize validates constructor input validation
func TestNewPanicsOnInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1, 1, 3, 1000, 1023} {
		t.Run(fmt.Sprintf("invalid_size_%d", size), func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("New(%d) should panic on invalid size", size)
				}
			}()
			_ = New(size)
		})
	}
}

// TestCursorIsolation checks head and tail never share a cache line
func TestCursorIsolation(t *testing.T) {
	var r Ring
	head := unsafe.Offsetof(r.head)
	tail := unsafe.Offsetof(r.tail)
	if tail-head < 64 {
		t.Fatalf("head/tail distance = %d, want >= 64", tail-head)
	}
	if unsafe.Sizeof(slot{}) != 32 {
		t.Fatalf("slot size = %d, want 32", unsafe.Sizeof(slot{}))
	}
}

// ============================================================================
// BASIC OPERATION VALIDATION
// ============================================================================

// TestPushPopRoundTrip validates fundamental Push/Pop semantics
func TestPushPopRoundTrip(t *testing.T) {
	r := New(4)
	want := testData(42)

	if !r.Push(want) {
		t.Fatal("Push should succeed on empty ring")
	}
	validateData(t, r.Pop(), want, "round trip")
	if r.Pop() != nil {
		t.Fatal("ring should be empty after single push/pop cycle")
	}
}

// TestPushFailsWhenFull validates capacity enforcement
func TestPushFailsWhenFull(t *testing.T) {
	for _, size := range []int{2, 4, 8} {
		t.Run(fmt.Sprintf("size_%d", size), func(t *testing.T) {
			r := New(size)
			for i := 0; i < size; i++ {
				if !r.Push(testData(byte(i))) {
					t.Fatalf("push %d unexpectedly failed before capacity reached", i)
				}
			}
			if r.Push(testData(0)) {
				t.Fatal("push into full ring should return false")
			}
			r.Pop()
			if !r.Push(testData(0)) {
				t.Fatal("push should succeed once a slot is freed")
			}
		})
	}
}

// TestFullRingKeepsUnreadPayloads validates that a rejected push on the
// smallest ring leaves the queued payloads intact and the ring usable
func TestFullRingKeepsUnreadPayloads(t *testing.T) {
	r := New(2)
	a, b, c := testData(10), testData(20), testData(30)

	if !r.Push(a) || !r.Push(b) {
		t.Fatal("two pushes must fit a two-slot ring")
	}
	if r.Push(c) {
		t.Fatal("third push must be rejected")
	}

	validateData(t, r.Pop(), a, "first queued payload")
	validateData(t, r.Pop(), b, "second queued payload")
	if r.Pop() != nil {
		t.Fatal("rejected payload must not appear")
	}

	for i := 0; i < 10; i++ {
		want := testData(byte(40 + i))
		if !r.Push(want) {
			t.Fatalf("push %d after drain failed", i)
		}
		validateData(t, r.Pop(), want, fmt.Sprintf("lap %d", i))
	}
}

// TestWraparoundOrdering validates FIFO order across many ring laps
func TestWraparoundOrdering(t *testing.T) {
	r := New(4)
	for i := 0; i < 100; i++ {
		want := testData(byte(i))
		if !r.Push(want) {
			t.Fatalf("push %d failed", i)
		}
		validateData(t, r.Pop(), want, fmt.Sprintf("lap item %d", i))
	}

	for i := 0; i < 3; i++ {
		r.Push(testData(byte(10 * i)))
	}
	for i := 0; i < 3; i++ {
		validateData(t, r.Pop(), testData(byte(10*i)), "batched order")
	}
}

// TestPopWaitReturnsQueued validates PopWait on a non-empty ring
func TestPopWaitReturnsQueued(t *testing.T) {
	r := New(2)
	want := testData(9)
	r.Push(want)
	validateData(t, r.PopWait(), want, "PopWait")
}

// TestPopWaitBlocksUntilItem validates blocking consumption across goroutines
func TestPopWaitBlocksUntilItem(t *testing.T) {
	r := New(4)
	want := testData(77)
	got := make(chan [24]byte, 1)

	go func() { got <- *r.PopWait() }()
	r.Push(want)

	if v := <-got; v != *want {
		t.Fatalf("PopWait = %v, want %v", v, *want)
	}
}

// ============================================================================
// MONITOR EXPORT
// ============================================================================

// TestWaitConditionShape checks the exported monitor target
func TestWaitConditionShape(t *testing.T) {
	r := New(8)
	var c power.Condition
	r.WaitCondition(&c)

	if c.Addr != unsafe.Pointer(&r.buf[0].seq) {
		t.Fatal("condition must watch the head slot sequence")
	}
	if c.Size != 8 || c.Mask != math.MaxUint64 || c.Val != 1 {
		t.Fatalf("condition = %+v, want size 8, full mask, val 1", c)
	}
	if uintptr(c.Addr)%8 != 0 {
		t.Fatal("watched word must be 8-byte aligned")
	}
}

// TestWaitConditionTracksData validates the condition against ring state
func TestWaitConditionTracksData(t *testing.T) {
	r := New(2)
	var c power.Condition

	r.WaitCondition(&c)
	if conditionHolds(&c) {
		t.Fatal("empty ring must not satisfy its wait condition")
	}

	r.Push(testData(1))
	if !conditionHolds(&c) {
		t.Fatal("push must satisfy the armed condition")
	}

	r.Pop()
	r.WaitCondition(&c)
	if conditionHolds(&c) {
		t.Fatal("drained ring must not satisfy its wait condition")
	}
	if c.Addr != unsafe.Pointer(&r.buf[1].seq) {
		t.Fatal("condition must follow the head cursor")
	}

	// Wrap back onto slot 0.
	r.Push(testData(2))
	r.Pop()
	r.WaitCondition(&c)
	if c.Addr != unsafe.Pointer(&r.buf[0].seq) || c.Val != 3 {
		t.Fatalf("after wrap: condition = %+v", c)
	}
	r.Push(testData(3))
	if !conditionHolds(&c) {
		t.Fatal("push after wrap must satisfy the condition")
	}
}

// ============================================================================
// PRODUCER WAKEUPS
// ============================================================================

// TestPushWake validates wakeups follow accepted pushes only
func TestPushWake(t *testing.T) {
	r := New(2)
	w := &recordingWaker{}

	for i := 0; i < 2; i++ {
		if !r.PushWake(testData(byte(i)), w, 3) {
			t.Fatalf("PushWake %d should succeed before capacity", i)
		}
	}
	if len(w.cores) != 2 || w.cores[0] != 3 || w.cores[1] != 3 {
		t.Fatalf("woken cores = %v, want [3 3]", w.cores)
	}

	if r.PushWake(testData(2), w, 3) {
		t.Fatal("PushWake into full ring should return false")
	}
	if len(w.cores) != 2 {
		t.Fatal("rejected push must not wake the consumer")
	}
}

// TestPushWakeIgnoresWakeError validates a failing waker keeps the data
func TestPushWakeIgnoresWakeError(t *testing.T) {
	r := New(2)
	w := &recordingWaker{err: power.ErrUnsupported}
	want := testData(5)

	if !r.PushWake(want, w, 0) {
		t.Fatal("PushWake must report the push, not the wakeup")
	}
	validateData(t, r.Pop(), want, "after failed wakeup")
}

// ============================================================================
// BENCHMARKS
// ============================================================================

func BenchmarkPushPop(b *testing.B) {
	r := New(1024)
	val := testData(1)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r.Push(val)
		r.Pop()
	}
}

func BenchmarkWaitCondition(b *testing.B) {
	r := New(1024)
	var c power.Condition
	for i := 0; i < b.N; i++ {
		r.WaitCondition(&c)
	}
}
