// ============================================================================
// CROSS-PLATFORM COMPATIBILITY STUB
// ============================================================================
//
// Non-Linux builds have neither sched_setaffinity(2) nor gettid(2). Pinning
// is a no-op and no thread ever resolves to a slot, so every Monitor call
// is rejected as coming from a non-worker context.

//go:build !linux

package lcore

func pin(int) (func(), error) {
	return func() {}, nil
}

func gettid() (int, bool) {
	return 0, false
}
