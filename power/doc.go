// Package power puts an idle worker core into the C0.2 state while it waits
// for a memory location to change, and lets any other core cut that wait
// short.
//
// An Intrinsics value ties together four pieces:
//
//   - a Gate, probed once from a Capabilities source, that disables every
//     operation on hardware without WAITPKG;
//   - a WaitTable with one cache-line isolated record per core slot holding
//     the address that core is currently monitoring;
//   - a Platform that issues the arm / bounded-wait / bounded-pause
//     instructions (HostPlatform on amd64, SoftPlatform anywhere);
//   - a CoreIdentity that maps the calling thread to its core slot.
//
// A poller calls Monitor with a Condition describing the word it is waiting
// on and an absolute timestamp deadline. A producer that has just published
// work calls Wakeup with the poller's core slot. Wakeup does not close the
// window between "core about to publish its address" and "core asleep": a
// wakeup that lands before the address is published is lost and the sleeper
// runs to its deadline. Deadlines are therefore the liveness guarantee, not
// Wakeup.
package power
