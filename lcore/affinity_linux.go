// affinity_linux.go - Linux CPU affinity and thread ids via x/sys/unix

//go:build linux

package lcore

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"powerwait/debug"
)

// pin restricts the calling thread to cpu and returns a func that puts the
// previous mask back. The caller must hold the thread locked.
func pin(cpu int) (restore func(), err error) {
	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return nil, errors.Wrap(err, "sched_getaffinity")
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return nil, errors.Wrap(err, "sched_setaffinity")
	}

	return func() {
		if err := unix.SchedSetaffinity(0, &prev); err != nil {
			debug.DropError("lcore: restore affinity", err)
		}
	}, nil
}

// gettid returns the kernel id of the calling thread.
func gettid() (int, bool) {
	return unix.Gettid(), true
}
