//go:build unix

package lock

import (
	"os"
	"syscall"
)

// Supported reports whether Acquire can lock on this platform.
const Supported = true

func tryLock(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
}

func unlock(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
