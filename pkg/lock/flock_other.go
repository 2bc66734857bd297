//go:build !unix

package lock

import "os"

// Supported reports whether Acquire can lock on this platform.
const Supported = false

func tryLock(*os.File) error {
	return ErrUnsupported
}

func unlock(*os.File) error {
	return ErrUnsupported
}
