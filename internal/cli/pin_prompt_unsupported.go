//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import (
	"errors"
	"os"
)

func readPinNoEcho(_ *os.File) (string, error) {
	return "", errors.New("pin prompt unsupported on this platform")
}
