package probe

import (
	"errors"
	"fmt"
	"os"
)

// ErrHelperUnavailable means the delivery-test helper cannot be executed.
// Unlike attempt-scoped failures it is detected before any process is
// spawned; callers treat it as the probe being disabled for the run.
var ErrHelperUnavailable = errors.New("delivery-test helper unavailable")

// ResolveHelper verifies that path names an executable regular file.
func ResolveHelper(path string) error {
	if path == "" {
		return fmt.Errorf("%w: no helper path configured", ErrHelperUnavailable)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHelperUnavailable, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrHelperUnavailable, path)
	}
	if fi.Mode()&0111 == 0 {
		return fmt.Errorf("%w: %s is not executable", ErrHelperUnavailable, path)
	}
	return nil
}
