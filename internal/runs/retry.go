package runs

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxBusyRetries = 5
	busyRetryBase  = 10 * time.Millisecond
)

// isSQLiteBusy reports whether err is a transient SQLite lock contention
// error. The driver surfaces these as strings, so matching is textual.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// retryOnBusy runs fn, retrying with exponential backoff while it fails
// with lock contention. Other errors return immediately and unchanged.
func retryOnBusy(fn func() error) error {
	delay := busyRetryBase
	var err error
	for attempt := 0; attempt < maxBusyRetries; attempt++ {
		err = fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		if attempt < maxBusyRetries-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("database busy after %d attempts: %w", maxBusyRetries, err)
}
