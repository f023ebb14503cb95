// Package resilience classifies failures and retries the transient ones
// with exponential backoff.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// TransientError wraps an error that is safe to retry, such as a lost
// database connection or a serialization failure.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError marks err as retryable.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or if it matches known transient database and network
// failure modes. Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	// Postgres SQLSTATE classes that clear on retry: connection errors,
	// serialization failures, deadlocks, resource exhaustion.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case pgErr.Code == "40001": // serialization_failure
			return true
		case pgErr.Code == "40P01": // deadlock_detected
			return true
		case strings.HasPrefix(pgErr.Code, "53"): // insufficient_resources
			return true
		case pgErr.Code == "57P03": // cannot_connect_now
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String heuristics for errors wrapped past recognition by drivers.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"i/o timeout",
		"conn closed",
		"connection refused",
		"database is locked", // sqlite writer contention
		"temporary failure in name resolution",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// ClassifyError categorizes an error as "transient" or "permanent" for
// dead letter reasons.
func ClassifyError(err error) string {
	if IsTransient(err) {
		return "transient"
	}
	return "permanent"
}
