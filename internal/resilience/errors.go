package resilience

import (
	"errors"
	"net"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error classes and codes that may succeed on a second attempt.
const (
	classConnectionException = "08"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeCannotConnectNow     = "57P03"
	codeTooManyConnections   = "53300"
)

// IsTransient reports whether err, or any error it wraps, is a network
// failure, a pgx timeout or a Postgres error that a retry may clear.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == classConnectionException:
			return true
		case pgErr.Code == codeSerializationFailure,
			pgErr.Code == codeDeadlockDetected,
			pgErr.Code == codeCannotConnectNow,
			pgErr.Code == codeTooManyConnections:
			return true
		default:
			return false
		}
	}

	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED)
}
