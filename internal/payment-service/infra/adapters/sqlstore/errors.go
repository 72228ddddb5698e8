package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
)

// fail wraps a driver error into the domain's persistence error.
func fail(op string, err error) error {
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &domain.PersistenceError{Op: op, Reason: classify(err), Err: err}
}

func classify(err error) domain.PersistenceReason {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// Extended result codes keep the primary code in the low byte.
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return domain.ReasonIntegrity
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
			return domain.ReasonUnavailable
		}
		return domain.ReasonUnknown
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23": // integrity_constraint_violation
			return domain.ReasonIntegrity
		case "08", "53", "57": // connection, resources, operator intervention
			return domain.ReasonUnavailable
		}
		return domain.ReasonUnknown
	}

	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr):
		return domain.ReasonUnavailable
	}
	return domain.ReasonUnknown
}

// missingParent builds the integrity error raised when a parent row that the
// insert depends on does not exist.
func missingParent(op string, err error) error {
	return &domain.PersistenceError{Op: op, Reason: domain.ReasonIntegrity, Err: err}
}
