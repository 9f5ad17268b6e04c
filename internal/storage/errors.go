package storage

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack/internal/core"
)

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	if serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// Primary result code only; fall back to the message.
	return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(serr.Error(), "UNIQUE")
}

// isIntegerOverflow reports whether err is SQLite's SUM overflow error.
func isIntegerOverflow(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && strings.Contains(serr.Error(), "integer overflow")
}

func wrapSumError(err error) error {
	if isIntegerOverflow(err) {
		return fmt.Errorf("%w: %v", core.ErrAmountOverflow, err)
	}
	return err
}
