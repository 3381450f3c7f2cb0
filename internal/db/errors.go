package db

import (
	"errors"
	"fmt"
)

// Connection and query failures. Callers branch with errors.Is; the
// driver diagnostic stays in the chain.
var (
	ErrInvalidConfig    = errors.New("invalid connection config")
	ErrAuthentication   = errors.New("authentication failed")
	ErrDatabaseNotFound = errors.New("database not found")
	ErrConnectivity     = errors.New("connectivity error")
	ErrQuery            = errors.New("query execution failed")
	ErrClosed           = errors.New("connection is closed")
)

// Wrap tags cause with kind, keeping both reachable through errors.Is/As.
func Wrap(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// Kind reports which of the sentinel categories err belongs to, or nil.
func Kind(err error) error {
	for _, k := range []error{
		ErrInvalidConfig,
		ErrAuthentication,
		ErrDatabaseNotFound,
		ErrConnectivity,
		ErrQuery,
		ErrClosed,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
