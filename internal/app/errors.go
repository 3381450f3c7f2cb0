package app

import (
	"errors"

	"github.com/bgunnarsson/xpstat/internal/db"
	"github.com/bgunnarsson/xpstat/internal/density"
	"github.com/bgunnarsson/xpstat/internal/report"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitUnexpected   = 1
	ExitUsage        = 2
	ExitAuth         = 3
	ExitDBNotFound   = 4
	ExitConnectivity = 5
	ExitQuery        = 6
	ExitShape        = 7
)

// Describe turns err into the one-line message shown to the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, db.ErrAuthentication):
		return "Incorrect credentials."
	case errors.Is(err, db.ErrDatabaseNotFound):
		return "Database does not exist."
	default:
		return err.Error()
	}
}

// ExitCode maps err onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, db.ErrInvalidConfig), errors.Is(err, report.ErrInvalidSpec), errors.Is(err, density.ErrParse):
		return ExitUsage
	case errors.Is(err, db.ErrAuthentication):
		return ExitAuth
	case errors.Is(err, db.ErrDatabaseNotFound):
		return ExitDBNotFound
	case errors.Is(err, db.ErrConnectivity):
		return ExitConnectivity
	case errors.Is(err, db.ErrQuery), errors.Is(err, db.ErrClosed):
		return ExitQuery
	case errors.Is(err, density.ErrShape), errors.Is(err, density.ErrNoData):
		return ExitShape
	default:
		return ExitUnexpected
	}
}
