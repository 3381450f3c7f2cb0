package report

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bgunnarsson/xpstat/internal/db"
)

// ErrInvalidSpec is returned for a QuerySpec that cannot be run safely.
var ErrInvalidSpec = errors.New("invalid query spec")

// QuerySpec is one parameterized read statement plus its bound values.
type QuerySpec struct {
	Statement string
	Params    []any
}

var (
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	placeholderRe = regexp.MustCompile(`\?|\$[0-9]+|@p[0-9]+`)
)

// ValidIdent reports whether s is safe to use as a table or column name.
func ValidIdent(s string) bool {
	return identRe.MatchString(s)
}

// Validate checks the statement is present and that every bound value has
// a marker. It does not parse SQL; quoted literals containing ? would be
// miscounted, which is why UserFilter never emits any.
func (q QuerySpec) Validate() error {
	if strings.TrimSpace(q.Statement) == "" {
		return fmt.Errorf("%w: empty statement", ErrInvalidSpec)
	}
	markers := distinctMarkers(q.Statement)
	if markers != len(q.Params) {
		return fmt.Errorf("%w: %d placeholder(s) for %d parameter(s)", ErrInvalidSpec, markers, len(q.Params))
	}
	return nil
}

// distinctMarkers counts ? markers individually; numbered markers
// ($1, @p1) count once per distinct number.
func distinctMarkers(stmt string) int {
	seen := map[string]bool{}
	n := 0
	for _, m := range placeholderRe.FindAllString(stmt, -1) {
		if m == "?" {
			n++
			continue
		}
		if !seen[m] {
			seen[m] = true
			n++
		}
	}
	return n
}

// UserFilter builds SELECT * FROM <table> WHERE username = <marker> with the
// username bound as a parameter.
func UserFilter(d db.Dialect, table, username string) (QuerySpec, error) {
	if !ValidIdent(table) {
		return QuerySpec{}, fmt.Errorf("%w: bad table name %q", ErrInvalidSpec, table)
	}
	if username == "" {
		return QuerySpec{}, fmt.Errorf("%w: empty username", ErrInvalidSpec)
	}

	stmt := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s",
		d.QuoteIdent(table),
		d.QuoteIdent("username"),
		d.Placeholder(1),
	)
	return QuerySpec{Statement: stmt, Params: []any{username}}, nil
}
