// Package sqlutil provides SQL helpers for building source queries.
package sqlutil

import (
	"regexp"
	"strings"
)

// QuoteIdentifier quotes a MySQL identifier (table name, column name) with
// backticks. It escapes any existing backticks by doubling them.
// Example: "my_table" -> "`my_table`"
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// validIdentifierRegex matches valid MySQL identifier characters.
// MySQL allows more, but names arriving from flags and config files never
// need them and the restriction removes injection concerns.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier checks if a name is a valid MySQL identifier.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteTable validates and quotes a table reference for interpolation into
// a query. The reference may be qualified as "db.table"; each part is
// validated separately.
func QuoteTable(ref string) (string, error) {
	parts := strings.Split(ref, ".")
	if len(parts) > 2 {
		return "", &InvalidIdentifierError{Name: ref}
	}
	quoted := make([]string, len(parts))
	for i, part := range parts {
		if !IsValidIdentifier(part) {
			return "", &InvalidIdentifierError{Name: ref}
		}
		quoted[i] = QuoteIdentifier(part)
	}
	return strings.Join(quoted, "."), nil
}

// InvalidIdentifierError is returned when an identifier contains invalid
// characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
