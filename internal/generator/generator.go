// Package generator turns catalogs and catalog diffs into DDL for a dialect.
package generator

import (
	"strings"
)

// Script joins statements into a SQL script, one terminated statement per
// paragraph
func Script(statements []string) string {
	if len(statements) == 0 {
		return ""
	}
	return strings.Join(statements, ";\n\n") + ";\n"
}
