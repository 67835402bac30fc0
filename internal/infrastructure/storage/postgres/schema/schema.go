// Package schema embeds the prodtrack database schema.
package schema

import (
	_ "embed"
	"strings"
)

//go:embed schema.sql
var ddl string

// Statements returns the schema DDL split into individual statements.
// Every statement is idempotent.
func Statements() []string {
	parts := strings.Split(ddl, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
