package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatements(t *testing.T) {
	stmts := Statements()
	assert.Len(t, stmts, 17)

	for _, s := range stmts {
		if !strings.HasPrefix(s, "CREATE ") {
			t.Fatalf("unexpected statement: %.40s", s)
		}
		assert.Contains(t, s, "IF NOT EXISTS")
	}
	assert.Contains(t, stmts[0], "sequence_counters")
}
