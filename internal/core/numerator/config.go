// Package numerator provides domain contracts for business number allocation.
package numerator

import (
	"fmt"

	pkgnumerator "prodtrack/pkg/numerator"
)

// Kind names an independent sequence. Each kind owns exactly one counter row.
type Kind string

const (
	// KindOrder numbers customer orders: P-000001.
	KindOrder Kind = "order-sequence"

	// KindProductionOrder numbers production orders: OP-000001.
	KindProductionOrder Kind = "production-order-sequence"
)

func (k Kind) String() string { return string(k) }

// Config holds the presentation of one sequence kind.
type Config struct {
	// Prefix placed before the dash (e.g., "P", "OP")
	Prefix string

	// PadWidth is the minimum digit count (default 6)
	PadWidth int
}

// Format renders value using this configuration.
func (c Config) Format(value int64) string {
	return pkgnumerator.Format(c.Prefix, c.PadWidth, value)
}

// Parse extracts the numeric value from a number formatted with this configuration.
func (c Config) Parse(formatted string) (int64, error) {
	return pkgnumerator.Parse(c.Prefix, formatted)
}

var configs = map[Kind]Config{
	KindOrder:           {Prefix: "P", PadWidth: pkgnumerator.DefaultPadWidth},
	KindProductionOrder: {Prefix: "OP", PadWidth: pkgnumerator.DefaultPadWidth},
}

// ConfigFor returns the configuration registered for kind.
func ConfigFor(kind Kind) (Config, error) {
	cfg, ok := configs[kind]
	if !ok {
		return Config{}, fmt.Errorf("%w: no format registered for %q", ErrNotProvisioned, kind)
	}
	return cfg, nil
}

// Kinds lists every known sequence kind. Bootstrap seeds one counter per entry.
func Kinds() []Kind {
	return []Kind{KindOrder, KindProductionOrder}
}
