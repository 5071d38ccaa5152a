package domain

import "fmt"

// CostRecord is the two-dimensional cost reported by the converter's stats query.
type CostRecord struct {
	Depth                    int `json:"depth"`
	MultiplicativeComplexity int `json:"mc"`
}

// Weighted is depth² × mc. The squared depth is the refinement tie-break and
// must not be replaced by another monotonic proxy.
func (c CostRecord) Weighted() int64 {
	d := int64(c.Depth)
	return d * d * int64(c.MultiplicativeComplexity)
}

// IsZero reports whether neither dimension has been set.
func (c CostRecord) IsZero() bool {
	return c.Depth == 0 && c.MultiplicativeComplexity == 0
}

func (c CostRecord) String() string {
	return fmt.Sprintf("md=%d,mc=%d", c.Depth, c.MultiplicativeComplexity)
}
