package frame

import (
	"fmt"
	"strings"
)

// SchemaError reports required input columns missing from a frame. The
// pipeline aborts on it; there is no partial recovery.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// InsufficientDataError reports that too few usable rows survived
// missing-value pruning for a stage to proceed. Callers are expected to
// resubmit with more history or a shorter sequence length.
type InsufficientDataError struct {
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need at least %d rows, got %d", e.Need, e.Got)
}
