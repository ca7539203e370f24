package frame

import (
	"fmt"
	"math"
	"time"
)

// Frame is an in-memory table of named float64 columns sharing a trading-date
// index. Missing values are represented as NaN; every derived stage of the
// pipeline (assembly, selection, sequencing) operates on this type.
type Frame struct {
	dates []time.Time
	names []string
	cols  map[string][]float64
}

// New creates an empty frame over the given date index. Dates must be
// strictly increasing; New returns an error otherwise.
func New(dates []time.Time) (*Frame, error) {
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("date index not strictly increasing at position %d (%s >= %s)",
				i, dates[i-1].Format("2006-01-02"), dates[i].Format("2006-01-02"))
		}
	}
	return &Frame{
		dates: dates,
		cols:  make(map[string][]float64),
	}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.dates) }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.names) }

// Dates returns the date index. Callers must not mutate it.
func (f *Frame) Dates() []time.Time { return f.dates }

// Names returns column names in insertion order. Callers must not mutate it.
func (f *Frame) Names() []string { return f.names }

// AddColumn appends a named column. The series length must match the date
// index. Re-adding an existing name replaces the data but keeps its position.
func (f *Frame) AddColumn(name string, series []float64) error {
	if len(series) != len(f.dates) {
		return fmt.Errorf("column %q: length %d does not match index length %d", name, len(series), len(f.dates))
	}
	if _, ok := f.cols[name]; !ok {
		f.names = append(f.names, name)
	}
	f.cols[name] = series
	return nil
}

// Column returns the series for name, or false when absent.
func (f *Frame) Column(name string) ([]float64, bool) {
	s, ok := f.cols[name]
	return s, ok
}

// Has reports whether the column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Missing returns, in the given order, the required names absent from the frame.
func (f *Frame) Missing(required []string) []string {
	var missing []string
	for _, name := range required {
		if !f.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Select returns a new frame restricted to the named columns, preserving the
// requested order. It shares the underlying series slices with the receiver.
func (f *Frame) Select(names []string) (*Frame, error) {
	out := &Frame{dates: f.dates, cols: make(map[string][]float64, len(names))}
	for _, name := range names {
		s, ok := f.cols[name]
		if !ok {
			return nil, fmt.Errorf("select: unknown column %q", name)
		}
		out.names = append(out.names, name)
		out.cols[name] = s
	}
	return out, nil
}

// DropNA returns a new frame keeping only rows where every column holds a
// finite or at least non-NaN value. Column order is preserved.
func (f *Frame) DropNA() *Frame {
	keep := make([]int, 0, len(f.dates))
	for i := range f.dates {
		ok := true
		for _, name := range f.names {
			if math.IsNaN(f.cols[name][i]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}

	out := &Frame{
		dates: make([]time.Time, len(keep)),
		names: append([]string(nil), f.names...),
		cols:  make(map[string][]float64, len(f.names)),
	}
	for j, i := range keep {
		out.dates[j] = f.dates[i]
	}
	for _, name := range f.names {
		src := f.cols[name]
		dst := make([]float64, len(keep))
		for j, i := range keep {
			dst[j] = src[i]
		}
		out.cols[name] = dst
	}
	return out
}

// NeutralizeInf rewrites every +Inf/-Inf cell to NaN in place. Division by
// zero during feature computation is a data-quality signal, not an error;
// later stages treat NaN rows uniformly.
func (f *Frame) NeutralizeInf() {
	for _, name := range f.names {
		s := f.cols[name]
		for i, v := range s {
			if math.IsInf(v, 0) {
				s[i] = math.NaN()
			}
		}
	}
}
