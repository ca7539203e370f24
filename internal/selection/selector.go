// Package selection prunes an assembled feature table to a bounded,
// pairwise-decorrelated subset ranked by correlation with the target.
package selection

import (
	"math"
	"sort"

	"FeatureMill/internal/frame"
	applogger "FeatureMill/pkg/logger"
)

// Rank pairs a feature with its absolute correlation to the target. The
// full ranked list is exposed as a diagnostic; it never feeds back into
// the selection result.
type Rank struct {
	Name string
	Corr float64
}

// Result is the outcome of one selection run: the target plus accepted
// features restricted to the rows that survived missing-value pruning.
type Result struct {
	Frame    *frame.Frame
	Target   string
	Accepted []string
	Ranked   []Rank
}

// Selector keeps at most MaxFeatures columns whose pairwise absolute
// correlation stays strictly below Threshold. The acceptance walk is
// greedy and order-dependent on purpose: candidates are visited in rank
// order and a rejected candidate is never reconsidered. The same input
// always reproduces the same set.
type Selector struct {
	MaxFeatures int
	Threshold   float64

	log *applogger.Logger
}

// NewSelector builds a selector. Non-positive maxFeatures defaults to 50
// and a non-positive threshold to 0.95.
func NewSelector(maxFeatures int, threshold float64) *Selector {
	if maxFeatures <= 0 {
		maxFeatures = 50
	}
	if threshold <= 0 {
		threshold = 0.95
	}
	return &Selector{MaxFeatures: maxFeatures, Threshold: threshold}
}

// SetLogger injects a structured logger.
func (s *Selector) SetLogger(l *applogger.Logger) { s.log = l }

// Select drops every row holding any missing value, ranks the remaining
// columns by absolute correlation with target, and walks the top
// MaxFeatures candidates greedily.
func (s *Selector) Select(wide *frame.Frame, target string) (*Result, error) {
	if !wide.Has(target) {
		return nil, &frame.SchemaError{Missing: []string{target}}
	}

	clean := wide.DropNA()
	if clean.Len() == 0 {
		return nil, &frame.InsufficientDataError{Need: 1, Got: 0}
	}

	ranked := s.rank(clean, target)

	candidates := ranked
	if len(candidates) > s.MaxFeatures {
		candidates = candidates[:s.MaxFeatures]
	}

	accepted := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		if s.admissible(clean, cand.Name, accepted) {
			accepted = append(accepted, cand.Name)
		}
	}

	selected, err := clean.Select(append([]string{target}, accepted...))
	if err != nil {
		return nil, err
	}

	if s.log != nil {
		s.log.Info("features selected",
			applogger.String("target", target),
			applogger.Int("candidates", len(candidates)),
			applogger.Int("accepted", len(accepted)),
			applogger.Int("rows", clean.Len()),
		)
	}

	return &Result{
		Frame:    selected,
		Target:   target,
		Accepted: accepted,
		Ranked:   ranked,
	}, nil
}

// rank orders non-target columns by absolute correlation with the target,
// descending. Undefined correlations (constant columns) sort last; ties
// keep the table's column order.
func (s *Selector) rank(clean *frame.Frame, target string) []Rank {
	ranked := make([]Rank, 0, clean.Width()-1)
	for _, name := range clean.Names() {
		if name == target {
			continue
		}
		ranked = append(ranked, Rank{Name: name, Corr: math.Abs(clean.Corr(name, target))})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := ranked[i].Corr, ranked[j].Corr
		if math.IsNaN(cj) {
			return !math.IsNaN(ci)
		}
		if math.IsNaN(ci) {
			return false
		}
		return ci > cj
	})
	return ranked
}

// admissible reports whether a candidate's absolute correlation with every
// already-accepted feature is strictly below the threshold. An undefined
// pairwise correlation rejects the candidate.
func (s *Selector) admissible(clean *frame.Frame, candidate string, accepted []string) bool {
	if len(accepted) == 0 {
		return true
	}
	maxAbs := 0.0
	for _, name := range accepted {
		c := math.Abs(clean.Corr(candidate, name))
		if math.IsNaN(c) {
			return false
		}
		if c > maxAbs {
			maxAbs = c
		}
	}
	return maxAbs < s.Threshold
}
