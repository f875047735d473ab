package analyzer

import (
	"github.com/ArnaudBarre/bun-dedupe/pkg/lockfile"
)

// Reason explains why a nested package can be dropped
type Reason string

const (
	// ReasonSatisfied means the ancestor copy already satisfies the requested range.
	ReasonSatisfied Reason = "satisfied"
	// ReasonPromoted means the ancestor is replaced by the nested copy, which
	// satisfies every requirement placed on the ancestor.
	ReasonPromoted Reason = "promoted"
)

// Hoist represents a nested package that duplicates an ancestor install
type Hoist struct {
	Path            string `json:"path"`              // nested install path, e.g. "a/lodash"
	Name            string `json:"name"`              // dependency name
	Package         string `json:"package,omitempty"` // real package name when installed under an alias
	Version         string `json:"version"`           // version of the nested copy
	Range           string `json:"range"`             // range requested by the dependent
	Dependent       string `json:"dependent"`         // path of the package declaring the dependency
	AncestorPath    string `json:"ancestor_path"`     // install that will serve the dependent instead
	AncestorVersion string `json:"ancestor_version"`  // ancestor version before any promotion
	Reason          Reason `json:"reason"`
}

// Result is the outcome of a hoisting analysis
type Result struct {
	Hoisted []Hoist `json:"hoisted"`
	// Promotions maps an ancestor path to the nested path whose record replaces it.
	Promotions map[string]string `json:"promotions"`
}

// Paths returns the hoisted paths in discovery order.
func (r *Result) Paths() []string {
	paths := make([]string, 0, len(r.Hoisted))
	for _, h := range r.Hoisted {
		paths = append(paths, h.Path)
	}
	return paths
}

// Changes converts the result into lockfile edits.
func (r *Result) Changes() lockfile.Changes {
	return lockfile.Changes{Hoisted: r.Paths(), Promoted: r.Promotions}
}

// Analyzer defines the interface for lockfile deduplication analyzers
type Analyzer interface {
	// Analyze inspects the lockfile tree and returns the packages that can be hoisted
	Analyze(lf *lockfile.Lockfile) (*Result, error)
}
