package analyzer

import (
	"github.com/ArnaudBarre/bun-dedupe/pkg/lockfile"
	"github.com/ArnaudBarre/bun-dedupe/pkg/lockpath"
	"github.com/ArnaudBarre/bun-dedupe/pkg/logger"
)

// HoistAnalyzer finds nested registry packages that an ancestor install can
// serve, relying on bun listing shallow installs before deeper ones.
type HoistAnalyzer struct {
	IgnorePackages []string // dependency names that are never hoisted

	satisfier *Satisfier
}

var _ Analyzer = (*HoistAnalyzer)(nil)

// NewHoistAnalyzer creates a new HoistAnalyzer
func NewHoistAnalyzer() *HoistAnalyzer {
	return &HoistAnalyzer{satisfier: NewSatisfier()}
}

// Analyze walks the packages in file order and collects the redundant nested installs.
func (a *HoistAnalyzer) Analyze(lf *lockfile.Lockfile) (*Result, error) {
	reqs, err := lf.Requirements()
	if err != nil {
		return nil, err
	}
	opaque := opaqueSubtrees(lf)

	res := &Result{Hoisted: []Hoist{}, Promotions: map[string]string{}}
	changes := lockfile.Changes{}

	for _, path := range lf.Paths {
		rec := lf.Records[path]
		if len(rec.Segments) > 1 && changes.Dropped(path) {
			logger.Debugf("Skipping %s, nested under a hoisted package", path)
			continue
		}
		if rec.Kind != lockfile.KindRegistry {
			continue
		}

		for _, dep := range rec.Dependencies {
			nestedPath := path + "/" + dep.Name
			nested, ok := lf.Record(nestedPath)
			if !ok {
				continue
			}
			if a.isIgnored(dep.Name) {
				logger.Debugf("Keeping %s, %s is ignored", nestedPath, dep.Name)
				continue
			}
			if nested.Kind != lockfile.KindRegistry || opaque[nestedPath] {
				logger.Debugf("Keeping %s, not a registry subtree", nestedPath)
				continue
			}

			// Copies hoisted earlier in this pass are gone, look past them.
			outerPath, err := lf.ResolveAncestorFunc(lockpath.Parent(rec.Segments), dep.Name, changes.Dropped)
			if err != nil {
				logger.Debugf("Keeping %s, no installed copy of %s above it", nestedPath, dep.Name)
				continue
			}
			outer := lf.Records[outerPath]
			if outer.Kind != lockfile.KindRegistry {
				logger.Debugf("Keeping %s, %s is not a registry package", nestedPath, outerPath)
				continue
			}
			outerVersion := effectiveVersion(lf, res, outerPath)

			h := Hoist{
				Path:            nestedPath,
				Name:            dep.Name,
				Version:         nested.Version(),
				Range:           dep.Range,
				Dependent:       path,
				AncestorPath:    outerPath,
				AncestorVersion: outerVersion,
			}
			if pkg := nested.Name(); pkg != dep.Name {
				h.Package = pkg
			}
			// Everything that loads the nested copy falls back to the outer one.
			served := reqs[nestedPath]
			_, promoted := res.Promotions[outerPath]
			switch {
			case a.satisfier.SatisfiesAll(outerVersion, served):
				h.Reason = ReasonSatisfied
			case !promoted && a.satisfier.SatisfiesAll(h.Version, reqs[outerPath]) &&
				a.dependenciesHold(lf, res, changes, nested, outer.Segments):
				h.Reason = ReasonPromoted
				res.Promotions[outerPath] = nestedPath
			default:
				logger.Debugf("Keeping %s@%s, %s@%s does not satisfy %s", nestedPath, h.Version, outerPath, outerVersion, dep.Range)
				continue
			}

			logger.Debugf("Hoisting %s@%s into %s (%s)", nestedPath, h.Version, outerPath, h.Reason)
			// Those dependents now load the ancestor, so later promotions must keep their ranges.
			reqs[outerPath] = append(reqs[outerPath], served...)
			res.Hoisted = append(res.Hoisted, h)
			changes.Hoisted = append(changes.Hoisted, nestedPath)
		}
	}
	return res, nil
}

func (a *HoistAnalyzer) isIgnored(name string) bool {
	for _, ignored := range a.IgnorePackages {
		if ignored == name {
			return true
		}
	}
	return false
}

// dependenciesHold checks that rec, once moved to the ancestor position,
// still finds a matching copy of each of its own dependencies. The nested
// copy's children are dropped with it, so only what is visible from the
// ancestor counts.
func (a *HoistAnalyzer) dependenciesHold(lf *lockfile.Lockfile, res *Result, changes lockfile.Changes, rec *lockfile.Record, at []string) bool {
	for _, dep := range rec.Dependencies {
		target, err := lf.ResolveAncestorFunc(at, dep.Name, changes.Dropped)
		if err != nil {
			return false
		}
		if !a.satisfier.Satisfies(effectiveVersion(lf, res, target), dep.Range) {
			return false
		}
	}
	return true
}

func effectiveVersion(lf *lockfile.Lockfile, res *Result, path string) string {
	if src, ok := res.Promotions[path]; ok {
		return lf.Records[src].Version()
	}
	return lf.Records[path].Version()
}

// opaqueSubtrees marks every path that is, or contains, a non-registry package.
// Hoisting such a path would drop an entry this tool cannot reason about.
func opaqueSubtrees(lf *lockfile.Lockfile) map[string]bool {
	opaque := make(map[string]bool)
	for _, path := range lf.Paths {
		rec := lf.Records[path]
		if rec.Kind == lockfile.KindRegistry {
			continue
		}
		for depth := 1; depth <= len(rec.Segments); depth++ {
			opaque[lockpath.Encode(rec.Segments[:depth])] = true
		}
	}
	return opaque
}
