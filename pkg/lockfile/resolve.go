package lockfile

import (
	"fmt"

	"github.com/ArnaudBarre/bun-dedupe/pkg/lockpath"
)

// ResolveAncestor finds the copy of name that a package installed at
// segments would load: the nearest enclosing install wins, ending with the
// root-level one.
func (l *Lockfile) ResolveAncestor(segments []string, name string) (string, error) {
	return l.ResolveAncestorFunc(segments, name, nil)
}

// ResolveAncestorFunc is ResolveAncestor over the installs for which skip
// returns false, as if the skipped entries were already removed.
func (l *Lockfile) ResolveAncestorFunc(segments []string, name string, skip func(path string) bool) (string, error) {
	for depth := len(segments); depth >= 0; depth-- {
		candidate := lockpath.Join(segments[:depth], name)
		if _, ok := l.Records[candidate]; !ok {
			continue
		}
		if skip != nil && skip(candidate) {
			continue
		}
		return candidate, nil
	}
	return "", fmt.Errorf("%w: %q required by %q", ErrUnresolvedDependency, name, lockpath.Encode(segments))
}

// Requirements maps every installed path to the ranges its dependents ask
// for. Ranges from the root workspace are included for root-level packages.
func (l *Lockfile) Requirements() (map[string][]string, error) {
	reqs := make(map[string][]string)

	for _, dep := range l.RootRequirements {
		if _, ok := l.Records[dep.Name]; ok {
			reqs[dep.Name] = append(reqs[dep.Name], dep.Range)
		}
	}

	for _, path := range l.Paths {
		rec := l.Records[path]
		if rec.Kind != KindRegistry {
			continue
		}
		for _, dep := range rec.Dependencies {
			target, err := l.ResolveAncestor(rec.Segments, dep.Name)
			if err != nil {
				return nil, err
			}
			reqs[target] = append(reqs[target], dep.Range)
		}
	}
	return reqs, nil
}
