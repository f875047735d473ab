// Package lockfile loads the packages section of a bun.lock file into an
// ordered tree model and rewrites it after deduplication.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"github.com/ArnaudBarre/bun-dedupe/pkg/lockpath"
	"github.com/ArnaudBarre/bun-dedupe/pkg/logger"
)

// DefaultFileName is the lockfile bun writes at the project root.
const DefaultFileName = "bun.lock"

var (
	// ErrInvalidJSON is returned when the lockfile is not valid JSONC.
	ErrInvalidJSON = errors.New("invalid lockfile")
	// ErrNoPackages is returned when the lockfile has no "packages" object.
	ErrNoPackages = errors.New("lockfile has no packages")
	// ErrUnordered is returned when a nested package is listed before its parent.
	ErrUnordered = errors.New("nested package listed before its parent")
	// ErrUnresolvedDependency is returned when a declared dependency has no
	// installed copy anywhere in scope.
	ErrUnresolvedDependency = errors.New("unresolved dependency")
)

// RecordKind tells registry packages apart from every other package source.
type RecordKind int

const (
	// KindOther covers workspace, git, github, tarball, folder and root entries.
	// They are never analyzed and always copied through.
	KindOther RecordKind = iota
	// KindRegistry is a ["name@version", registry, metadata, integrity] entry.
	KindRegistry
)

func (k RecordKind) String() string {
	if k == KindRegistry {
		return "registry"
	}
	return "other"
}

// Dependency is a declared (name, range) pair, in file order.
type Dependency struct {
	Name  string
	Range string
}

// Record is one entry of the packages map.
type Record struct {
	Path     string
	Segments []string
	Kind     RecordKind

	// Specifier is "name@version" for registry packages.
	Specifier    string
	Dependencies []Dependency

	value gjson.Result
}

// Version returns the part of the specifier after the last '@'.
func (r *Record) Version() string {
	return r.Specifier[strings.LastIndex(r.Specifier, "@")+1:]
}

// Name returns the package name recorded in the specifier, which differs
// from the last path segment for aliased installs.
func (r *Record) Name() string {
	if i := strings.LastIndex(r.Specifier, "@"); i > 0 {
		return r.Specifier[:i]
	}
	return r.Specifier
}

// Value returns the raw record array.
func (r *Record) Value() gjson.Result {
	return r.value
}

// Lockfile is the parsed view of bun.lock. Paths keeps the order packages
// appear in the file.
type Lockfile struct {
	Version int64
	Paths   []string
	Records map[string]*Record

	// RootRequirements are the ranges the root workspace declares.
	RootRequirements []Dependency
}

// Record looks up the entry installed at path.
func (l *Lockfile) Record(path string) (*Record, bool) {
	r, ok := l.Records[path]
	return r, ok
}

// Load reads and parses the lockfile at path. The raw bytes are returned
// alongside so they can be rewritten later.
func Load(path string) (*Lockfile, []byte, error) {
	logger.Debugf("Reading lockfile from %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	lf, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return lf, data, nil
}

// Parse builds the tree model from lockfile bytes. bun.lock allows trailing
// commas, so the input is normalized to strict JSON first.
func Parse(data []byte) (*Lockfile, error) {
	raw := jsonc.ToJSON(data)
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}

	packages := gjson.GetBytes(raw, "packages")
	if !packages.IsObject() {
		return nil, ErrNoPackages
	}

	lf := &Lockfile{
		Version: gjson.GetBytes(raw, "lockfileVersion").Int(),
		Records: make(map[string]*Record),
	}

	var err error
	packages.ForEach(func(key, value gjson.Result) bool {
		var rec *Record
		rec, err = newRecord(key.String(), value)
		if err != nil {
			return false
		}
		if _, dup := lf.Records[rec.Path]; dup {
			err = fmt.Errorf("%w: duplicate package %q", ErrInvalidJSON, rec.Path)
			return false
		}
		if len(rec.Segments) > 1 {
			parent := lockpath.Encode(lockpath.Parent(rec.Segments))
			if _, ok := lf.Records[parent]; !ok {
				err = fmt.Errorf("%w: %q appears before %q", ErrUnordered, rec.Path, parent)
				return false
			}
		}
		lf.Records[rec.Path] = rec
		lf.Paths = append(lf.Paths, rec.Path)
		return true
	})
	if err != nil {
		return nil, err
	}

	gjson.GetBytes(raw, "workspaces").ForEach(func(key, ws gjson.Result) bool {
		if key.String() != "" {
			return true
		}
		for _, field := range []string{"dependencies", "devDependencies", "optionalDependencies"} {
			lf.RootRequirements = append(lf.RootRequirements, dependencies(ws.Get(field))...)
		}
		return false
	})

	logger.Debugf("Parsed lockfile v%d with %d packages", lf.Version, len(lf.Paths))
	return lf, nil
}

func newRecord(path string, value gjson.Result) (*Record, error) {
	segments, err := lockpath.Decode(path)
	if err != nil {
		return nil, err
	}
	if !value.IsArray() {
		return nil, fmt.Errorf("%w: package %q is not an array", ErrInvalidJSON, path)
	}

	rec := &Record{Path: path, Segments: segments, Kind: KindOther, value: value}
	items := value.Array()
	if len(items) > 0 && items[0].Type == gjson.String {
		rec.Specifier = items[0].Str
	}
	if len(items) == 4 && items[0].Type == gjson.String {
		rec.Kind = KindRegistry
		rec.Dependencies = dependencies(items[2].Get("dependencies"))
	}
	return rec, nil
}

func dependencies(obj gjson.Result) []Dependency {
	var deps []Dependency
	obj.ForEach(func(name, rng gjson.Result) bool {
		deps = append(deps, Dependency{Name: name.String(), Range: rng.String()})
		return true
	})
	return deps
}
