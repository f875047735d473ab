package lockfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ArnaudBarre/bun-dedupe/pkg/lockpath"
)

const (
	packagesStartLine = `  "packages": {`
	packagesEndLine   = "  }"
	entryIndent       = "    "
	entryPrefix       = entryIndent + `"`
)

// ErrNoPackagesBlock is returned when the packages section cannot be located
// in the lockfile text.
var ErrNoPackagesBlock = errors.New(`could not find the "packages" block`)

// Changes describes what to remove from the packages block.
type Changes struct {
	// Hoisted paths are dropped together with everything installed below them.
	Hoisted []string
	// Promoted maps a kept path to the path whose record replaces its value.
	Promoted map[string]string
}

// Dropped reports whether path is hoisted or nested under a hoisted path.
func (c Changes) Dropped(path string) bool {
	for _, h := range c.Hoisted {
		if lockpath.IsWithin(path, h) {
			return true
		}
	}
	return false
}

type entry struct {
	path  string
	key   string // the quoted key as written, e.g. `"a/b"`
	lines []string
}

// Rewrite returns text with the hoisted entries removed from the packages
// block. Entries that are neither dropped nor promoted keep their exact
// bytes, and everything outside the block is left alone.
func Rewrite(text []byte, lf *Lockfile, changes Changes) ([]byte, error) {
	lines := strings.Split(string(text), "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSuffix(line, "\r") == packagesStartLine {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoPackagesBlock
	}
	end := -1
	for i := start + 1; i < len(lines); i++ {
		if line := strings.TrimSuffix(lines[i], "\r"); line == packagesEndLine || line == packagesEndLine+"," {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, ErrNoPackagesBlock
	}

	// Added lines reuse the file's line ending.
	eol := ""
	if strings.HasSuffix(lines[start], "\r") {
		eol = "\r"
	}

	entries, err := splitEntries(lines[start+1 : end])
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(lines))
	for _, e := range entries {
		if _, ok := lf.Records[e.path]; !ok {
			return nil, fmt.Errorf("%w: %q is not a known package", ErrInvalidJSON, e.path)
		}
		if changes.Dropped(e.path) {
			continue
		}
		if src, ok := changes.Promoted[e.path]; ok {
			rec, ok := lf.Records[src]
			if !ok {
				return nil, fmt.Errorf("%w: promoted package %q not found", ErrInvalidJSON, src)
			}
			e.lines = []string{entryIndent + e.key + ": " + FormatValue(rec.Value()) + "," + eol}
		}
		if len(kept) > 0 {
			kept = append(kept, eol)
		}
		kept = append(kept, e.lines...)
	}

	out := make([]string, 0, start+1+len(kept)+len(lines)-end)
	out = append(out, lines[:start+1]...)
	out = append(out, kept...)
	out = append(out, lines[end:]...)

	return []byte(strings.Join(out, "\n")), nil
}

// splitEntries groups block lines by package. bun writes one line per package
// with a blank line in between; continuation lines are kept with their entry.
func splitEntries(block []string) ([]entry, error) {
	var entries []entry
	for _, line := range block {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, entryPrefix) {
			key := gjson.Parse(line[len(entryIndent):])
			if key.Type != gjson.String {
				return nil, fmt.Errorf("%w: cannot read package key in %q", ErrInvalidJSON, line)
			}
			entries = append(entries, entry{
				path:  key.Str,
				key:   key.Raw,
				lines: []string{line},
			})
			continue
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: unexpected line %q in packages block", ErrInvalidJSON, line)
		}
		last := &entries[len(entries)-1]
		last.lines = append(last.lines, line)
	}
	return entries, nil
}

// EntryLine returns the 1-based line where the entry for path starts, or 0
// when the text has no such entry.
func EntryLine(text []byte, path string) int {
	prefix := entryPrefix + path + `":`
	for i, line := range strings.Split(string(text), "\n") {
		if strings.HasPrefix(line, prefix) {
			return i + 1
		}
	}
	return 0
}
