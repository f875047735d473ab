package analyzer

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

const constraintCacheSize = 1024

// prereleaseComparator finds versions with a prerelease tag inside a range,
// e.g. the 1.0.0-beta.1 in "^1.0.0-beta.1".
var prereleaseComparator = regexp.MustCompile(`v?\d+\.\d+\.\d+-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*`)

// comparatorSet is one `||` alternative of a range.
type comparatorSet struct {
	constraints *semver.Constraints
	// prereleases are the comparator versions that carry a prerelease tag.
	prereleases []*semver.Version
}

// allowsPrerelease applies npm's rule: a prerelease only matches when a
// comparator of the same set has the same major.minor.patch and a prerelease.
func (c comparatorSet) allowsPrerelease(v *semver.Version) bool {
	for _, p := range c.prereleases {
		if p.Major() == v.Major() && p.Minor() == v.Minor() && p.Patch() == v.Patch() {
			return true
		}
	}
	return false
}

// Satisfier checks npm-style ranges against versions, caching parsed ranges
// since the same few ranges repeat across a lockfile.
type Satisfier struct {
	ranges *lru.Cache[string, []comparatorSet]
}

// NewSatisfier creates a new Satisfier
func NewSatisfier() *Satisfier {
	cache, err := lru.New[string, []comparatorSet](constraintCacheSize)
	if err != nil {
		panic(err)
	}
	return &Satisfier{ranges: cache}
}

// Satisfies reports whether version is inside rng. Anything that is not a
// semver version or range (git refs, dist-tags, workspace specifiers) never matches.
func (s *Satisfier) Satisfies(version, rng string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	for _, set := range s.parse(rng) {
		if !set.constraints.Check(v) {
			continue
		}
		if v.Prerelease() == "" || set.allowsPrerelease(v) {
			return true
		}
	}
	return false
}

// SatisfiesAll reports whether version is inside every range.
func (s *Satisfier) SatisfiesAll(version string, ranges []string) bool {
	for _, rng := range ranges {
		if !s.Satisfies(version, rng) {
			return false
		}
	}
	return true
}

// parse splits rng into its alternatives. An unparsable range yields nil.
func (s *Satisfier) parse(rng string) []comparatorSet {
	rng = normalizeRange(rng)
	if sets, ok := s.ranges.Get(rng); ok {
		return sets
	}

	var sets []comparatorSet
	for _, alt := range strings.Split(rng, "||") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			alt = "*"
		}
		c, err := semver.NewConstraint(alt)
		if err != nil {
			sets = nil
			break
		}
		set := comparatorSet{constraints: c}
		for _, m := range prereleaseComparator.FindAllString(alt, -1) {
			if p, err := semver.NewVersion(m); err == nil {
				set.prereleases = append(set.prereleases, p)
			}
		}
		sets = append(sets, set)
	}
	s.ranges.Add(rng, sets)
	return sets
}

// normalizeRange maps npm range spellings Masterminds does not know about.
// Dist-tags such as "latest" are left alone and fail to parse.
func normalizeRange(rng string) string {
	rng = strings.TrimSpace(rng)
	if alias, ok := strings.CutPrefix(rng, "npm:"); ok {
		// npm:real-name@^1.0.0; scoped names start with '@' so look past it.
		if i := strings.LastIndex(alias, "@"); i > 0 {
			rng = alias[i+1:]
		} else {
			rng = ""
		}
	}
	if rng == "" {
		return "*"
	}
	return rng
}
