package urlutil

import (
	"regexp"
	"strings"
)

// DisallowMatcher holds an ordered list of glob patterns derived from
// robots.txt Disallow: paths plus any user-supplied --disallow arguments.
// It answers "is this path disallowed" by testing, in order, against each
// pattern and returning true on the first match.
//
// Patterns use shell-glob semantics (fnmatch, not filepath.Match): "*"
// matches any sequence of characters including "/", matching the
// original Python implementation's use of fnmatch rather than Go's
// path-separator-aware path.Match.
type DisallowMatcher struct {
	patterns []*regexp.Regexp
}

// NewDisallowMatcher builds a DisallowMatcher from raw path fragments.
// Each pattern is normalized by stripping a leading "/" and appending "*",
// matching spec.md §4.2. An empty set of paths disallows nothing.
func NewDisallowMatcher(paths []string) *DisallowMatcher {
	patterns := make([]*regexp.Regexp, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimPrefix(p, "/")
		patterns = append(patterns, globToRegexp(p+"*"))
	}
	return &DisallowMatcher{patterns: patterns}
}

// Disallowed reports whether testPath is disallowed by any pattern.
func (m *DisallowMatcher) Disallowed(testPath string) bool {
	testPath = strings.TrimPrefix(testPath, "/")
	for _, pattern := range m.patterns {
		if pattern.MatchString(testPath) {
			return true
		}
	}
	return false
}

// globToRegexp translates an fnmatch-style glob ("*" and "?" wildcards,
// matching across "/" boundaries) into an anchored regexp.
func globToRegexp(glob string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
