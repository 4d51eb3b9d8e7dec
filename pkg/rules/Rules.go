// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package rules

import (
	gitignore "github.com/sabhiram/go-gitignore"
)

// Rule is a named predicate.  The name is only used for logging.
type Rule struct {
	Name  string
	Match Predicate
}

// Rules decides which paths are left alone by the mirror.
//
// Exclusion rules apply to both the copy pass and the prune pass.
// Protection rules only apply to the prune pass.
type Rules struct {
	exclude     []Rule
	protect     []Rule
	ignoreLines []string
	ignore      *gitignore.GitIgnore
}

func New() *Rules {
	return &Rules{
		exclude: []Rule{},
		protect: []Rule{},
	}
}

// Clone returns a copy of r that can be extended without changing r.
func (r *Rules) Clone() *Rules {
	c := &Rules{
		exclude:     append([]Rule{}, r.exclude...),
		protect:     append([]Rule{}, r.protect...),
		ignoreLines: append([]string{}, r.ignoreLines...),
	}
	if len(c.ignoreLines) > 0 {
		c.ignore = gitignore.CompileIgnoreLines(c.ignoreLines...)
	}
	return c
}

func (r *Rules) Exclude(name string, match Predicate) *Rules {
	r.exclude = append(r.exclude, Rule{Name: name, Match: match})
	return r
}

func (r *Rules) Protect(name string, match Predicate) *Rules {
	r.protect = append(r.protect, Rule{Name: name, Match: match})
	return r
}

// AddPatterns adds doublestar patterns as exclusion rules.
func (r *Rules) AddPatterns(patterns ...string) error {
	for _, pattern := range patterns {
		if len(pattern) == 0 {
			continue
		}
		match, err := Glob(pattern)
		if err != nil {
			return err
		}
		r.Exclude("pattern "+pattern, match)
	}
	return nil
}

// AddIgnoreLines adds gitignore lines as exclusion rules.
func (r *Rules) AddIgnoreLines(lines ...string) {
	if len(lines) == 0 {
		return
	}
	r.ignoreLines = append(r.ignoreLines, lines...)
	r.ignore = gitignore.CompileIgnoreLines(r.ignoreLines...)
}

// Excluded returns the name of the first exclusion rule matching p.
func (r *Rules) Excluded(p string) (string, bool) {
	path := ParsePath(p)
	if len(path.Segments) == 0 {
		return "", false
	}
	for _, rule := range r.exclude {
		if rule.Match(path) {
			return rule.Name, true
		}
	}
	if r.ignore != nil && r.ignore.MatchesPath(path.String()) {
		return "ignore file", true
	}
	return "", false
}

// Protected returns the name of the first protection rule matching p.
func (r *Rules) Protected(p string) (string, bool) {
	path := ParsePath(p)
	if len(path.Segments) == 0 {
		return "", false
	}
	for _, rule := range r.protect {
		if rule.Match(path) {
			return rule.Name, true
		}
	}
	return "", false
}

func (r *Rules) IsExcluded(p string) bool {
	_, ok := r.Excluded(p)
	return ok
}

func (r *Rules) IsProtected(p string) bool {
	_, ok := r.Protected(p)
	return ok
}
