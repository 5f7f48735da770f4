package script

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// PlaceholderID marks the stand-in role returned when nothing was recognized.
const PlaceholderID = "placeholder"

// Placeholder is the single role returned by Match when no catalog role was
// found in the text.
func Placeholder() Role {
	return Role{
		ID:      PlaceholderID,
		Name:    "未识别出角色",
		Team:    TeamTownsfolk,
		Ability: "请尝试手动添加角色，或检查图片清晰度。",
	}
}

// IsPlaceholder reports whether roles is the "nothing recognized" result.
func IsPlaceholder(roles []Role) bool {
	return len(roles) == 1 && roles[0].ID == PlaceholderID
}

var newSuffix = func() string { return uuid.NewString() }

// Matcher finds catalog roles inside noisy recognized text.
type Matcher struct {
	roles    []Role
	patterns []*regexp.Regexp
}

// NewMatcher compiles one whitespace-tolerant pattern per catalog role.
// Duplicate role ids keep their first occurrence.
func NewMatcher(catalog []Role) *Matcher {
	m := &Matcher{}
	seen := make(map[string]bool, len(catalog))
	for _, r := range catalog {
		if r.ID == "" || r.ID == PlaceholderID || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		m.roles = append(m.roles, r)
		m.patterns = append(m.patterns, spacedPattern(r.Name))
	}
	return m
}

// Roles returns the deduplicated catalog the matcher searches.
func (m *Matcher) Roles() []Role { return m.roles }

// spacedPattern matches name with any run of whitespace between characters,
// so "洗衣妇" also matches "洗 衣\n妇". Empty names compile to nil.
func spacedPattern(name string) *regexp.Regexp {
	name = norm.NFKC.String(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	parts := make([]string, 0, len(name))
	for _, r := range name {
		if r == ' ' {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	return regexp.MustCompile(`(?i)` + strings.Join(parts, `\s*`))
}

// Match returns the catalog roles found in text, each at most once, in catalog
// order, with ids rewritten so the copies can live in a new script. When no
// role is found the result is the single Placeholder role.
func (m *Matcher) Match(text string) []Role {
	text = norm.NFKC.String(text)
	lower := strings.ToLower(text)
	var found []Role
	for i, r := range m.roles {
		if !m.matches(i, text, lower) {
			continue
		}
		r.ID = "imported_" + r.ID + "_" + newSuffix()
		found = append(found, r)
	}
	if len(found) == 0 {
		return []Role{Placeholder()}
	}
	return found
}

// matches tries the name pattern, then the id spelled with spaces. Roles
// without a name never match.
func (m *Matcher) matches(i int, text, lower string) bool {
	re := m.patterns[i]
	if re == nil {
		return false
	}
	if re.MatchString(text) {
		return true
	}
	id := strings.ReplaceAll(strings.ToLower(m.roles[i].ID), "_", " ")
	return strings.Contains(lower, id)
}

// Match is a one-shot NewMatcher(catalog).Match(text).
func Match(text string, catalog []Role) []Role {
	return NewMatcher(catalog).Match(text)
}
