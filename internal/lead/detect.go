package lead

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// MatcherKind selects how a Pattern is evaluated.
type MatcherKind string

const (
	KindRegex     MatcherKind = "regex"
	KindSubstring MatcherKind = "substring"
)

// Pattern is one entry of the lead phrase list.
type Pattern struct {
	Name    string      `yaml:"name"`
	Kind    MatcherKind `yaml:"kind"`
	Pattern string      `yaml:"pattern"`
}

// DefaultPatterns are the phrasings that invite a hand-off to a human.
var DefaultPatterns = []Pattern{
	{Name: "offer_contact", Kind: KindRegex, Pattern: `would you like.*(contact|call|email)`},
	{Name: "team_reach_out", Kind: KindRegex, Pattern: `our team.*(reach|contact)`},
	{Name: "leave_details", Kind: KindRegex, Pattern: `leave.*details`},
	{Name: "personal_consultant", Kind: KindRegex, Pattern: `personal.*consultant`},
	{Name: "connect_sales", Kind: KindRegex, Pattern: `connect.*with.*sales`},
}

type matcher struct {
	name   string
	re     *regexp.Regexp
	needle string
}

func (m matcher) match(lower, raw string) bool {
	if m.re != nil {
		return m.re.MatchString(raw)
	}
	return strings.Contains(lower, m.needle)
}

// Detector decides whether a bot reply should be followed by the lead form.
// Matching is case-insensitive and the first matching pattern wins.
type Detector struct {
	matchers []matcher
}

func NewDetector(patterns []Pattern) (*Detector, error) {
	d := &Detector{matchers: make([]matcher, 0, len(patterns))}
	for i, p := range patterns {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("pattern_%d", i+1)
		}
		if strings.TrimSpace(p.Pattern) == "" {
			return nil, fmt.Errorf("lead pattern %s is empty", name)
		}
		switch p.Kind {
		case KindRegex, "":
			re, err := regexp.Compile("(?i)" + p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("lead pattern %s: %w", name, err)
			}
			d.matchers = append(d.matchers, matcher{name: name, re: re})
		case KindSubstring:
			d.matchers = append(d.matchers, matcher{name: name, needle: strings.ToLower(p.Pattern)})
		default:
			return nil, fmt.Errorf("lead pattern %s: unknown kind %q", name, p.Kind)
		}
	}
	return d, nil
}

// DefaultDetector uses DefaultPatterns.
func DefaultDetector() *Detector {
	d, err := NewDetector(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return d
}

// Match reports whether any pattern matches anywhere in reply.
func (d *Detector) Match(reply string) bool {
	_, ok := d.MatchName(reply)
	return ok
}

// MatchName also returns the name of the first matching pattern.
func (d *Detector) MatchName(reply string) (string, bool) {
	if d == nil || reply == "" {
		return "", false
	}
	lower := strings.ToLower(reply)
	for _, m := range d.matchers {
		if m.match(lower, reply) {
			return m.name, true
		}
	}
	return "", false
}

type patternFile struct {
	Patterns []Pattern `yaml:"patterns"`
}

// LoadDetector reads a YAML pattern list:
//
//	patterns:
//	  - name: offer_contact
//	    kind: regex
//	    pattern: "would you like.*(contact|call|email)"
//
// An empty path yields DefaultDetector.
func LoadDetector(path string) (*Detector, error) {
	if path == "" {
		return DefaultDetector(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf patternFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(pf.Patterns) == 0 {
		return nil, fmt.Errorf("%s defines no patterns", path)
	}
	return NewDetector(pf.Patterns)
}
