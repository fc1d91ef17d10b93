// Package rules provides the versioned set of identifiers used by the pipeline
// to recognize the platform, detect the paywall and strip page chrome.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var defaultRules []byte

// Rules is a set of identifiers for the pipeline.
type Rules struct {
	Version  int      `yaml:"version"`
	Platform Platform `yaml:"platform"`
	Paywall  Paywall  `yaml:"paywall"`
	Strip    Strip    `yaml:"strip"`
}

// Platform describes the target publishing platform.
type Platform struct {
	Origin     string      `yaml:"origin"`
	Hosts      []string    `yaml:"hosts"`
	Signatures []Signature `yaml:"signatures"`
}

// Signature is a meta tag that identifies a page of the platform.
// Key is matched against both "property" and "name" attributes.
type Signature struct {
	Key     string `yaml:"key"`
	Content string `yaml:"content"`
}

// Paywall lists the indicators of a paywalled article.
type Paywall struct {
	Markers  []string `yaml:"markers"`
	Patterns []string `yaml:"patterns"`

	compiled []*regexp.Regexp
}

// Strip lists the identifiers of the page chrome.
type Strip struct {
	Selectors   []string     `yaml:"selectors"`
	TextMarkers []TextMarker `yaml:"text_markers"`
	KeepEmpty   []string     `yaml:"keep_empty"`
}

// TextMarker is a text, which, when found in the element's own text,
// makes the element and its parent to be removed.
type TextMarker struct {
	Text  string `yaml:"text"`
	Exact bool   `yaml:"exact"`
}

// Default returns the embedded rule set.
func Default() Rules {
	r, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules are broken: %v", err))
	}
	return r
}

// Load reads the rule set from the file at path.
func Load(path string) (Rules, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	r, err := Parse(bts)
	if err != nil {
		return Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	return r, nil
}

// Parse decodes the rule set from YAML and compiles its patterns.
func Parse(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if r.Platform.Origin == "" {
		return Rules{}, fmt.Errorf("platform origin is not set")
	}
	r.Platform.Origin = strings.TrimSuffix(r.Platform.Origin, "/")

	for _, p := range r.Paywall.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return Rules{}, fmt.Errorf("compile paywall pattern %q: %w", p, err)
		}
		r.Paywall.compiled = append(r.Paywall.compiled, re)
	}

	return r, nil
}

// Matches returns true if the meta tag with the given key and content
// is one of the platform signatures.
func (p Platform) Matches(key, content string) bool {
	for _, s := range p.Signatures {
		if strings.EqualFold(s.Key, key) && strings.TrimSpace(content) == s.Content {
			return true
		}
	}
	return false
}

// OwnsHost returns true if the host belongs to the platform,
// subdomains included.
func (p Platform) OwnsHost(host string) bool {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	for _, h := range p.Hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Detect returns the first paywall indicator found in the page,
// empty string means that the page is free.
func (p Paywall) Detect(page string) string {
	for _, m := range p.Markers {
		if strings.Contains(page, m) {
			return m
		}
	}

	for _, re := range p.compiled {
		if re.MatchString(page) {
			return re.String()
		}
	}

	return ""
}

// Match returns true if the element's own text matches the marker.
func (m TextMarker) Match(text string) bool {
	text = strings.TrimSpace(text)
	if m.Exact {
		return text == m.Text
	}
	return strings.Contains(text, m.Text)
}
