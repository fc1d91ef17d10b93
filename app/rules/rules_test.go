package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	r := Default()
	assert.Equal(t, "https://medium.com", r.Platform.Origin)
	assert.NotEmpty(t, r.Strip.Selectors)
	assert.NotEmpty(t, r.Strip.TextMarkers)
	assert.Contains(t, r.Strip.KeepEmpty, "picture")
	assert.Len(t, r.Paywall.compiled, len(r.Paywall.Patterns))
}

func TestPlatform_Matches(t *testing.T) {
	p := Default().Platform
	assert.True(t, p.Matches("og:site_name", "Medium"))
	assert.True(t, p.Matches("twitter:site", "@Medium"))
	assert.False(t, p.Matches("og:site_name", "Substack"))
	assert.False(t, p.Matches("og:title", "Medium"))
}

func TestPlatform_OwnsHost(t *testing.T) {
	p := Default().Platform
	assert.True(t, p.OwnsHost("medium.com"))
	assert.True(t, p.OwnsHost("www.medium.com"))
	assert.True(t, p.OwnsHost("betterprogramming.medium.com"))
	assert.False(t, p.OwnsHost("notmedium.com"))
}

func TestPaywall_Detect(t *testing.T) {
	p := Default().Paywall
	assert.Empty(t, p.Detect("<html><body><p>free article</p></body></html>"))
	assert.Equal(t, "Member-only story", p.Detect("<div><span>Member-only story</span></div>"))
	assert.NotEmpty(t, p.Detect(`<p>to keep reading <a href="/plans" class="x">  Upgrade now </a></p>`))
}

func TestTextMarker_Match(t *testing.T) {
	exact := TextMarker{Text: "Follow", Exact: true}
	assert.True(t, exact.Match("  Follow \n"))
	assert.False(t, exact.Match("Follow these steps to build it"))

	contains := TextMarker{Text: "Member-only story"}
	assert.True(t, contains.Match("★ Member-only story"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: 42
platform:
  origin: https://example.com/
  hosts: [example.com]
paywall:
  patterns: ['locked\s+story']
strip:
  selectors: ['.ad']
`), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, r.Version)
	assert.Equal(t, "https://example.com", r.Platform.Origin)
	assert.NotEmpty(t, r.Paywall.Detect("this is a locked  story"))

	require.NoError(t, os.WriteFile(path, []byte("platform:\n  origin: x\npaywall:\n  patterns: ['(']\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
