package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Semior001/unpaywall/app/article"
	"github.com/Semior001/unpaywall/app/reader"
	"github.com/Semior001/unpaywall/app/rest"
	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_Mirrors(t *testing.T) {
	var p Pipeline
	_, err := flags.ParseArgs(&p, []string{"--mirrors.freedium=https://free.example/", "--mirrors.disable-webcache"})
	require.NoError(t, err)

	ms := p.mirrors()
	require.Len(t, ms, 3)

	byType := map[article.SourceType]bool{}
	for _, m := range ms {
		byType[m.Type] = m.Disabled
		if m.Type == article.SourceFreedium {
			assert.Equal(t, "https://free.example/", m.Prefix)
		}
	}

	assert.Equal(t, map[article.SourceType]bool{
		article.SourceWebcache: true,
		article.SourceArchive:  true,
		article.SourceFreedium: false,
	}, byType)
}

func TestPipeline_LoadRules(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		rs, err := Pipeline{}.loadRules()
		require.NoError(t, err)
		assert.NotZero(t, rs.Version)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 42\nplatform:\n  origin: https://medium.com\n"), 0o600))

		rs, err := Pipeline{Rules: path}.loadRules()
		require.NoError(t, err)
		assert.Equal(t, 42, rs.Version)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Pipeline{Rules: filepath.Join(t.TempDir(), "nope.yaml")}.loadRules()
		assert.Error(t, err)
	})
}

func TestRead_Execute(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Plain page</title></head>` +
			`<body><article><p>Hello from the plain page.</p></article></body></html>`))
	}))
	defer ts.Close()

	t.Run("private networks are blocked by default", func(t *testing.T) {
		r := Read{Format: "text", out: &bytes.Buffer{}}
		r.Mirrors.DisableWebcache, r.Mirrors.DisableFreedium = true, true
		r.Args.URL = ts.URL + "/a"
		assert.Error(t, r.Execute(nil))
	})

	buf := &bytes.Buffer{}
	r := Read{Format: "text", out: buf}
	r.Fetch.AllowPrivate = true
	r.Args.URL = ts.URL + "/a"

	require.NoError(t, r.Execute(nil))
	assert.Contains(t, buf.String(), "Plain page")
	assert.Contains(t, buf.String(), "Hello from the plain page.")
}

func TestRead_ExecuteErrors(t *testing.T) {
	t.Run("invalid url", func(t *testing.T) {
		r := Read{Format: "text", out: &bytes.Buffer{}}
		r.Args.URL = "not a url"
		assert.Error(t, r.Execute(nil))
	})

	t.Run("unknown format", func(t *testing.T) {
		r := Read{Format: "pdf", out: &bytes.Buffer{}}
		r.Args.URL = "https://example.com"
		assert.Error(t, r.Execute(nil))
	})
}

func TestWrite(t *testing.T) {
	res := reader.Result{
		Source: article.Source{Type: article.SourceMedium, URL: "https://medium.com/a-1"},
		Details: article.Details{
			Title:       "Title",
			HTMLContent: `<div class="article-content"><p>Body <script>x()</script></p></div>`,
			TextContent: "Body",
			Author:      article.Author{Name: "Jane"},
		},
	}

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, write(buf, rest.FormatJSON, res))

		var got reader.Result
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, res.Source, got.Source)
		assert.NotContains(t, got.Details.HTMLContent, "script")
	})

	t.Run("markdown", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, write(buf, rest.FormatMarkdown, res))
		assert.Equal(t, "# Title\n\n_Jane_\n\nBody\n", buf.String())
	})

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, write(buf, rest.FormatText, res))
		assert.Equal(t, "Title\n\nJane\n\nBody\n", buf.String())
	})
}
