package article

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "empty", in: "", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
		{name: "not a url", in: "not a url", wantErr: true},
		{name: "relative", in: "/a/b", wantErr: true},
		{name: "ftp", in: "ftp://x.com/a", wantErr: true},
		{name: "no host", in: "https:///a", wantErr: true},
		{name: "valid", in: "https://x.com/a"},
		{name: "valid with query", in: "https://medium.com/@author/free-article-123?source=rss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.in)
			if tt.wantErr {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
				assert.NotEmpty(t, verr.Error())
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestReadTime(t *testing.T) {
	words := func(n int) string { return strings.TrimSpace(strings.Repeat("word ", n)) }

	assert.Equal(t, "0 min read", ReadTime())
	assert.Equal(t, "0 min read", ReadTime(""))
	assert.Equal(t, "0 min read", ReadTime("  \n\t "))
	assert.Equal(t, "1 min read", ReadTime("hello"))
	assert.Equal(t, "1 min read", ReadTime(words(200)))
	assert.Equal(t, "2 min read", ReadTime(words(201)))
	assert.Equal(t, "2 min read", ReadTime(words(400)))
	assert.Equal(t, "2 min read", ReadTime(words(150), words(150)), "joined with spaces")
	assert.Equal(t, "1 min read", ReadTime("a", "b"))
}

func TestSourceType_Valid(t *testing.T) {
	for _, st := range []SourceType{SourceMedium, SourceWebcache, SourceArchive, SourceFreedium, SourceOriginal} {
		assert.True(t, st.Valid(), st)
	}
	assert.False(t, SourceType("google").Valid())
}

func TestDetails_Byline(t *testing.T) {
	assert.Empty(t, Details{}.Byline())
	assert.Equal(t, "Jane · 5 min read", Details{
		Author:      Author{Name: "Jane"},
		Publication: Publication{ReadTime: "5 min read"},
	}.Byline())
	assert.Equal(t, "Jane · Pub · Mar 3, 2023 · 5 min read", Details{
		Author:      Author{Name: "Jane"},
		Publication: Publication{Name: "Pub", PublishDate: "Mar 3, 2023", ReadTime: "5 min read"},
	}.Byline())
}
