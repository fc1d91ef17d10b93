package rest

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/Semior001/unpaywall/app/reader"
	"github.com/microcosm-cc/bluemonday"
)

// Format of the article in the response.
type Format string

// Supported formats.
const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat parses the format, empty string means json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatMarkdown, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// policy allows only the markup the extractor emits.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("loading").Matching(bluemonday.SpaceSeparatedTokens).OnElements("img")
	p.AllowElements("div", "mark", "figcaption")
	return p
}()

// Sanitize cleans up the article content before it leaves the service.
func Sanitize(res reader.Result) reader.Result {
	res.Details.HTMLContent = policy.Sanitize(res.Details.HTMLContent)
	return res
}

// Markdown renders the article as a markdown document.
func Markdown(res reader.Result) (string, error) {
	body, err := htmltomarkdown.ConvertString(policy.Sanitize(res.Details.HTMLContent),
		converter.WithDomain(res.Source.URL))
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}

	sb := &strings.Builder{}
	if res.Details.Title != "" {
		fmt.Fprintf(sb, "# %s\n\n", res.Details.Title)
	}
	if byline := res.Details.Byline(); byline != "" {
		fmt.Fprintf(sb, "_%s_\n\n", byline)
	}
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")

	return sb.String(), nil
}

// Text renders the article as a plain text.
func Text(res reader.Result) string {
	sb := &strings.Builder{}
	if res.Details.Title != "" {
		sb.WriteString(res.Details.Title)
		sb.WriteString("\n\n")
	}
	if byline := res.Details.Byline(); byline != "" {
		sb.WriteString(byline)
		sb.WriteString("\n\n")
	}
	sb.WriteString(res.Details.TextContent)
	sb.WriteString("\n")
	return sb.String()
}
