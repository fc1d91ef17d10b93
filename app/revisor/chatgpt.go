// Package revisor rewrites the extracted articles with the help of ChatGPT:
// summarizes and translates them.
package revisor

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"text/template"

	"github.com/Semior001/unpaywall/app/article"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/sashabaranov/go-openai"
)

var (
	//go:embed data/summary.tmpl
	summaryPrompt string
	//go:embed data/translate.tmpl
	translatePrompt string
)

var (
	summaryTmpl   = template.Must(template.New("summary").Parse(summaryPrompt))
	translateTmpl = template.Must(template.New("translate").Parse(translatePrompt))
)

var (
	// ErrTooManyTokens is returned when article is too long.
	ErrTooManyTokens = errors.New("too many tokens")
	// ErrNoLanguage is returned when the target language of the translation is not set.
	ErrNoLanguage = errors.New("target language is not set")
)

// DefaultMaxRequestTokens is a maximum number of tokens that can be sent to OpenAI.
const DefaultMaxRequestTokens = 4097

//go:generate moq -out mock_openai_client.go . OpenAIClient

// OpenAIClient is interface for OpenAI client with the possibility to mock it
type OpenAIClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatGPTOpts defines options for ChatGPT.
type ChatGPTOpts struct {
	Logger *slog.Logger
	Client *http.Client
	Token  string
	// BaseURL overrides the API address, useful for compatible services.
	BaseURL           string
	Model             string
	MaxRequestTokens  int
	MaxResponseTokens int
	CacheSize         int
}

// ChatGPT is a client to make requests to OpenAI chatgpt service.
type ChatGPT struct {
	log               *slog.Logger
	cl                OpenAIClient
	model             string
	maxRequestTokens  int
	maxResponseTokens int
	cache             cache.Cache[string, string]
}

// NewChatGPT creates new ChatGPT client.
func NewChatGPT(opts ChatGPTOpts) *ChatGPT {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Model == "" {
		opts.Model = openai.GPT3Dot5Turbo
	}
	if opts.MaxRequestTokens <= 0 {
		opts.MaxRequestTokens = DefaultMaxRequestTokens
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}

	config := openai.DefaultConfig(opts.Token)
	config.HTTPClient = opts.Client
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}

	lg := opts.Logger.With(slog.String("prefix", "chatgpt"))

	return &ChatGPT{
		log:               lg,
		cl:                &loggingClient{log: lg, cl: openai.NewClientWithConfig(config)},
		model:             opts.Model,
		maxRequestTokens:  opts.MaxRequestTokens,
		maxResponseTokens: opts.MaxResponseTokens,
		cache:             newCache(opts.CacheSize),
	}
}

func newCache(size int) cache.Cache[string, string] {
	return cache.NewCache[string, string]().
		WithLRU().
		WithMaxKeys(size)
}

// CacheStat returns cache stats.
func (s *ChatGPT) CacheStat() cache.Stats { return s.cache.Stat() }

// Summarize returns the bullet points of the article.
func (s *ChatGPT) Summarize(ctx context.Context, src article.Source, d article.Details) (string, error) {
	return s.complete(ctx, "summary:"+src.URL, summaryTmpl, d)
}

// Translate returns the text of the article, translated into the language
// with the given ISO 639-1 code.
func (s *ChatGPT) Translate(ctx context.Context, src article.Source, d article.Details, lang string) (string, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "", ErrNoLanguage
	}

	data := struct {
		Title       string
		TextContent string
		Language    string
	}{Title: d.Title, TextContent: d.TextContent, Language: lang}

	return s.complete(ctx, "translate:"+lang+":"+src.URL, translateTmpl, data)
}

func (s *ChatGPT) complete(ctx context.Context, key string, tmpl *template.Template, data any) (string, error) {
	if resp, ok := s.cache.Get(key); ok {
		return resp, nil
	}

	buf := &strings.Builder{}
	if err := tmpl.Execute(buf, data); err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	totalTokens := strings.Count(buf.String(), " ") + 1
	if totalTokens > s.maxRequestTokens {
		return "", ErrTooManyTokens
	}

	req := openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: s.maxResponseTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buf.String()},
		},
	}

	resp, err := s.cl.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	result := resp.Choices[0].Message.Content
	s.cache.Set(key, result, 0)
	return result, nil
}

type loggingClient struct {
	log *slog.Logger
	cl  OpenAIClient
}

func (l *loggingClient) CreateChatCompletion(
	ctx context.Context,
	req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	l.log.DebugContext(ctx, "sending request to chatGPT", slog.String("model", req.Model))
	resp, err := l.cl.CreateChatCompletion(ctx, req)
	l.log.DebugContext(ctx, "response received from chatGPT",
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Any("err", err))
	return resp, err
}
