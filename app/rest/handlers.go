package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Semior001/unpaywall/app/article"
	"github.com/Semior001/unpaywall/app/reader"
)

const maxRequestBody = 1 << 20

type urlRequest struct {
	URL      string `json:"url"`
	Format   string `json:"format,omitempty"`
	Language string `json:"language,omitempty"`
}

func (s *Server) ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.Version != "" {
		w.Header().Set("App-Version", s.Version)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// POST /api/v1/resolve {url}
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !s.decode(w, r, &req) {
		return
	}

	src, err := s.Reader.Resolve(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, src)
}

// POST /api/v1/article {url, format}
func (s *Server) postArticle(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.article(w, r, req.URL, req.Format)
}

// GET /api/v1/article?url=...&format=json|markdown|text
func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	s.article(w, r, r.URL.Query().Get("url"), r.URL.Query().Get("format"))
}

func (s *Server) article(w http.ResponseWriter, r *http.Request, u, format string) {
	f, err := ParseFormat(format)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errResponse(r, err.Error()))
		return
	}

	res, err := s.Reader.Read(r.Context(), u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch f {
	case FormatMarkdown:
		md, err := Markdown(res)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeText(w, "text/markdown; charset=utf-8", md)
	case FormatText:
		writeText(w, "text/plain; charset=utf-8", Text(res))
	default:
		writeJSON(w, r, http.StatusOK, Sanitize(res))
	}
}

// POST /api/v1/readtime {text}
func (s *Server) readTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		ReadTime string `json:"read_time"`
	}{ReadTime: article.ReadTime(req.Text)})
}

type rewriteResponse struct {
	Source   article.Source `json:"source"`
	Title    string         `json:"title,omitempty"`
	Language string         `json:"language,omitempty"`
	Text     string         `json:"text"`
}

// POST /api/v1/summary {url}
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	s.rewrite(w, r, func(_ urlRequest, res reader.Result) (rewriteResponse, error) {
		text, err := s.Revisor.Summarize(r.Context(), res.Source, res.Details)
		return rewriteResponse{Source: res.Source, Title: res.Details.Title, Text: text}, err
	})
}

// POST /api/v1/translate {url, language}
func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	s.rewrite(w, r, func(req urlRequest, res reader.Result) (rewriteResponse, error) {
		text, err := s.Revisor.Translate(r.Context(), res.Source, res.Details, req.Language)
		return rewriteResponse{Source: res.Source, Title: res.Details.Title, Language: req.Language, Text: text}, err
	})
}

func (s *Server) rewrite(w http.ResponseWriter, r *http.Request, fn func(urlRequest, reader.Result) (rewriteResponse, error)) {
	if s.Revisor == nil {
		s.writeError(w, r, errNoRevisor)
		return
	}

	var req urlRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.Reader.Read(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := fn(req, res)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("rewrite article: %w", err))
		return
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errResponse(r, "malformed request body"))
		return false
	}
	return true
}

func writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
