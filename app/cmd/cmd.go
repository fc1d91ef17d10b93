// Package cmd contains commands for the application.
package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Semior001/unpaywall/app/article"
	"github.com/Semior001/unpaywall/app/extractor"
	"github.com/Semior001/unpaywall/app/fetcher"
	"github.com/Semior001/unpaywall/app/reader"
	"github.com/Semior001/unpaywall/app/resolver"
	"github.com/Semior001/unpaywall/app/rules"
)

// Pipeline defines the options of the article pipeline, shared by commands.
type Pipeline struct {
	Rules string `long:"rules" env:"RULES" description:"path to the yaml rule set, embedded rules are used if empty"`

	Fetch struct {
		Timeout        time.Duration `long:"timeout" env:"TIMEOUT" default:"15s" description:"timeout of a single request"`
		UserAgent      string        `long:"user-agent" env:"USER_AGENT" description:"user agent of the browser-like requests"`
		MaxBodySize    int64         `long:"max-body-size" env:"MAX_BODY_SIZE" default:"16777216" description:"max size of the page in bytes"`
		FingerprintTLS bool          `long:"fingerprint-tls" env:"FINGERPRINT_TLS" description:"mimic the TLS handshake of a browser"`
		AllowPrivate   bool          `long:"allow-private" env:"ALLOW_PRIVATE" description:"allow requests to loopback and private networks"`
	} `group:"fetch" namespace:"fetch" env-namespace:"FETCH"`

	Mirrors struct {
		Webcache        string `long:"webcache" env:"WEBCACHE" default:"https://webcache.googleusercontent.com/search?q=cache:" description:"webcache mirror prefix"`
		DisableWebcache bool   `long:"disable-webcache" env:"DISABLE_WEBCACHE" description:"skip the webcache mirror"`
		Freedium        string `long:"freedium" env:"FREEDIUM" default:"https://freedium.cfd/" description:"freedium mirror prefix"`
		DisableFreedium bool   `long:"disable-freedium" env:"DISABLE_FREEDIUM" description:"skip the freedium mirror"`
		Archive         string `long:"archive" env:"ARCHIVE" default:"https://archive.ph/" description:"archive mirror prefix"`
		EnableArchive   bool   `long:"enable-archive" env:"ENABLE_ARCHIVE" description:"try the archive mirror"`
	} `group:"mirrors" namespace:"mirrors" env-namespace:"MIRRORS"`

	Cache struct {
		TTL      time.Duration `long:"ttl" env:"TTL" default:"15m" description:"time to keep read articles"`
		Size     int           `long:"size" env:"SIZE" default:"100" description:"max amount of articles in memory"`
		Disabled bool          `long:"disabled" env:"DISABLED" description:"read articles from scratch every time"`
	} `group:"cache" namespace:"cache" env-namespace:"CACHE"`
}

// mirrors returns the mirrors in the order of priority.
func (p Pipeline) mirrors() []resolver.Mirror {
	ms := resolver.DefaultMirrors()
	for i := range ms {
		switch ms[i].Type {
		case article.SourceWebcache:
			ms[i].Prefix, ms[i].Disabled = p.Mirrors.Webcache, p.Mirrors.DisableWebcache
		case article.SourceFreedium:
			ms[i].Prefix, ms[i].Disabled = p.Mirrors.Freedium, p.Mirrors.DisableFreedium
		case article.SourceArchive:
			ms[i].Prefix, ms[i].Disabled = p.Mirrors.Archive, !p.Mirrors.EnableArchive
		}
	}
	return ms
}

func (p Pipeline) loadRules() (rules.Rules, error) {
	if p.Rules == "" {
		return rules.Default(), nil
	}

	r, err := rules.Load(p.Rules)
	if err != nil {
		return rules.Rules{}, fmt.Errorf("load rules: %w", err)
	}

	return r, nil
}

// newReader assembles the pipeline, opts are completed with
// resolver, extractor and fetchers.
func (p Pipeline) newReader(lg *slog.Logger, opts reader.Opts) (*reader.Service, error) {
	rs, err := p.loadRules()
	if err != nil {
		return nil, err
	}

	lg.Info("rules loaded", slog.Int("version", rs.Version), slog.String("path", p.Rules))

	fetcherOpts := func(profile fetcher.Profile) fetcher.Opts {
		return fetcher.Opts{
			Profile:        profile,
			UserAgent:      p.Fetch.UserAgent,
			Timeout:        p.Fetch.Timeout,
			MaxBodySize:    p.Fetch.MaxBodySize,
			FingerprintTLS: p.Fetch.FingerprintTLS,
			BlockPrivate:   !p.Fetch.AllowPrivate,
			Logger:         lg.With(slog.String("prefix", "fetcher"), slog.String("profile", string(profile))),
		}
	}

	browser := fetcher.New(fetcherOpts(fetcher.ProfileBrowser))
	direct := fetcher.New(fetcherOpts(fetcher.ProfileDirect))

	opts.Logger = lg
	opts.Browser, opts.Direct = browser, direct
	opts.Resolver = resolver.New(resolver.Opts{
		Logger:         lg.With(slog.String("prefix", "resolver")),
		Browser:        browser,
		Direct:         direct,
		Rules:          rs,
		Mirrors:        p.mirrors(),
		AttemptTimeout: p.Fetch.Timeout,
	})
	opts.Extractor = extractor.New(extractor.Opts{
		Logger: lg.With(slog.String("prefix", "extractor")),
		Rules:  rs,
	})
	opts.CacheTTL = p.Cache.TTL
	opts.CacheSize = p.Cache.Size
	opts.NoCache = p.Cache.Disabled

	return reader.NewService(opts), nil
}
