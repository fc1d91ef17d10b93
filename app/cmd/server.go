package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Semior001/unpaywall/app/bot"
	"github.com/Semior001/unpaywall/app/events"
	"github.com/Semior001/unpaywall/app/reader"
	"github.com/Semior001/unpaywall/app/rest"
	"github.com/Semior001/unpaywall/app/revisor"
	"github.com/Semior001/unpaywall/app/store"
	"github.com/Semior001/unpaywall/pkg/botx"
	"github.com/Semior001/unpaywall/pkg/botx/botapi"
	"golang.org/x/sync/errgroup"
)

// Server is a command to run the HTTP API and, optionally, the telegram bot.
type Server struct {
	Pipeline

	Listen       string        `long:"listen" env:"LISTEN" default:":8080" description:"address to listen on"`
	ReadTimeout  time.Duration `long:"read-timeout" env:"READ_TIMEOUT" default:"10s" description:"timeout to read the request"`
	WriteTimeout time.Duration `long:"write-timeout" env:"WRITE_TIMEOUT" default:"2m" description:"timeout to write the response"`
	TrustProxy   bool          `long:"trust-proxy" env:"TRUST_PROXY" description:"take client addresses from X-Forwarded-For, only behind a proxy"`

	RateLimit struct {
		RPS   float64 `long:"rps" env:"RPS" default:"2" description:"requests per second per client, 0 disables the limit"`
		Burst int     `long:"burst" env:"BURST" default:"5" description:"burst of requests per client"`
	} `group:"rate-limit" namespace:"rate-limit" env-namespace:"RATE_LIMIT"`

	Store struct {
		Path          string        `long:"path" env:"PATH" description:"parent dir for bolt files, persistent cache is off if empty"`
		PurgeInterval time.Duration `long:"purge-interval" env:"PURGE_INTERVAL" default:"1h" description:"interval to drop expired articles"`
	} `group:"store" namespace:"store" env-namespace:"STORE"`

	Kafka struct {
		Brokers []string `long:"broker" env:"BROKERS" env-delim:"," description:"kafka brokers, events are off if empty"`
		Topic   string   `long:"topic" env:"TOPIC" default:"articles" description:"topic to publish events to"`
	} `group:"kafka" namespace:"kafka" env-namespace:"KAFKA"`

	OpenAI struct {
		Token     string        `long:"token" env:"TOKEN" description:"OpenAI token, summaries and translations are off if empty"`
		BaseURL   string        `long:"base-url" env:"BASE_URL" description:"OpenAI compatible API address"`
		Model     string        `long:"model" env:"MODEL" default:"gpt-3.5-turbo" description:"chat model"`
		MaxTokens int           `long:"max-tokens" env:"MAX_TOKENS" default:"1000" description:"max tokens of the response"`
		Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"5m" description:"timeout for OpenAI calls"`
	} `group:"openai" namespace:"openai" env-namespace:"OPENAI"`

	Telegram struct {
		Token    string        `long:"token" env:"TOKEN" description:"telegram token, bot is off if empty"`
		AdminIDs []string      `long:"admin-id" env:"ADMIN_IDS" env-delim:"," description:"admin chat IDs"`
		Timeout  time.Duration `long:"timeout" env:"TIMEOUT" default:"3m" description:"timeout for bot requests"`
		Workers  int           `long:"workers" env:"WORKERS" default:"10" description:"amount of bot workers"`
	} `group:"telegram" namespace:"telegram" env-namespace:"TELEGRAM"`

	Version string `no-flag:"yes"`
}

// Execute runs the command.
func (s Server) Execute(_ []string) error {
	lg := slog.Default()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	opts := reader.Opts{}

	if s.Store.Path != "" {
		bolt, err := store.NewBolt(s.Store.Path)
		if err != nil {
			return fmt.Errorf("make store: %w", err)
		}

		defer func() {
			if err := bolt.Close(); err != nil {
				lg.Error("close bolt store", slog.Any("err", err))
			}
		}()

		opts.Store = bolt
	}

	if len(s.Kafka.Brokers) > 0 {
		pub := events.NewKafka(events.KafkaOpts{
			Logger:  lg,
			Brokers: s.Kafka.Brokers,
			Topic:   s.Kafka.Topic,
		})

		defer func() {
			if err := pub.Close(); err != nil {
				lg.Error("close kafka publisher", slog.Any("err", err))
			}
		}()

		opts.Publisher = pub
	}

	svc, err := s.newReader(lg, opts)
	if err != nil {
		return fmt.Errorf("make reader: %w", err)
	}

	var rev *revisor.ChatGPT
	if s.OpenAI.Token != "" {
		rev = revisor.NewChatGPT(revisor.ChatGPTOpts{
			Logger:            lg,
			Client:            &http.Client{Timeout: s.OpenAI.Timeout},
			Token:             s.OpenAI.Token,
			BaseURL:           s.OpenAI.BaseURL,
			Model:             s.OpenAI.Model,
			MaxResponseTokens: s.OpenAI.MaxTokens,
		})
	}

	srv := &rest.Server{
		Addr:         s.Listen,
		Reader:       svc,
		Logger:       lg.With(slog.String("prefix", "rest")),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		Version:      s.Version,
		RateLimit:    rest.RateLimitOpts{RPS: s.RateLimit.RPS, Burst: s.RateLimit.Burst},
		TrustProxy:   s.TrustProxy,
	}
	if rev != nil {
		srv.Revisor = rev
	}

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case sig := <-sig:
			lg.Warn("caught signal, stopping", slog.String("signal", sig.String()))
			stop()
			return ctx.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	ewg.Go(func() error {
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("run http server: %w", err)
		}
		return nil
	})
	ewg.Go(func() error {
		purge(ctx, lg, svc, s.Store.PurgeInterval)
		return nil
	})

	if s.Telegram.Token != "" {
		ctrl, err := s.runBot(ctx, ewg, svc, rev)
		if err != nil {
			return fmt.Errorf("run bot: %w", err)
		}

		defer func() {
			if err := ctrl.NotifyAdmins(context.Background(), "bot stopped"); err != nil {
				lg.Warn("notify admins about stopped bot", slog.Any("err", err))
			}
		}()
	}

	if err := ewg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func (s Server) runBot(ctx context.Context, ewg *errgroup.Group, svc *reader.Service, rev *revisor.ChatGPT) (*bot.Ctrl, error) {
	lg := slog.Default()

	api, err := botapi.NewTelegram(lg.With(slog.String("prefix", "telegram")), s.Telegram.Token, 100)
	if err != nil {
		return nil, fmt.Errorf("make telegram controller: %w", err)
	}

	ctrl := &bot.Ctrl{
		Logger:         lg.With(slog.String("prefix", "bot")),
		Reader:         svc,
		API:            api,
		AdminIDs:       s.Telegram.AdminIDs,
		HandlerTimeout: s.Telegram.Timeout,
	}
	if rev != nil {
		ctrl.Revisor = rev
	}

	b := botx.NewBot(ctrl.Routes().Handle, api, botx.BotOpts{
		Workers: s.Telegram.Workers,
		Logger:  lg.With(slog.String("prefix", "botx")),
	})

	if err := ctrl.NotifyAdmins(ctx, "bot started"); err != nil {
		lg.WarnContext(ctx, "notify admins about started bot", slog.Any("err", err))
	}

	// api outlives the bot workers, it is stopped once they are done
	go func() {
		lg.InfoContext(ctx, "starting telegram api")
		api.Run()
		lg.WarnContext(ctx, "telegram api stopped listening for updates")
	}()

	ewg.Go(func() error {
		lg.InfoContext(ctx, "starting bot")
		b.Run(ctx)
		lg.WarnContext(ctx, "bot stopped")
		api.Stop()
		return nil
	})

	return ctrl, nil
}

// purge drops expired articles every interval until ctx is done.
func purge(ctx context.Context, lg *slog.Logger, svc *reader.Service, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := svc.PurgeExpired(ctx)
			if err != nil {
				lg.WarnContext(ctx, "failed to purge expired articles", slog.Any("err", err))
				continue
			}
			lg.DebugContext(ctx, "purged expired articles", slog.Int("removed", removed))
		}
	}
}
