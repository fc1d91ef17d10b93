// Package main is an entrypoint for application
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/Semior001/unpaywall/app/cmd"
	"github.com/Semior001/unpaywall/pkg/logx"
	"github.com/jessevdk/go-flags"
)

var opts struct {
	Server   cmd.Server `command:"server" description:"run the http api and the telegram bot"`
	Read     cmd.Read   `command:"read" description:"read a single article and print it"`
	JSONLogs bool       `long:"json-logs" env:"JSON_LOGS" description:"turn on json logs"`
	Debug    bool       `long:"dbg" env:"DEBUG" description:"turn on debug mode"`
}

var version = "unknown"

func getVersion() string {
	v, ok := debug.ReadBuildInfo()
	if !ok || v.Main.Version == "(devel)" || v.Main.Version == "" {
		return version
	}
	return v.Main.Version
}

func main() {
	fmt.Fprintf(os.Stderr, "unpaywall, version: %s\n", getVersion())

	opts.Server.Version = getVersion()

	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(cmd flags.Commander, args []string) error {
		setupLog()

		if err := cmd.Execute(args); err != nil {
			slog.Error("failed to execute command", slog.Any("err", err))
			os.Exit(1)
		}

		return nil
	}

	// after failure command does not return non-zero code
	if _, err := p.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		} else {
			slog.Error("failed to parse flags", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func setupLog() {
	handlerOpts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if opts.Debug {
		handlerOpts.Level = slog.LevelDebug
		handlerOpts.AddSource = true
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	if opts.JSONLogs {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	}

	slog.SetDefault(slog.New(&logx.Chain{
		Middleware: []logx.Middleware{logx.RequestID},
		Handler:    handler,
	}))
}
