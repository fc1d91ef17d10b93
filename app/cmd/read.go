package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Semior001/unpaywall/app/reader"
	"github.com/Semior001/unpaywall/app/rest"
)

// Read is a command to read a single article and print it.
type Read struct {
	Pipeline

	Format  string        `long:"format" short:"f" choice:"json" choice:"markdown" choice:"text" default:"json" description:"output format"`
	Timeout time.Duration `long:"timeout" default:"2m" description:"timeout to read the article"`

	Args struct {
		URL string `positional-arg-name:"url" description:"link to the article"`
	} `positional-args:"yes" required:"yes"`

	out io.Writer
}

// Execute runs the command.
func (r Read) Execute(_ []string) error {
	lg := slog.Default()

	format, err := rest.ParseFormat(r.Format)
	if err != nil {
		return err
	}

	svc, err := r.newReader(lg, reader.Opts{})
	if err != nil {
		return fmt.Errorf("make reader: %w", err)
	}

	if r.Timeout <= 0 {
		r.Timeout = 2 * time.Minute
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	res, err := svc.Read(ctx, r.Args.URL)
	if err != nil {
		return fmt.Errorf("read article: %w", err)
	}

	if r.out == nil {
		r.out = os.Stdout
	}

	return write(r.out, format, res)
}

func write(w io.Writer, format rest.Format, res reader.Result) error {
	var out string

	switch format {
	case rest.FormatJSON:
		bts, err := json.MarshalIndent(rest.Sanitize(res), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal article: %w", err)
		}
		out = string(bts) + "\n"
	case rest.FormatMarkdown:
		md, err := rest.Markdown(res)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		out = md
	default:
		out = rest.Text(res)
	}

	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write article: %w", err)
	}

	return nil
}
