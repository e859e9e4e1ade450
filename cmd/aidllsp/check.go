package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/corymhall/aidllsp/config"
	aidldebug "github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/file"
	"github.com/corymhall/aidllsp/logger"
	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/server"
	"github.com/spf13/cobra"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir]",
		Short: "Index a directory and print its diagnostics",
		Long: `check indexes the .aidl files below dir (the current directory by
default) the way the server does and prints every diagnostic. It exits with a
non-zero status if any error was found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runCheck(cmd.Context(), opts, dir, cmd.OutOrStdout())
		},
	}
}

// printer is a server.Publisher writing diagnostics in a
// file:line:column: severity: message format.
type printer struct {
	out    io.Writer
	base   string
	errors int
}

func (p *printer) PublishDiagnostics(_ context.Context, params *lsp.PublishDiagnosticsParams) error {
	path := params.URI.Path()
	if rel, err := filepath.Rel(p.base, path); err == nil {
		path = rel
	}
	for _, d := range params.Diagnostics {
		severity := "warning"
		if d.Severity == lsp.SeverityError {
			severity = "error"
			p.errors++
		}
		if _, err := fmt.Fprintf(p.out, "%s:%d:%d: %s: %s\n",
			path, d.Range.Start.Line+1, d.Range.Start.Character+1, severity, d.Message); err != nil {
			return err
		}
	}
	return nil
}

func runCheck(ctx context.Context, opts *rootOptions, dir string, out io.Writer) error {
	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ctx = aidldebug.WithLogger(ctx, log)

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	base, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	p := &printer{out: out, base: base}
	ws := server.NewWorkspace(p, file.Disk{}, cfg)
	if err := ws.Index(ctx, dir); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d files, %d errors\n", ws.Len(), p.errors)
	if p.errors > 0 {
		return fmt.Errorf("found %d errors", p.errors)
	}
	return nil
}
