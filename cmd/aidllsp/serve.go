package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	aidldebug "github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/logger"
	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/metrics"
	"github.com/corymhall/aidllsp/rpc"
	"github.com/corymhall/aidllsp/server"
)

func runServe(ctx context.Context, opts *rootOptions) error {
	sink, closeSink, err := openLog(opts.logFile)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger.ProgramLevel.Set(level)
	handler := logger.NewHandler(sink, logger.ProgramLevel)
	log := slog.New(handler)
	slog.SetDefault(log)
	ctx = aidldebug.WithLogger(ctx, log)

	if opts.metricsAddr != "" {
		addr, err := metrics.Serve(ctx, opts.metricsAddr)
		if err != nil {
			return err
		}
		log.Info("serving metrics", "addr", addr.String())
	}

	stream := rpc.NewHeaderStream(os.Stdin, os.Stdout)
	conn := rpc.NewConn(stream)
	client := lsp.ClientDispatcher(conn)
	handler.SetClient(client)

	srv := server.New(client, logger.ProgramLevel)
	if err := conn.Run(ctx, srv.Handler()); err != nil {
		log.Error("connection failed", "error", err)
	}
	handler.Close()
	closeSink()
	os.Exit(srv.ExitCode())
	return nil
}

// openLog returns the sink of the server logs. Stdout carries the protocol,
// so logs go to stderr unless a file is given.
func openLog(filename string) (io.Writer, func(), error) {
	if filename == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o666)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
