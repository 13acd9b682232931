// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mflynn-lanl/super-duper-contig-filter/auth"
	"github.com/mflynn-lanl/super-duper-contig-filter/server"
)

func (a *app) serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ContigFilter JSON-RPC methods.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen == "" {
				listen = a.cfg.Listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string) error {
	ws, err := a.openStore()
	if err != nil {
		return err
	}
	defer ws.Close()

	h := server.New(server.NewImpl(ws), auth.New(a.cfg.AuthServiceURL, nil), a.log)
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info("listening", "addr", addr, "workspace", a.cfg.WorkspaceURL)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err = <-errc:
	case <-ctx.Done():
		a.log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = srv.Shutdown(sctx)
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}
