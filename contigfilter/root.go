// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mflynn-lanl/super-duper-contig-filter/config"
	"github.com/mflynn-lanl/super-duper-contig-filter/server"
	"github.com/mflynn-lanl/super-duper-contig-filter/workspace"
)

// app holds the state shared by all subcommands.
type app struct {
	cfgPath   string
	logLevel  string
	logFormat string

	cfg config.Config
	log *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "contigfilter",
		Short:         "Filter genome assembly contigs by length.",
		Version:       server.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "deployment config file (defaults to $"+config.EnvConfig+")")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	pf.StringVar(&a.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		a.serveCmd(),
		a.filterCmd(),
		a.statsCmd(),
		a.uploadCmd(),
		a.importCmd(),
		a.workspaceCmd(),
	)
	return root
}

func (a *app) setup(w io.Writer) error {
	var err error
	a.cfg, err = config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	level := a.cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	var f log.Formatter
	switch a.logFormat {
	case "text":
		f = log.TextFormatter
	case "json":
		f = log.JSONFormatter
	default:
		return fmt.Errorf("invalid log format %q", a.logFormat)
	}
	a.log = log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       f,
		ReportTimestamp: true,
		Prefix:          "contigfilter",
	})
	return nil
}

// openStore opens the workspace named by the workspace-url setting.
func (a *app) openStore() (workspace.Store, error) {
	if a.cfg.WorkspaceURL == config.Memory {
		a.log.Warn("using in-memory workspace; objects will not persist")
		return workspace.NewMemory(), nil
	}
	return workspace.OpenSQLite(a.cfg.WorkspaceURL)
}

// openIn opens the named file, or returns r if name is empty.
func openIn(name string, r io.Reader) (io.ReadCloser, error) {
	if name == "" {
		return io.NopCloser(r), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", name, err)
	}
	return f, nil
}

// createOut creates the named file, or returns w if name is empty.
func createOut(name string, w io.Writer) (io.WriteCloser, error) {
	if name == "" {
		return nopWriteCloser{w}, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", name, err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
