// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mflynn-lanl/super-duper-contig-filter/assembly"
	"github.com/mflynn-lanl/super-duper-contig-filter/workspace"
)

func (a *app) workspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Create and delete workspaces.",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a workspace.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ws, err := a.openStore()
				if err != nil {
					return err
				}
				defer ws.Close()
				info, err := ws.CreateWorkspace(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), info.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Delete a workspace and all its objects.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ws, err := a.openStore()
				if err != nil {
					return err
				}
				defer ws.Close()
				return ws.DeleteWorkspace(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

func (a *app) uploadCmd() *cobra.Command {
	var in, wsName, name string
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Store a FASTA file as an assembly and print its reference.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				if in == "" {
					return fmt.Errorf("--name is required when reading stdin")
				}
				name = baseName(in)
			}
			r, err := openIn(in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer r.Close()

			ws, err := a.openStore()
			if err != nil {
				return err
			}
			defer ws.Close()
			info, err := assembly.New(ws).SaveFromFasta(workspace.WithUser(cmd.Context(), os.Getenv("USER")), r, wsName, name)
			if err != nil {
				return err
			}
			a.log.Info("saved assembly", "name", info.Name, "ref", info.Ref, "size", info.Size)
			fmt.Fprintln(cmd.OutOrStdout(), info.Ref)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in, "in", "", "input FASTA file (defaults to stdin)")
	f.StringVar(&wsName, "workspace", "", "destination workspace")
	f.StringVar(&name, "name", "", "assembly object name (defaults to the input base name)")
	cmd.MarkFlagRequired("workspace")
	return cmd
}

// baseName returns the file name of path without directory or extension.
func baseName(path string) string {
	b := filepath.Base(path)
	return b[:len(b)-len(filepath.Ext(b))]
}
