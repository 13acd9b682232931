// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mflynn-lanl/super-duper-contig-filter/assembly"
	"github.com/mflynn-lanl/super-duper-contig-filter/workspace"
)

func (a *app) importCmd() *cobra.Command {
	var (
		q            assembly.EntrezQuery
		wsName, name string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Retrieve nucleotide records from NCBI Entrez and store them as an assembly.",
		Long: `import searches the NCBI nuccore database with --query, downloads the
matching records as FASTA into the scratch directory, and stores them as
an assembly object.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tmp, err := os.CreateTemp(a.cfg.Scratch, "entrez-*.fna")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())
			defer tmp.Close()

			n, err := assembly.FetchEntrez(tmp, q, func(start, max, count int) {
				a.log.Info("retrieving records", "start", start, "max", max, "count", count)
			})
			if err != nil {
				return err
			}
			a.log.Info("retrieved records", "count", n)
			if _, err := tmp.Seek(0, io.SeekStart); err != nil {
				return err
			}

			ws, err := a.openStore()
			if err != nil {
				return err
			}
			defer ws.Close()
			info, err := assembly.New(ws).SaveFromFasta(workspace.WithUser(cmd.Context(), q.Email), tmp, wsName, name)
			if err != nil {
				return err
			}
			a.log.Info("saved assembly", "name", info.Name, "ref", info.Ref, "size", info.Size)
			fmt.Fprintln(cmd.OutOrStdout(), info.Ref)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.Query, "query", "", "Entrez search term")
	f.StringVar(&q.Email, "email", "", "email address sent to NCBI")
	f.IntVar(&q.RetMax, "retmax", 500, "number of records retrieved per request")
	f.IntVar(&q.Retries, "retry", 5, "number of attempts to retrieve each batch")
	f.StringVar(&wsName, "workspace", "", "destination workspace")
	f.StringVar(&name, "name", "", "assembly object name")
	for _, req := range []string{"query", "email", "workspace", "name"} {
		cmd.MarkFlagRequired(req)
	}
	return cmd
}
