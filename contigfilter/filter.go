// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/mflynn-lanl/super-duper-contig-filter/assembly"
	"github.com/mflynn-lanl/super-duper-contig-filter/filter"
)

func (a *app) filterCmd() *cobra.Command {
	var (
		in, out string
		b       filter.Bounds
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Write the sequences of a FASTA file with lengths within bounds.",
		Long: `filter reads multi-FASTA DNA sequences and writes those at least
--min bp long, and no more than --max bp long if --max is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b.HasMax = cmd.Flags().Changed("max")
			if err := b.Validate(); err != nil {
				return err
			}
			r, err := openIn(in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer r.Close()
			w, err := createOut(out, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			res, err := filter.FilterFasta(r, w, b)
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			a.log.Info("filtered contigs", "bounds", b,
				"initial", res.NInitial, "removed", res.NRemoved, "remaining", res.NRemaining)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in, "in", "", "input FASTA file (defaults to stdin)")
	f.StringVar(&out, "out", "", "output FASTA file (defaults to stdout)")
	f.IntVar(&b.Min, "min", 0, "minimum sequence length (bp)")
	f.IntVar(&b.Max, "max", 0, "maximum sequence length (bp)")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	var in, ref string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print contig count, assembly size, min, max, mean and N50.",
		Long: `stats summarises a multi-FASTA DNA file, or with --ref an assembly
held in the workspace, printing the statistics as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lengths, err := a.lengths(cmd, in, ref)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "\t")
			return enc.Encode(filter.Summarize(lengths))
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input FASTA file (defaults to stdin)")
	cmd.Flags().StringVar(&ref, "ref", "", "workspace reference of an assembly")
	cmd.MarkFlagsMutuallyExclusive("in", "ref")
	return cmd
}

func (a *app) lengths(cmd *cobra.Command, in, ref string) ([]int, error) {
	if ref != "" {
		ws, err := a.openStore()
		if err != nil {
			return nil, err
		}
		defer ws.Close()
		contigs, err := assembly.New(ws).GetContigs(cmd.Context(), ref)
		if err != nil {
			return nil, err
		}
		return filter.Lengths(contigs), nil
	}
	r, err := openIn(in, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	defer r.Close()
	contigs, err := assembly.ReadFasta(r)
	if err != nil {
		return nil, err
	}
	return filter.Lengths(contigs), nil
}
