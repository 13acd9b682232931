// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package filter selects the contigs of an assembly whose lengths fall
// within a closed interval.
package filter

import (
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
)

// Result holds the contig counts of a filter run.
// NInitial is always NRemoved+NRemaining.
type Result struct {
	NInitial   int `json:"n_initial_contigs"`
	NRemoved   int `json:"n_contigs_removed"`
	NRemaining int `json:"n_contigs_remaining"`
}

func (r *Result) add(keep bool) {
	r.NInitial++
	if keep {
		r.NRemaining++
	} else {
		r.NRemoved++
	}
}

// Filter returns the contigs with lengths within b, in their original
// order, and the counts of the scan. The bounds are not validated.
func Filter(contigs []seq.Sequence, b Bounds) ([]seq.Sequence, Result) {
	var (
		kept []seq.Sequence
		res  Result
	)
	for _, c := range contigs {
		keep := b.Contains(c.Len())
		res.add(keep)
		if keep {
			kept = append(kept, c)
		}
	}
	return kept, res
}

// FilterFasta reads DNA FASTA records from r and writes those with
// lengths within b to w with 60 column lines.
func FilterFasta(r io.Reader, w io.Writer, b Bounds) (Result, error) {
	var res Result
	if err := b.Validate(); err != nil {
		return res, err
	}
	fw := fasta.NewWriter(w, 60)
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		s := sc.Seq()
		keep := b.Contains(s.Len())
		res.add(keep)
		if !keep {
			continue
		}
		if _, err := fw.Write(s); err != nil {
			return res, err
		}
	}
	return res, sc.Error()
}
