// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"sort"

	"github.com/biogo/biogo/seq"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds assembly metrics. All lengths are in bp.
type Stats struct {
	NumContigs int     `json:"num_contigs"`
	Size       int     `json:"dna_size"`
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	Mean       float64 `json:"mean"`
	N50        int     `json:"n50"`
}

// Lengths returns the lengths of contigs.
func Lengths(contigs []seq.Sequence) []int {
	l := make([]int, len(contigs))
	for i, c := range contigs {
		l[i] = c.Len()
	}
	return l
}

// Summarize returns the metrics of an assembly with the given contig
// lengths. The zero Stats is returned for an empty assembly.
func Summarize(lengths []int) Stats {
	if len(lengths) == 0 {
		return Stats{}
	}
	f := make([]float64, len(lengths))
	for i, l := range lengths {
		f[i] = float64(l)
	}
	s := Stats{
		NumContigs: len(lengths),
		Size:       int(floats.Sum(f)),
		Min:        int(floats.Min(f)),
		Max:        int(floats.Max(f)),
		Mean:       stat.Mean(f, nil),
	}

	// Walk lengths in descending order until half the
	// assembly is covered.
	sorted := append([]int(nil), lengths...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	var csum int
	for _, l := range sorted {
		csum += l
		if 2*csum >= s.Size {
			s.N50 = l
			break
		}
	}
	return s
}
