// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assembly

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/biogo/ncbi/entrez"
)

const (
	entrezDB   = "nuccore"
	entrezTool = "contigfilter"
)

// EntrezQuery describes a retrieval of nucleotide FASTA records
// from NCBI Entrez.
type EntrezQuery struct {
	Query   string
	Email   string // Required by NCBI.
	RetMax  int    // Records per request.
	Retries int    // Attempts per request.
}

// Progress is called before each batch request is made.
type Progress func(start, max, count int)

// FetchEntrez retrieves the records matching q and writes them to w,
// returning the number of records reported by the search. Each batch
// is buffered and written only once it has been retrieved completely.
func FetchEntrez(w io.Writer, q EntrezQuery, progress Progress) (int, error) {
	if q.Email == "" {
		return 0, errors.New("assembly: entrez requires an email address")
	}
	if q.Query == "" {
		return 0, errors.New("assembly: empty entrez query")
	}
	if q.RetMax <= 0 {
		q.RetMax = 500
	}
	if q.Retries <= 0 {
		q.Retries = 1
	}

	h := entrez.History{}
	s, err := entrez.DoSearch(entrezDB, q.Query, nil, &h, entrezTool, q.Email)
	if err != nil {
		return 0, fmt.Errorf("assembly: entrez search: %w", err)
	}

	var (
		buf bytes.Buffer
		p   = &entrez.Parameters{RetMax: q.RetMax, RetType: "fasta", RetMode: "text"}
	)
	for p.RetStart = 0; p.RetStart < s.Count; p.RetStart += p.RetMax {
		if progress != nil {
			progress(p.RetStart, p.RetMax, s.Count)
		}
		for t := 0; t < q.Retries; t++ {
			buf.Reset()
			var r io.ReadCloser
			r, err = entrez.Fetch(entrezDB, p, entrezTool, q.Email, &h)
			if err != nil {
				continue
			}
			_, err = io.Copy(&buf, r)
			r.Close()
			if err == nil {
				break
			}
		}
		if err != nil {
			return s.Count, fmt.Errorf("assembly: exceeded %d retries at record %d: %w", q.Retries, p.RetStart, err)
		}
		if _, err := io.Copy(w, &buf); err != nil {
			return s.Count, err
		}
	}
	return s.Count, nil
}
