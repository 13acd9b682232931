// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package assembly stores genome assemblies as workspace objects and
// loads their contigs as biogo sequences.
package assembly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"

	"github.com/mflynn-lanl/super-duper-contig-filter/workspace"
)

// Type is the workspace type of assembly objects.
const Type = "KBaseGenomeAnnotations.Assembly"

// ErrEmpty is returned when saving an assembly with no contigs.
var ErrEmpty = errors.New("assembly: no contigs")

// Assembly is the stored form of a genome assembly.
type Assembly struct {
	AssemblyID string       `json:"assembly_id"`
	NumContigs int          `json:"num_contigs"`
	DNASize    int          `json:"dna_size"`
	GCContent  float64      `json:"gc_content"`
	Contigs    []ContigInfo `json:"contigs"`
	Fasta      string       `json:"fasta"`
}

// ContigInfo summarises one contig of an Assembly.
type ContigInfo struct {
	ContigID    string  `json:"contig_id"`
	Length      int     `json:"length"`
	Description string  `json:"description,omitempty"`
	GCContent   float64 `json:"gc_content"`
}

// Util saves and loads assemblies held in a workspace.Store.
type Util struct {
	ws workspace.Store
}

// New returns a Util backed by ws.
func New(ws workspace.Store) *Util { return &Util{ws: ws} }

// GetContigs returns the contigs of the assembly at ref in their
// stored order.
func (u *Util) GetContigs(ctx context.Context, ref string) ([]seq.Sequence, error) {
	a, err := u.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return a.Sequences()
}

// Sequences returns the contigs of a.
func (a *Assembly) Sequences() ([]seq.Sequence, error) {
	return ReadFasta(strings.NewReader(a.Fasta))
}

// Get returns the assembly object at ref.
func (u *Util) Get(ctx context.Context, ref string) (*Assembly, error) {
	obj, info, err := u.ws.GetObject(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("assembly: get %s: %w", ref, err)
	}
	if obj.Type != Type {
		return nil, fmt.Errorf("assembly: object %s has type %s, not %s", info.Ref, obj.Type, Type)
	}
	var a Assembly
	if err := json.Unmarshal(obj.Data, &a); err != nil {
		return nil, fmt.Errorf("assembly: decode %s: %w", info.Ref, err)
	}
	return &a, nil
}

// SaveAssembly stores contigs as a new assembly object named name in
// the given workspace and returns its info.
func (u *Util) SaveAssembly(ctx context.Context, contigs []seq.Sequence, ws, name string) (workspace.ObjectInfo, error) {
	if len(contigs) == 0 {
		return workspace.ObjectInfo{}, ErrEmpty
	}
	a, err := newAssembly(name, contigs)
	if err != nil {
		return workspace.ObjectInfo{}, err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return workspace.ObjectInfo{}, err
	}
	info, err := u.ws.SaveObject(ctx, ws, workspace.Object{Type: Type, Name: name, Data: data})
	if err != nil {
		return workspace.ObjectInfo{}, fmt.Errorf("assembly: save %s/%s: %w", ws, name, err)
	}
	return info, nil
}

// SaveFromFasta reads DNA FASTA from r and stores it as an assembly.
func (u *Util) SaveFromFasta(ctx context.Context, r io.Reader, ws, name string) (workspace.ObjectInfo, error) {
	contigs, err := ReadFasta(r)
	if err != nil {
		return workspace.ObjectInfo{}, err
	}
	return u.SaveAssembly(ctx, contigs, ws, name)
}

func newAssembly(id string, contigs []seq.Sequence) (*Assembly, error) {
	var buf bytes.Buffer
	if err := WriteFasta(&buf, contigs); err != nil {
		return nil, err
	}
	a := &Assembly{
		AssemblyID: id,
		NumContigs: len(contigs),
		Contigs:    make([]ContigInfo, len(contigs)),
		Fasta:      buf.String(),
	}
	var gc int
	for i, c := range contigs {
		n := countGC(c)
		gc += n
		a.DNASize += c.Len()
		a.Contigs[i] = ContigInfo{
			ContigID:    c.Name(),
			Length:      c.Len(),
			Description: c.Description(),
			GCContent:   ratio(n, c.Len()),
		}
	}
	a.GCContent = ratio(gc, a.DNASize)
	return a, nil
}

func countGC(s seq.Sequence) int {
	var n int
	for i := s.Start(); i < s.End(); i++ {
		switch s.At(i).L {
		case 'G', 'C', 'g', 'c', 'S', 's':
			n++
		}
	}
	return n
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// ReadFasta returns the DNA sequences in r.
func ReadFasta(r io.Reader) ([]seq.Sequence, error) {
	var contigs []seq.Sequence
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		contigs = append(contigs, sc.Seq())
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("assembly: failed during read: %w", err)
	}
	return contigs, nil
}

// WriteFasta writes contigs to w as FASTA with 60 column lines.
func WriteFasta(w io.Writer, contigs []seq.Sequence) error {
	fw := fasta.NewWriter(w, 60)
	for _, c := range contigs {
		if _, err := fw.Write(c); err != nil {
			return fmt.Errorf("assembly: failed to write sequence %q: %w", c.Name(), err)
		}
	}
	return nil
}
