// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package server

import (
	"context"

	"github.com/mflynn-lanl/super-duper-contig-filter/assembly"
	"github.com/mflynn-lanl/super-duper-contig-filter/filter"
	"github.com/mflynn-lanl/super-duper-contig-filter/report"
	"github.com/mflynn-lanl/super-duper-contig-filter/workspace"
)

// Service identification reported by the status method.
var (
	Version       = "0.0.1"
	GitURL        = "https://github.com/mflynn-lanl/super-duper-contig-filter"
	GitCommitHash = ""
)

// MethodContext holds the caller's identity and the provenance of
// the current call.
type MethodContext struct {
	Token         string
	UserID        string
	Authenticated bool
	Provenance    []workspace.ProvenanceAction
}

// Output is the result of a contig filter call.
type Output struct {
	filter.Result
	FilteredAssemblyRef string `json:"filtered_assembly_ref"`
	report.Info
}

// Status is the result of the status method.
type Status struct {
	State         string `json:"state"`
	Message       string `json:"message"`
	Version       string `json:"version"`
	GitURL        string `json:"git_url"`
	GitCommitHash string `json:"git_commit_hash"`
}

// Impl implements the ContigFilter service methods.
type Impl struct {
	ws         workspace.Store
	assemblies *assembly.Util
}

// NewImpl returns an Impl storing assemblies and reports in ws.
func NewImpl(ws workspace.Store) *Impl {
	return &Impl{ws: ws, assemblies: assembly.New(ws)}
}

// RunContigFilter removes contigs shorter than min_length.
func (im *Impl) RunContigFilter(ctx context.Context, mc *MethodContext, params map[string]interface{}) ([]Output, error) {
	p, err := filter.ParseParams(params, false)
	if err != nil {
		return nil, err
	}
	return im.run(ctx, mc, p)
}

// RunContigFilterMax removes contigs shorter than min_length or longer
// than max_length.
func (im *Impl) RunContigFilterMax(ctx context.Context, mc *MethodContext, params map[string]interface{}) ([]Output, error) {
	p, err := filter.ParseParams(params, true)
	if err != nil {
		return nil, err
	}
	return im.run(ctx, mc, p)
}

func (im *Impl) run(ctx context.Context, mc *MethodContext, p filter.Params) ([]Output, error) {
	ctx = workspace.WithUser(ctx, mc.UserID)
	prov := make([]workspace.ProvenanceAction, len(mc.Provenance))
	copy(prov, mc.Provenance)
	if len(prov) != 0 {
		prov[0].InputRefs = []string{p.AssemblyInputRef}
	}
	ctx = workspace.WithProvenance(ctx, prov)

	a, err := im.assemblies.Get(ctx, p.AssemblyInputRef)
	if err != nil {
		return nil, err
	}
	contigs, err := a.Sequences()
	if err != nil {
		return nil, err
	}
	kept, res := filter.Filter(contigs, p.Bounds)

	out := Output{Result: res}
	if len(kept) != 0 {
		info, err := im.assemblies.SaveAssembly(ctx, kept, p.WorkspaceName, a.AssemblyID+".filtered")
		if err != nil {
			return nil, err
		}
		out.FilteredAssemblyRef = info.Ref.String()
	}
	out.Info, err = report.Create(ctx, im.ws, p.WorkspaceName, report.Summary{
		Result:      res,
		Bounds:      p.Bounds,
		FilteredRef: out.FilteredAssemblyRef,
		Lengths:     filter.Lengths(kept),
	})
	if err != nil {
		return nil, err
	}
	return []Output{out}, nil
}

// Status reports the state of the service.
func (im *Impl) Status(ctx context.Context, mc *MethodContext) (Status, error) {
	return Status{
		State:         "OK",
		Version:       Version,
		GitURL:        GitURL,
		GitCommitHash: GitCommitHash,
	}, nil
}
