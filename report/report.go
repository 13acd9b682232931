// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report stores summaries of contig filter runs as workspace
// objects.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mflynn-lanl/super-duper-contig-filter/filter"
	"github.com/mflynn-lanl/super-duper-contig-filter/workspace"
)

// Type is the workspace type of report objects.
const Type = "KBaseReport.Report"

// Report is the stored form of a filter report.
type Report struct {
	TextMessage    string          `json:"text_message"`
	ObjectsCreated []CreatedObject `json:"objects_created"`
	Stats          filter.Stats    `json:"stats"`

	// HistogramPNG is a PNG rendering of the retained
	// contig length distribution.
	HistogramPNG []byte `json:"histogram_png,omitempty"`
}

// CreatedObject names an object produced by the reported run.
type CreatedObject struct {
	Ref         string `json:"ref"`
	Description string `json:"description"`
}

// Summary is the outcome of a filter run to be reported.
type Summary struct {
	Result      filter.Result
	Bounds      filter.Bounds
	FilteredRef string // Empty if no assembly was saved.
	Lengths     []int  // Lengths of the retained contigs.
}

// Info identifies a stored report.
type Info struct {
	Name string `json:"report_name"`
	Ref  string `json:"report_ref"`
}

// Message returns the text message for a filter result.
func Message(r filter.Result) string {
	return fmt.Sprintf("Filtered assembly to %d contigs out of %d", r.NRemaining, r.NInitial)
}

// Create builds a report from s and saves it in the named workspace.
func Create(ctx context.Context, ws workspace.Store, workspaceName string, s Summary) (Info, error) {
	r := Report{
		TextMessage: Message(s.Result),
		Stats:       filter.Summarize(s.Lengths),
	}
	if s.FilteredRef != "" {
		r.ObjectsCreated = []CreatedObject{{Ref: s.FilteredRef, Description: "Filtered contigs"}}
	}
	if len(s.Lengths) != 0 {
		var err error
		r.HistogramPNG, err = Histogram(s.Lengths, s.Bounds)
		if err != nil {
			return Info{}, err
		}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return Info{}, err
	}
	name := "ContigFilter_report_" + uuid.New().String()
	info, err := ws.SaveObject(ctx, workspaceName, workspace.Object{Type: Type, Name: name, Data: data})
	if err != nil {
		return Info{}, fmt.Errorf("report: save %s: %w", name, err)
	}
	return Info{Name: name, Ref: info.Ref.String()}, nil
}

// Histogram returns a PNG histogram of contig lengths.
func Histogram(lengths []int, b filter.Bounds) ([]byte, error) {
	v := make(plotter.Values, len(lengths))
	for i, l := range lengths {
		v[i] = float64(l)
	}
	h, err := plotter.NewHist(v, 16)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Contig lengths %v", b)
	p.X.Label.Text = "length (bp)"
	p.Y.Label.Text = "contigs"
	p.Add(h)

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return buf.Bytes(), nil
}
