// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/check.v1"

	"github.com/mflynn-lanl/super-duper-contig-filter/filter"
	"github.com/mflynn-lanl/super-duper-contig-filter/workspace"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func (s *S) TestMessage(c *check.C) {
	c.Check(Message(filter.Result{NInitial: 3, NRemoved: 1, NRemaining: 2}), check.Equals,
		"Filtered assembly to 2 contigs out of 3")
}

func (s *S) TestHistogram(c *check.C) {
	for _, lens := range [][]int{{10, 12}, {7}, {1, 5, 5, 9, 100, 1000}} {
		png, err := Histogram(lens, filter.Bounds{Min: 1})
		c.Assert(err, check.IsNil)
		c.Check(bytes.HasPrefix(png, pngMagic), check.Equals, true)
	}
}

func (s *S) TestCreate(c *check.C) {
	ctx := context.Background()
	ws := workspace.NewMemory()
	_, err := ws.CreateWorkspace(ctx, "test_ContigFilter")
	c.Assert(err, check.IsNil)

	info, err := Create(ctx, ws, "test_ContigFilter", Summary{
		Result:      filter.Result{NInitial: 3, NRemoved: 1, NRemaining: 2},
		Bounds:      filter.Bounds{Min: 10},
		FilteredRef: "1/1/1",
		Lengths:     []int{10, 12},
	})
	c.Assert(err, check.IsNil)
	c.Check(strings.HasPrefix(info.Name, "ContigFilter_report_"), check.Equals, true)
	c.Check(info.Ref, check.Equals, "1/1/1")

	obj, _, err := ws.GetObject(ctx, "test_ContigFilter/"+info.Name)
	c.Assert(err, check.IsNil)
	c.Check(obj.Type, check.Equals, Type)
	var r Report
	c.Assert(json.Unmarshal(obj.Data, &r), check.IsNil)
	c.Check(r.TextMessage, check.Equals, "Filtered assembly to 2 contigs out of 3")
	c.Check(r.ObjectsCreated, check.DeepEquals, []CreatedObject{{Ref: "1/1/1", Description: "Filtered contigs"}})
	c.Check(r.Stats.N50, check.Equals, 12)
	c.Check(bytes.HasPrefix(r.HistogramPNG, pngMagic), check.Equals, true)

	info, err = Create(ctx, ws, "test_ContigFilter", Summary{Result: filter.Result{NInitial: 3, NRemoved: 3}})
	c.Assert(err, check.IsNil)
	obj, _, err = ws.GetObject(ctx, info.Ref)
	c.Assert(err, check.IsNil)
	r = Report{}
	c.Assert(json.Unmarshal(obj.Data, &r), check.IsNil)
	c.Check(r.ObjectsCreated, check.IsNil)
	c.Check(r.HistogramPNG, check.IsNil)

	_, err = Create(ctx, ws, "nows", Summary{})
	c.Check(err, check.NotNil)
}
