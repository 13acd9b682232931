// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mflynn-lanl/super-duper-contig-filter/assembly"
	"github.com/mflynn-lanl/super-duper-contig-filter/workspace"
)

const testFasta = ">seq1 something soemthing asdf\n" +
	"agcttttcat\n" +
	">seq2\n" +
	"agctt\n" +
	">seq3\n" +
	"agcttttcatgg"

type fakeAuth map[string]string

func (f fakeAuth) GetUser(_ context.Context, token string) (string, error) {
	u, ok := f[token]
	if !ok {
		return "", errors.New("auth: invalid token")
	}
	return u, nil
}

type fixture struct {
	ws     workspace.Store
	srv    *httptest.Server
	wsName string
	small  string // ref of the three contig assembly
	large  string // ref of the two contig assembly
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{ws: workspace.NewMemory(), wsName: "test_ContigFilter_1"}
	_, err := f.ws.CreateWorkspace(ctx, f.wsName)
	require.NoError(t, err)

	util := assembly.New(f.ws)
	info, err := util.SaveFromFasta(ctx, strings.NewReader(testFasta), f.wsName, "TestAssembly")
	require.NoError(t, err)
	f.small = info.Ref.String()

	large := fmt.Sprintf(">short\n%s\n>long\n%s\n",
		strings.Repeat("acgt", 150000/4), strings.Repeat("acgt", 5000000/4))
	info, err = util.SaveFromFasta(ctx, strings.NewReader(large), f.wsName, "LargeAssembly")
	require.NoError(t, err)
	f.large = info.Ref.String()

	logger := log.NewWithOptions(io.Discard, log.Options{})
	f.srv = httptest.NewServer(New(NewImpl(f.ws), fakeAuth{"token": "tester"}, logger))
	t.Cleanup(func() {
		f.srv.Close()
		f.ws.Close()
	})
	return f
}

type rpcResponse struct {
	Version string          `json:"version"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

func (f *fixture) call(t *testing.T, token, method string, params ...interface{}) (int, rpcResponse) {
	t.Helper()
	if params == nil {
		params = []interface{}{}
	}
	body, err := json.Marshal(map[string]interface{}{
		"version": "1.1",
		"method":  method,
		"params":  params,
		"id":      "42",
	})
	require.NoError(t, err)
	return f.post(t, token, body)
}

func (f *fixture) post(t *testing.T, token string, body []byte) (int, rpcResponse) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.srv.URL, bytes.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var r rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	return resp.StatusCode, r
}

func (f *fixture) params(ref string, kv ...interface{}) map[string]interface{} {
	p := map[string]interface{}{
		"workspace_name":     f.wsName,
		"assembly_input_ref": ref,
	}
	for i := 0; i < len(kv); i += 2 {
		p[kv[i].(string)] = kv[i+1]
	}
	return p
}

func TestRunContigFilter(t *testing.T) {
	f := newFixture(t)
	code, resp := f.call(t, "token", "ContigFilter.run_ContigFilter", f.params(f.small, "min_length", 10))
	require.Equal(t, http.StatusOK, code)
	require.Nil(t, resp.Error)
	assert.Equal(t, "1.1", resp.Version)
	assert.Equal(t, "42", resp.ID)

	var out []Output
	require.NoError(t, json.Unmarshal(resp.Result, &out))
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].NInitial)
	assert.Equal(t, 1, out[0].NRemoved)
	assert.Equal(t, 2, out[0].NRemaining)
	assert.True(t, strings.HasPrefix(out[0].Name, "ContigFilter_report_"))

	ctx := context.Background()
	contigs, err := assembly.New(f.ws).GetContigs(ctx, out[0].FilteredAssemblyRef)
	require.NoError(t, err)
	var names []string
	for _, c := range contigs {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"seq1", "seq3"}, names)

	obj, info, err := f.ws.GetObject(ctx, out[0].FilteredAssemblyRef)
	require.NoError(t, err)
	assert.Equal(t, "TestAssembly.filtered", info.Name)
	assert.Equal(t, "tester", info.SavedBy)
	require.Len(t, obj.Provenance, 1)
	assert.Equal(t, "run_ContigFilter", obj.Provenance[0].Method)
	assert.Equal(t, []string{f.small}, obj.Provenance[0].InputRefs)

	obj, _, err = f.ws.GetObject(ctx, out[0].Ref)
	require.NoError(t, err)
	assert.Equal(t, "KBaseReport.Report", obj.Type)
}

func TestRunContigFilterMax(t *testing.T) {
	f := newFixture(t)
	for _, test := range []struct {
		min, max  int
		remaining int
	}{
		{min: 200000, max: 6000000, remaining: 1},
		{min: 100000, max: 4000000, remaining: 1},
		{min: 100, max: 1000000, remaining: 1},
		{min: 0, max: 9999999, remaining: 2},
		{min: 6000000, max: 9000000, remaining: 0},
	} {
		code, resp := f.call(t, "token", "ContigFilter.run_ContigFilter_max",
			f.params(f.large, "min_length", test.min, "max_length", test.max))
		require.Equal(t, http.StatusOK, code)
		require.Nil(t, resp.Error)
		var out []Output
		require.NoError(t, json.Unmarshal(resp.Result, &out))
		require.Len(t, out, 1)
		assert.Equal(t, 2, out[0].NInitial, "min=%d max=%d", test.min, test.max)
		assert.Equal(t, test.remaining, out[0].NRemaining, "min=%d max=%d", test.min, test.max)
		assert.Equal(t, out[0].NInitial, out[0].NRemoved+out[0].NRemaining)
		assert.Equal(t, test.remaining == 0, out[0].FilteredAssemblyRef == "")
	}
}

func TestValidationErrors(t *testing.T) {
	f := newFixture(t)
	for _, test := range []struct {
		method string
		params map[string]interface{}
		msg    string
	}{
		{
			method: "ContigFilter.run_ContigFilter",
			params: f.params("1/fake/3", "min_length", "-10"),
			msg:    "min_length parameter cannot be negative",
		},
		{
			method: "ContigFilter.run_ContigFilter",
			params: f.params("1/fake/3", "min_length", "ten"),
			msg:    "Cannot parse integer from min_length parameter (ten)",
		},
		{
			method: "ContigFilter.run_ContigFilter_max",
			params: f.params("79/16/1", "min_length", 100, "max_length", -1000000),
			msg:    "max_length parameter cannot be negative",
		},
		{
			method: "ContigFilter.run_ContigFilter_max",
			params: f.params("79/16/1", "min_length", 100, "max_length", 9999999+1),
			msg:    "max_length parameter must be less than 9999999",
		},
		{
			method: "ContigFilter.run_ContigFilter_max",
			params: f.params("79/16/1", "min_length", 100, "max_length", json.Number("12345678901234567890")),
			msg:    "max_length parameter must be less than 9999999",
		},
		{
			method: "ContigFilter.run_ContigFilter_max",
			params: f.params("79/16/1", "min_length", 100, "max_length", 1e10),
			msg:    "max_length parameter must be less than 9999999",
		},
		{
			method: "ContigFilter.run_ContigFilter_max",
			params: f.params("79/16/1", "min_length", 1000, "max_length", 1),
			msg:    "max_length parameter 1 must be greater than min_length 1000",
		},
		{
			method: "ContigFilter.run_ContigFilter",
			params: map[string]interface{}{"assembly_input_ref": "1/1/1"},
			msg:    "Parameter workspace_name is not set in input arguments",
		},
	} {
		code, resp := f.call(t, "token", test.method, test.params)
		assert.Equal(t, http.StatusInternalServerError, code)
		require.NotNil(t, resp.Error, test.msg)
		assert.Equal(t, CodeServerError, resp.Error.Code)
		assert.Equal(t, "JSONRPCError", resp.Error.Name)
		assert.Equal(t, test.msg, resp.Error.Message)
	}
}

func TestStoreErrors(t *testing.T) {
	f := newFixture(t)
	_, resp := f.call(t, "token", "ContigFilter.run_ContigFilter", f.params("1/fake/3", "min_length", 10))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeServerError, resp.Error.Code)
	assert.Equal(t, "JSONRPCError", resp.Error.Name)
	assert.Contains(t, resp.Error.Message, "no such object")

	p := f.params(f.small, "min_length", 10)
	p["workspace_name"] = "nows"
	_, resp = f.call(t, "token", "ContigFilter.run_ContigFilter", p)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "no such workspace")
}

func TestProtocolErrors(t *testing.T) {
	f := newFixture(t)

	_, resp := f.call(t, "", "ContigFilter.run_ContigFilter", f.params(f.small))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeAuth, resp.Error.Code)

	_, resp = f.call(t, "wrong", "ContigFilter.run_ContigFilter", f.params(f.small))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeAuth, resp.Error.Code)

	_, resp = f.call(t, "token", "ContigFilter.no_such_method")
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)

	_, resp = f.call(t, "token", "ContigFilter.run_ContigFilter")
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)

	_, resp = f.call(t, "token", "ContigFilter.run_ContigFilter", "not an object")
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)

	_, resp = f.post(t, "token", []byte(`{"version":`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeParseError, resp.Error.Code)

	_, resp = f.post(t, "token", []byte(`{"version":"1.1","params":[]}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidRequest, resp.Error.Code)

	r, err := http.Get(f.srv.URL)
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, r.StatusCode)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	code, resp := f.call(t, "", "ContigFilter.status")
	require.Equal(t, http.StatusOK, code)
	require.Nil(t, resp.Error)
	var st []Status
	require.NoError(t, json.Unmarshal(resp.Result, &st))
	require.Len(t, st, 1)
	assert.Equal(t, "OK", st[0].State)
	assert.Equal(t, Version, st[0].Version)
}
