// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mflynn-lanl/super-duper-contig-filter/auth"
)

const deployCfg = `[ContigFilter]
workspace-url = /data/ws.db
auth-service-url = https://example.org/auth/api/legacy/KBase/Sessions/Login
scratch = /kb/module/work/tmp
read-timeout = 1m
`

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deploy.cfg")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Memory, c.WorkspaceURL)
	assert.Equal(t, auth.DefaultURL, c.AuthServiceURL)
	assert.Equal(t, ":5000", c.Listen)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 30*time.Second, c.ReadTimeout)
	assert.Equal(t, 5*time.Minute, c.WriteTimeout)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, deployCfg)

	tests := []struct {
		name string
		load func(t *testing.T) (Config, error)
	}{
		{"explicit path", func(t *testing.T) (Config, error) { return Load(path) }},
		{"deployment env", func(t *testing.T) (Config, error) {
			t.Setenv(EnvConfig, path)
			return Load("")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.load(t)
			require.NoError(t, err)
			assert.Equal(t, "/data/ws.db", c.WorkspaceURL)
			assert.Equal(t, "https://example.org/auth/api/legacy/KBase/Sessions/Login", c.AuthServiceURL)
			assert.Equal(t, "/kb/module/work/tmp", c.Scratch)
			assert.Equal(t, time.Minute, c.ReadTimeout)
			assert.Equal(t, 5*time.Minute, c.WriteTimeout)
			assert.Equal(t, ":5000", c.Listen)
		})
	}
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, deployCfg)
	t.Setenv("CONTIGFILTER_WORKSPACE_URL", "memory")
	t.Setenv("CONTIGFILTER_LISTEN", "127.0.0.1:8080")
	t.Setenv("CONTIGFILTER_LOG_LEVEL", "debug")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Memory, c.WorkspaceURL)
	assert.Equal(t, "127.0.0.1:8080", c.Listen)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "/kb/module/work/tmp", c.Scratch)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cfg"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[ContigFilter]\nread-timeout = soon\n"))
	assert.Error(t, err)
}
