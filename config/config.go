// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads the ContigFilter deployment configuration.
//
// Settings are read from the ContigFilter section of an INI file and
// may be overridden by CONTIGFILTER_<KEY> environment variables, where
// KEY is the upper-cased setting name with hyphens replaced by
// underscores, for example CONTIGFILTER_WORKSPACE_URL.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mflynn-lanl/super-duper-contig-filter/auth"
)

// Section is the INI section holding the service settings.
const Section = "ContigFilter"

// EnvConfig names the environment variable holding the path of the
// deployment config file.
const EnvConfig = "KB_DEPLOYMENT_CONFIG"

// Memory is the workspace-url value selecting the in-memory workspace.
const Memory = "memory"

// Config is the service configuration.
type Config struct {
	// WorkspaceURL is the path of the SQLite workspace database,
	// or Memory for a process-local workspace.
	WorkspaceURL string `mapstructure:"workspace-url"`

	// AuthServiceURL is the token validation endpoint.
	AuthServiceURL string `mapstructure:"auth-service-url"`

	// Scratch is a directory for temporary files.
	Scratch string `mapstructure:"scratch"`

	Listen   string `mapstructure:"listen"`
	LogLevel string `mapstructure:"log-level"`

	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
}

var defaults = map[string]interface{}{
	"workspace-url":    Memory,
	"auth-service-url": auth.DefaultURL,
	"scratch":          os.TempDir(),
	"listen":           ":5000",
	"log-level":        "info",
	"read-timeout":     30 * time.Second,
	"write-timeout":    5 * time.Minute,
}

// Load returns the configuration held in the INI file at path. If path
// is empty the file named by KB_DEPLOYMENT_CONFIG is used, and if that
// is unset only defaults and environment overrides apply.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	file := viper.New()
	if path != "" {
		file.SetConfigFile(path)
		file.SetConfigType("ini")
		if err := file.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	// INI keys are held as section.key; lift the service section to
	// the top level so environment overrides apply to bare keys.
	v := viper.New()
	v.SetEnvPrefix("CONTIGFILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, def := range defaults {
		v.SetDefault(key, def)
		k := strings.ToLower(Section) + "." + key
		if file.IsSet(k) {
			v.SetDefault(key, file.Get(k))
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: unable to decode settings: %w", err)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return Config{}, fmt.Errorf("config: negative timeout")
	}
	return c, nil
}
