// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package auth resolves KBase auth tokens to user names.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultURL is the legacy login endpoint of the KBase CI auth service.
const DefaultURL = "https://ci.kbase.us/services/auth/api/legacy/KBase/Sessions/Login"

const (
	cacheTTL  = 5 * time.Minute
	cacheSize = 2000
)

// ErrNoToken is returned by GetUser when called with an empty token.
var ErrNoToken = errors.New("auth: must supply token")

// Client is a KBase auth service client. Valid tokens are cached.
type Client struct {
	url  string
	http *http.Client

	mu    sync.Mutex
	cache map[string]entry
	now   func() time.Time
}

type entry struct {
	user  string
	added time.Time
}

// New returns a Client for the auth service at authURL. If hc is nil
// a client with a 20 second timeout is used.
func New(authURL string, hc *http.Client) *Client {
	if authURL == "" {
		authURL = DefaultURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		url:   authURL,
		http:  hc,
		cache: make(map[string]entry),
		now:   time.Now,
	}
}

// GetUser returns the user name that owns token.
func (c *Client) GetUser(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}
	if u, ok := c.cached(token); ok {
		return u, nil
	}

	form := url.Values{"token": {token}, "fields": {"user_id"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		UserID string `json:"user_id"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	decErr := json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusOK {
		if decErr != nil {
			return "", fmt.Errorf("auth: error connecting to auth service: %s", resp.Status)
		}
		return "", fmt.Errorf("auth: error connecting to auth service: %s\n%s", resp.Status, body.Error.Message)
	}
	if decErr != nil {
		return "", fmt.Errorf("auth: bad response: %w", decErr)
	}
	if body.UserID == "" {
		return "", errors.New("auth: response has no user_id")
	}
	c.add(token, body.UserID)
	return body.UserID, nil
}

func (c *Client) cached(token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache[token]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.added) > cacheTTL {
		delete(c.cache, token)
		return "", false
	}
	return e.user, true
}

func (c *Client) add(token, user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[token] = entry{user: user, added: c.now()}
	if len(c.cache) <= cacheSize {
		return
	}
	type aged struct {
		token string
		added time.Time
	}
	all := make([]aged, 0, len(c.cache))
	for t, e := range c.cache {
		all = append(all, aged{t, e.added})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].added.Before(all[j].added) })
	for _, a := range all[:len(all)-cacheSize] {
		delete(c.cache, a.token)
	}
}
