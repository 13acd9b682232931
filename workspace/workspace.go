// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package workspace provides a typed object store organised into named
// workspaces. Objects are addressed by references of the form
// wsid/objid/ver, where each element may also be given by name and
// the version may be omitted to select the latest version.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoWorkspace     = errors.New("workspace: no such workspace")
	ErrNoObject        = errors.New("workspace: no such object")
	ErrWorkspaceExists = errors.New("workspace: workspace already exists")
	ErrBadName         = errors.New("workspace: illegal name")
	ErrBadRef          = errors.New("workspace: illegal object reference")
)

// Store is a workspace service.
type Store interface {
	CreateWorkspace(ctx context.Context, name string) (WorkspaceInfo, error)
	DeleteWorkspace(ctx context.Context, name string) error
	SaveObject(ctx context.Context, workspace string, obj Object) (ObjectInfo, error)
	GetObject(ctx context.Context, ref string) (Object, ObjectInfo, error)
	Close() error
}

// WorkspaceInfo describes a workspace.
type WorkspaceInfo struct {
	ID      int       `json:"id"`
	Name    string    `json:"name"`
	Owner   string    `json:"owner"`
	Created time.Time `json:"created"`
}

// ProvenanceAction records the service call that produced an object.
type ProvenanceAction struct {
	Service      string        `json:"service"`
	Method       string        `json:"method"`
	MethodParams []interface{} `json:"method_params"`
	InputRefs    []string      `json:"input_ws_objects,omitempty"`
}

// Object is a typed workspace object.
type Object struct {
	Type       string             `json:"type"`
	Name       string             `json:"name"`
	Data       json.RawMessage    `json:"data"`
	Provenance []ProvenanceAction `json:"provenance,omitempty"`
}

// ObjectInfo describes a saved object version.
type ObjectInfo struct {
	Ref       Ref       `json:"ref"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Workspace string    `json:"workspace"`
	SavedBy   string    `json:"saved_by"`
	Saved     time.Time `json:"saved"`
	Size      int       `json:"size"`
}

// Ref is the numeric address of an object version.
type Ref struct {
	WSID    int
	ObjID   int
	Version int
}

func (r Ref) String() string { return fmt.Sprintf("%d/%d/%d", r.WSID, r.ObjID, r.Version) }

func (r Ref) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

// Identity is a parsed object reference. Workspace and Object hold
// either a decimal id or a name. A zero Version denotes the latest.
type Identity struct {
	Workspace string
	Object    string
	Version   int
}

// ParseRef parses an object reference of the form ws/obj or ws/obj/ver.
func ParseRef(ref string) (Identity, error) {
	f := strings.Split(ref, "/")
	if len(f) != 2 && len(f) != 3 {
		return Identity{}, fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	id := Identity{Workspace: f[0], Object: f[1]}
	if id.Workspace == "" || id.Object == "" {
		return Identity{}, fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	if len(f) == 3 {
		v, err := strconv.Atoi(f[2])
		if err != nil || v < 1 {
			return Identity{}, fmt.Errorf("%w: bad version in %q", ErrBadRef, ref)
		}
		id.Version = v
	}
	return id, nil
}

var (
	wsNamePattern  = regexp.MustCompile(`^[A-Za-z0-9|._:-]+$`)
	objNamePattern = regexp.MustCompile(`^[A-Za-z0-9|._-]+$`)
)

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// Names may not be integers so that references resolve unambiguously.
func checkWorkspaceName(name string) error {
	if !wsNamePattern.MatchString(name) || isNumber(name) {
		return fmt.Errorf("%w: workspace %q", ErrBadName, name)
	}
	return nil
}

func checkObjectName(name string) error {
	if !objNamePattern.MatchString(name) || isNumber(name) {
		return fmt.Errorf("%w: object %q", ErrBadName, name)
	}
	return nil
}

type userKey struct{}

// WithUser returns a context carrying the name of the user on whose
// behalf store operations are performed.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// User returns the user carried by ctx, or the empty string.
func User(ctx context.Context) string {
	u, _ := ctx.Value(userKey{}).(string)
	return u
}

type provenanceKey struct{}

// WithProvenance returns a context carrying the provenance recorded on
// objects saved without explicit provenance.
func WithProvenance(ctx context.Context, p []ProvenanceAction) context.Context {
	return context.WithValue(ctx, provenanceKey{}, p)
}

// Provenance returns the provenance carried by ctx.
func Provenance(ctx context.Context) []ProvenanceAction {
	p, _ := ctx.Value(provenanceKey{}).([]ProvenanceAction)
	return p
}
