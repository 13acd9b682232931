// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package workspace

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/biogo/store/llrb"
)

// version is an object version held in the Memory tree ordered
// by workspace id, object id and version.
type version struct {
	Ref
	obj  Object
	info ObjectInfo
}

func (v *version) Compare(b llrb.Comparable) int {
	o := b.(*version)
	switch {
	case v.WSID != o.WSID:
		return v.WSID - o.WSID
	case v.ObjID != o.ObjID:
		return v.ObjID - o.ObjID
	}
	return v.Version - o.Version
}

type memWorkspace struct {
	info    WorkspaceInfo
	names   map[string]int
	nextObj int
}

// Memory is an in-memory Store.
type Memory struct {
	mu       sync.Mutex
	nextWS   int
	byName   map[string]*memWorkspace
	byID     map[int]*memWorkspace
	versions llrb.Tree
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{
		byName: make(map[string]*memWorkspace),
		byID:   make(map[int]*memWorkspace),
	}
}

// CreateWorkspace creates an empty workspace owned by the context user.
func (m *Memory) CreateWorkspace(ctx context.Context, name string) (WorkspaceInfo, error) {
	if err := checkWorkspaceName(name); err != nil {
		return WorkspaceInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[name]; ok {
		return WorkspaceInfo{}, fmt.Errorf("%w: %q", ErrWorkspaceExists, name)
	}
	m.nextWS++
	w := &memWorkspace{
		info:  WorkspaceInfo{ID: m.nextWS, Name: name, Owner: User(ctx), Created: time.Now().UTC()},
		names: make(map[string]int),
	}
	m.byName[name] = w
	m.byID[w.info.ID] = w
	return w.info, nil
}

// DeleteWorkspace removes the named workspace and all its objects.
func (m *Memory) DeleteWorkspace(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoWorkspace, name)
	}
	var dead []llrb.Comparable
	m.versions.DoRange(func(c llrb.Comparable) (done bool) {
		dead = append(dead, c)
		return
	}, &version{Ref: Ref{WSID: w.info.ID}}, &version{Ref: Ref{WSID: w.info.ID + 1}})
	for _, c := range dead {
		m.versions.Delete(c)
	}
	delete(m.byName, name)
	delete(m.byID, w.info.ID)
	return nil
}

// SaveObject saves obj in the named workspace, adding a version if
// an object of the same name exists.
func (m *Memory) SaveObject(ctx context.Context, workspace string, obj Object) (ObjectInfo, error) {
	if err := checkObjectName(obj.Name); err != nil {
		return ObjectInfo{}, err
	}
	if obj.Provenance == nil {
		obj.Provenance = Provenance(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byName[workspace]
	if !ok {
		return ObjectInfo{}, fmt.Errorf("%w: %q", ErrNoWorkspace, workspace)
	}
	id, ok := w.names[obj.Name]
	if !ok {
		w.nextObj++
		id = w.nextObj
		w.names[obj.Name] = id
	}
	obj.Data = append([]byte(nil), obj.Data...)
	v := &version{Ref: Ref{WSID: w.info.ID, ObjID: id, Version: m.latest(w.info.ID, id) + 1}, obj: obj}
	v.info = ObjectInfo{
		Ref:       v.Ref,
		Name:      obj.Name,
		Type:      obj.Type,
		Workspace: w.info.Name,
		SavedBy:   User(ctx),
		Saved:     time.Now().UTC(),
		Size:      len(obj.Data),
	}
	m.versions.Insert(v)
	return v.info, nil
}

// latest returns the highest version number of the object, or zero.
func (m *Memory) latest(ws, obj int) int {
	var n int
	m.versions.DoRange(func(c llrb.Comparable) (done bool) {
		n = c.(*version).Version
		return
	}, &version{Ref: Ref{WSID: ws, ObjID: obj}}, &version{Ref: Ref{WSID: ws, ObjID: obj + 1}})
	return n
}

// GetObject returns the object version addressed by ref.
func (m *Memory) GetObject(ctx context.Context, ref string) (Object, ObjectInfo, error) {
	id, err := ParseRef(ref)
	if err != nil {
		return Object{}, ObjectInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var w *memWorkspace
	if n, err := strconv.Atoi(id.Workspace); err == nil {
		w = m.byID[n]
	} else {
		w = m.byName[id.Workspace]
	}
	if w == nil {
		return Object{}, ObjectInfo{}, fmt.Errorf("%w: %q", ErrNoWorkspace, id.Workspace)
	}
	objID, err := strconv.Atoi(id.Object)
	if err != nil {
		var ok bool
		objID, ok = w.names[id.Object]
		if !ok {
			return Object{}, ObjectInfo{}, fmt.Errorf("%w: %q", ErrNoObject, ref)
		}
	}
	ver := id.Version
	if ver == 0 {
		ver = m.latest(w.info.ID, objID)
	}
	c := m.versions.Get(&version{Ref: Ref{WSID: w.info.ID, ObjID: objID, Version: ver}})
	if c == nil {
		return Object{}, ObjectInfo{}, fmt.Errorf("%w: %q", ErrNoObject, ref)
	}
	v := c.(*version)
	return v.obj, v.info, nil
}

// Close is a no-op for Memory.
func (m *Memory) Close() error { return nil }
