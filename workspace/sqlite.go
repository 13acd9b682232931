// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package workspace

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS workspaces (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	name    TEXT NOT NULL UNIQUE,
	owner   TEXT NOT NULL,
	created TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS objects (
	ws_id  INTEGER NOT NULL,
	obj_id INTEGER NOT NULL,
	name   TEXT NOT NULL,
	PRIMARY KEY (ws_id, obj_id),
	UNIQUE (ws_id, name)
);
CREATE TABLE IF NOT EXISTS versions (
	ws_id      INTEGER NOT NULL,
	obj_id     INTEGER NOT NULL,
	ver        INTEGER NOT NULL,
	type       TEXT NOT NULL,
	data       BLOB NOT NULL,
	provenance TEXT NOT NULL,
	saved_by   TEXT NOT NULL,
	saved      TEXT NOT NULL,
	PRIMARY KEY (ws_id, obj_id, ver)
);`

// SQLite is a Store persisted in an SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the SQLite workspace database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("workspace: open %q: %w", path, err)
	}
	// A single connection serialises writers and keeps
	// in-memory databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("workspace: init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }

// CreateWorkspace creates an empty workspace owned by the context user.
func (s *SQLite) CreateWorkspace(ctx context.Context, name string) (WorkspaceInfo, error) {
	if err := checkWorkspaceName(name); err != nil {
		return WorkspaceInfo{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return WorkspaceInfo{}, err
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM workspaces WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return WorkspaceInfo{}, err
	}
	if n != 0 {
		return WorkspaceInfo{}, fmt.Errorf("%w: %q", ErrWorkspaceExists, name)
	}
	info := WorkspaceInfo{Name: name, Owner: User(ctx), Created: time.Now().UTC()}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO workspaces (name, owner, created) VALUES (?, ?, ?)`,
		name, info.Owner, info.Created.Format(time.RFC3339Nano))
	if err != nil {
		return WorkspaceInfo{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return WorkspaceInfo{}, err
	}
	info.ID = int(id)
	return info, tx.Commit()
}

// DeleteWorkspace removes the named workspace and all its objects.
func (s *SQLite) DeleteWorkspace(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowContext(ctx, `SELECT id FROM workspaces WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %q", ErrNoWorkspace, name)
	}
	if err != nil {
		return err
	}
	for _, q := range []string{
		`DELETE FROM versions WHERE ws_id = ?`,
		`DELETE FROM objects WHERE ws_id = ?`,
		`DELETE FROM workspaces WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveObject saves obj in the named workspace, adding a version if
// an object of the same name exists.
func (s *SQLite) SaveObject(ctx context.Context, workspace string, obj Object) (ObjectInfo, error) {
	if err := checkObjectName(obj.Name); err != nil {
		return ObjectInfo{}, err
	}
	if obj.Provenance == nil {
		obj.Provenance = Provenance(ctx)
	}
	data := []byte(obj.Data)
	if data == nil {
		data = []byte{}
	}
	prov, err := json.Marshal(obj.Provenance)
	if err != nil {
		return ObjectInfo{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ObjectInfo{}, err
	}
	defer tx.Rollback()

	info := ObjectInfo{
		Name:      obj.Name,
		Type:      obj.Type,
		Workspace: workspace,
		SavedBy:   User(ctx),
		Saved:     time.Now().UTC(),
		Size:      len(obj.Data),
	}
	err = tx.QueryRowContext(ctx, `SELECT id FROM workspaces WHERE name = ?`, workspace).Scan(&info.Ref.WSID)
	if errors.Is(err, sql.ErrNoRows) {
		return ObjectInfo{}, fmt.Errorf("%w: %q", ErrNoWorkspace, workspace)
	}
	if err != nil {
		return ObjectInfo{}, err
	}
	err = tx.QueryRowContext(ctx,
		`SELECT obj_id FROM objects WHERE ws_id = ? AND name = ?`,
		info.Ref.WSID, obj.Name).Scan(&info.Ref.ObjID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(obj_id), 0) + 1 FROM objects WHERE ws_id = ?`,
			info.Ref.WSID).Scan(&info.Ref.ObjID)
		if err != nil {
			return ObjectInfo{}, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO objects (ws_id, obj_id, name) VALUES (?, ?, ?)`,
			info.Ref.WSID, info.Ref.ObjID, obj.Name)
		if err != nil {
			return ObjectInfo{}, err
		}
	case err != nil:
		return ObjectInfo{}, err
	}
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(ver), 0) + 1 FROM versions WHERE ws_id = ? AND obj_id = ?`,
		info.Ref.WSID, info.Ref.ObjID).Scan(&info.Ref.Version)
	if err != nil {
		return ObjectInfo{}, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO versions (ws_id, obj_id, ver, type, data, provenance, saved_by, saved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		info.Ref.WSID, info.Ref.ObjID, info.Ref.Version, obj.Type, data,
		string(prov), info.SavedBy, info.Saved.Format(time.RFC3339Nano))
	if err != nil {
		return ObjectInfo{}, err
	}
	return info, tx.Commit()
}

// GetObject returns the object version addressed by ref.
func (s *SQLite) GetObject(ctx context.Context, ref string) (Object, ObjectInfo, error) {
	id, err := ParseRef(ref)
	if err != nil {
		return Object{}, ObjectInfo{}, err
	}

	var info ObjectInfo
	var wsArg interface{} = id.Workspace
	wsQuery := `SELECT id, name FROM workspaces WHERE name = ?`
	if n, err := strconv.Atoi(id.Workspace); err == nil {
		wsQuery = `SELECT id, name FROM workspaces WHERE id = ?`
		wsArg = n
	}
	err = s.db.QueryRowContext(ctx, wsQuery, wsArg).Scan(&info.Ref.WSID, &info.Workspace)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, ObjectInfo{}, fmt.Errorf("%w: %q", ErrNoWorkspace, id.Workspace)
	}
	if err != nil {
		return Object{}, ObjectInfo{}, err
	}

	var objArg interface{} = id.Object
	objQuery := `SELECT obj_id, name FROM objects WHERE ws_id = ? AND name = ?`
	if n, err := strconv.Atoi(id.Object); err == nil {
		objQuery = `SELECT obj_id, name FROM objects WHERE ws_id = ? AND obj_id = ?`
		objArg = n
	}
	err = s.db.QueryRowContext(ctx, objQuery, info.Ref.WSID, objArg).Scan(&info.Ref.ObjID, &info.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, ObjectInfo{}, fmt.Errorf("%w: %q", ErrNoObject, ref)
	}
	if err != nil {
		return Object{}, ObjectInfo{}, err
	}

	verQuery := `SELECT ver, type, data, provenance, saved_by, saved FROM versions
		WHERE ws_id = ? AND obj_id = ? ORDER BY ver DESC LIMIT 1`
	args := []interface{}{info.Ref.WSID, info.Ref.ObjID}
	if id.Version != 0 {
		verQuery = `SELECT ver, type, data, provenance, saved_by, saved FROM versions
		WHERE ws_id = ? AND obj_id = ? AND ver = ?`
		args = append(args, id.Version)
	}
	var (
		obj         = Object{Name: info.Name}
		data        []byte
		prov, saved string
	)
	err = s.db.QueryRowContext(ctx, verQuery, args...).Scan(&info.Ref.Version, &obj.Type, &data, &prov, &info.SavedBy, &saved)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, ObjectInfo{}, fmt.Errorf("%w: %q", ErrNoObject, ref)
	}
	if err != nil {
		return Object{}, ObjectInfo{}, err
	}
	obj.Data = data
	if err := json.Unmarshal([]byte(prov), &obj.Provenance); err != nil {
		return Object{}, ObjectInfo{}, fmt.Errorf("workspace: bad provenance for %s: %w", info.Ref, err)
	}
	info.Type = obj.Type
	info.Size = len(data)
	info.Saved, err = time.Parse(time.RFC3339Nano, saved)
	if err != nil {
		return Object{}, ObjectInfo{}, err
	}
	return obj, info, nil
}
