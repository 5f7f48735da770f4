package store

import (
	"context"

	"github.com/DaanHessen/grimoire-tui/internal/script"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScriptRepo is the remote reference-data store for scripts and their roles.
// It implements script.Remote.
type ScriptRepo struct{ db *DB }

func NewScriptRepo(db *DB) *ScriptRepo { return &ScriptRepo{db: db} }

var _ script.Remote = (*ScriptRepo)(nil)

// ListScripts returns every stored script with its roles in order. ID and
// RemoteID are both the row key.
func (r *ScriptRepo) ListScripts(ctx context.Context) ([]script.Script, error) {
	rows, err := r.db.gorm.WithContext(ctx).Raw(`SELECT id, title, author, description, type FROM scripts ORDER BY created_at, title`).Rows()
	if err != nil {
		return nil, wrap(err, "list scripts")
	}
	defer rows.Close()
	var (
		out   []script.Script
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			s   script.Script
			typ string
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Author, &s.Description, &typ); err != nil {
			return nil, wrap(err, "scan script")
		}
		s.Type = script.Type(typ)
		s.RemoteID = s.ID
		index[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "list scripts")
	}

	roleRows, err := r.db.gorm.WithContext(ctx).Raw(`SELECT script_id, role_key, name, team, ability, first_night, other_night FROM roles ORDER BY script_id, position`).Rows()
	if err != nil {
		return nil, wrap(err, "list roles")
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var (
			scriptID, team string
			role           script.Role
		)
		if err := roleRows.Scan(&scriptID, &role.ID, &role.Name, &team, &role.Ability, &role.FirstNight, &role.OtherNight); err != nil {
			return nil, wrap(err, "scan role")
		}
		role.Team = script.Team(team)
		if i, ok := index[scriptID]; ok {
			out[i].Roles = append(out[i].Roles, role)
		}
	}
	return out, wrap(roleRows.Err(), "list roles")
}

// CreateScript inserts s and its roles in one transaction.
func (r *ScriptRepo) CreateScript(ctx context.Context, s script.Script) (string, error) {
	id := uuid.New()
	typ := s.Type
	if typ == "" {
		typ = script.TypeCustom
	}
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec(`INSERT INTO scripts(id, title, author, description, type) VALUES (?,?,?,?,?)`,
			id, s.Title, s.Author, s.Description, string(typ)).Error; err != nil {
			return wrap(err, "insert script")
		}
		return insertRoles(tx, id, s.Roles)
	})
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// UpdateScript replaces the header and role list of a custom script.
func (r *ScriptRepo) UpdateScript(ctx context.Context, s script.Script) error {
	id, err := uuid.Parse(s.RemoteID)
	if err != nil {
		return wrap(ErrNotFound, "update script "+s.RemoteID)
	}
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.Exec(`UPDATE scripts SET title = ?, author = ?, description = ?, updated_at = now() WHERE id = ? AND type = 'custom'`,
			s.Title, s.Author, s.Description, id)
		if res.Error != nil {
			return wrap(res.Error, "update script")
		}
		if res.RowsAffected == 0 {
			return wrap(ErrNotFound, "update script "+s.RemoteID)
		}
		if err := tx.Exec(`DELETE FROM roles WHERE script_id = ?`, id).Error; err != nil {
			return wrap(err, "clear roles")
		}
		return insertRoles(tx, id, s.Roles)
	})
}

// DeleteScript removes a custom script; its roles go with it.
func (r *ScriptRepo) DeleteScript(ctx context.Context, remoteID string) error {
	id, err := uuid.Parse(remoteID)
	if err != nil {
		return wrap(ErrNotFound, "delete script "+remoteID)
	}
	res := r.db.gorm.WithContext(ctx).Exec(`DELETE FROM scripts WHERE id = ? AND type = 'custom'`, id)
	if res.Error != nil {
		return wrap(res.Error, "delete script")
	}
	if res.RowsAffected == 0 {
		return wrap(ErrNotFound, "delete script "+remoteID)
	}
	return nil
}

// HasTitle reports whether any script already uses title.
func (r *ScriptRepo) HasTitle(ctx context.Context, title string) (bool, error) {
	var n int64
	row := r.db.gorm.WithContext(ctx).Raw(`SELECT COUNT(*) FROM scripts WHERE title = ?`, title).Row()
	if err := row.Scan(&n); err != nil {
		return false, wrap(err, "count scripts")
	}
	return n > 0, nil
}

func insertRoles(tx *gorm.DB, scriptID uuid.UUID, roles []script.Role) error {
	for i, role := range roles {
		team := role.Team
		if !team.Valid() {
			team = script.TeamTownsfolk
		}
		if err := tx.Exec(`INSERT INTO roles(script_id, position, role_key, name, team, ability, first_night, other_night) VALUES (?,?,?,?,?,?,?,?)`,
			scriptID, i, role.ID, role.Name, string(team), role.Ability, role.FirstNight, role.OtherNight).Error; err != nil {
			return wrap(err, "insert role "+role.ID)
		}
	}
	return nil
}
