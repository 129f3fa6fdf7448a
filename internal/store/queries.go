package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/blackwell-systems/goflatpak/internal/convert"
)

// Installation operations

// UpsertInstallation inserts or replaces an installation.
func (s *Store) UpsertInstallation(inst *Installation) error {
	minFree, err := convert.Int64(inst.MinFreeSpace)
	if err != nil {
		return fmt.Errorf("installation %s min free space: %w", inst.ID, err)
	}
	langs, err := encodeList(inst.Languages)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO installations (id, path, display_name, is_user, priority, read_only, min_free_space, languages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			display_name = excluded.display_name,
			is_user = excluded.is_user,
			priority = excluded.priority,
			read_only = excluded.read_only,
			min_free_space = excluded.min_free_space,
			languages = excluded.languages
	`

	_, err = s.db.Exec(query,
		inst.ID,
		inst.Path,
		inst.DisplayName,
		inst.IsUser,
		inst.Priority,
		inst.ReadOnly,
		minFree,
		langs,
	)
	return wrap(err, "upsert installation %s", inst.ID)
}

const installationColumns = `id, path, display_name, is_user, priority, read_only, min_free_space, languages`

func scanInstallation(row interface{ Scan(...any) error }) (*Installation, error) {
	var inst Installation
	var minFree int64
	var langs sql.NullString
	if err := row.Scan(
		&inst.ID,
		&inst.Path,
		&inst.DisplayName,
		&inst.IsUser,
		&inst.Priority,
		&inst.ReadOnly,
		&minFree,
		&langs,
	); err != nil {
		return nil, err
	}
	var err error
	if inst.MinFreeSpace, err = convert.Uint64(minFree); err != nil {
		return nil, err
	}
	if inst.Languages, err = decodeList(langs); err != nil {
		return nil, err
	}
	return &inst, nil
}

// GetInstallation retrieves an installation by id.
func (s *Store) GetInstallation(id string) (*Installation, error) {
	row := s.db.QueryRow(`SELECT `+installationColumns+` FROM installations WHERE id = ?`, id)
	inst, err := scanInstallation(row)
	if err != nil {
		return nil, wrap(err, "get installation %s", id)
	}
	return inst, nil
}

// GetInstallationByPath retrieves an installation by its directory.
func (s *Store) GetInstallationByPath(path string) (*Installation, error) {
	row := s.db.QueryRow(`SELECT `+installationColumns+` FROM installations WHERE path = ?`, path)
	inst, err := scanInstallation(row)
	if err != nil {
		return nil, wrap(err, "get installation at %s", path)
	}
	return inst, nil
}

// ListInstallations returns all system (non-user) installations, highest
// priority first.
func (s *Store) ListInstallations() ([]*Installation, error) {
	rows, err := s.db.Query(`SELECT ` + installationColumns + ` FROM installations WHERE is_user = 0 ORDER BY priority DESC, id`)
	if err != nil {
		return nil, wrap(err, "list installations")
	}
	defer rows.Close()

	var out []*Installation
	for rows.Next() {
		inst, err := scanInstallation(rows)
		if err != nil {
			return nil, wrap(err, "scan installation row")
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "iterate installations")
	}
	return out, nil
}

// Config operations

// SetConfig stores a configuration value. A nil value removes the key.
func (s *Store) SetConfig(installation, key string, value *string) error {
	if value == nil {
		_, err := s.db.Exec(`DELETE FROM config WHERE installation = ? AND key = ?`, installation, key)
		return wrap(err, "unset config %s", key)
	}
	_, err := s.db.Exec(`
		INSERT INTO config (installation, key, value) VALUES (?, ?, ?)
		ON CONFLICT(installation, key) DO UPDATE SET value = excluded.value
	`, installation, key, *value)
	return wrap(err, "set config %s", key)
}

// GetConfig returns a configuration value.
func (s *Store) GetConfig(installation, key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM config WHERE installation = ? AND key = ?`, installation, key).Scan(&v)
	if err != nil {
		return "", wrap(err, "get config %s", key)
	}
	return v, nil
}

// SetOverride stores the override key file of an application.
func (s *Store) SetOverride(installation, appID, data string) error {
	_, err := s.db.Exec(`
		INSERT INTO overrides (installation, app_id, data) VALUES (?, ?, ?)
		ON CONFLICT(installation, app_id) DO UPDATE SET data = excluded.data
	`, installation, appID, data)
	return wrap(err, "set override for %s", appID)
}

// GetOverride returns the override key file of an application.
func (s *Store) GetOverride(installation, appID string) (string, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM overrides WHERE installation = ? AND app_id = ?`, installation, appID).Scan(&data)
	if err != nil {
		return "", wrap(err, "get override for %s", appID)
	}
	return data, nil
}

func encodeList(vals []string) (any, error) {
	if vals == nil {
		return nil, nil
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal list: %w", err)
	}
	return string(b), nil
}

func decodeList(v sql.NullString) ([]string, error) {
	if !v.Valid {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
