package store

import "fmt"

const remoteColumns = `installation, name, url, title, comment, description, homepage, icon,
	collection_id, default_branch, main_ref, filter, disabled, nodeps, noenumerate,
	gpg_verify, gpg_key, prio, remote_type, offline`

func scanRemote(row interface{ Scan(...any) error }) (*Remote, error) {
	var r Remote
	err := row.Scan(
		&r.Installation,
		&r.Name,
		&r.URL,
		&r.Title,
		&r.Comment,
		&r.Description,
		&r.Homepage,
		&r.Icon,
		&r.CollectionID,
		&r.DefaultBranch,
		&r.MainRef,
		&r.Filter,
		&r.Disabled,
		&r.NoDeps,
		&r.NoEnumerate,
		&r.GPGVerify,
		&r.GPGKey,
		&r.Prio,
		&r.Type,
		&r.Offline,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func remoteArgs(r *Remote) []any {
	return []any{
		r.Installation,
		r.Name,
		r.URL,
		r.Title,
		r.Comment,
		r.Description,
		r.Homepage,
		r.Icon,
		r.CollectionID,
		r.DefaultBranch,
		r.MainRef,
		r.Filter,
		r.Disabled,
		r.NoDeps,
		r.NoEnumerate,
		r.GPGVerify,
		r.GPGKey,
		r.Prio,
		r.Type,
		r.Offline,
	}
}

// InsertRemote adds a remote. It fails with ErrExists if the name is taken.
func (s *Store) InsertRemote(r *Remote) error {
	query := `
		INSERT INTO remotes (` + remoteColumns + `, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM remotes WHERE installation = ?))
	`
	args := append(remoteArgs(r), r.Installation)
	_, err := s.db.Exec(query, args...)
	return wrap(err, "insert remote %s", r.Name)
}

// UpdateRemote replaces the settings of an existing remote.
func (s *Store) UpdateRemote(r *Remote) error {
	query := `
		UPDATE remotes SET
			url = ?, title = ?, comment = ?, description = ?, homepage = ?, icon = ?,
			collection_id = ?, default_branch = ?, main_ref = ?, filter = ?,
			disabled = ?, nodeps = ?, noenumerate = ?, gpg_verify = ?, gpg_key = ?,
			prio = ?, remote_type = ?, offline = ?
		WHERE installation = ? AND name = ?
	`
	args := remoteArgs(r)
	args = append(args[2:], r.Installation, r.Name)
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return wrap(err, "update remote %s", r.Name)
	}
	return expectRow(result, "remote %s", r.Name)
}

// GetRemote retrieves a remote by name.
func (s *Store) GetRemote(installation, name string) (*Remote, error) {
	row := s.db.QueryRow(`SELECT `+remoteColumns+` FROM remotes WHERE installation = ? AND name = ?`, installation, name)
	r, err := scanRemote(row)
	if err != nil {
		return nil, wrap(err, "remote %s", name)
	}
	return r, nil
}

// ListRemotes returns the remotes of an installation, highest priority
// first, then in the order they were added.
func (s *Store) ListRemotes(installation string) ([]*Remote, error) {
	rows, err := s.db.Query(`
		SELECT `+remoteColumns+` FROM remotes
		WHERE installation = ?
		ORDER BY prio DESC, position
	`, installation)
	if err != nil {
		return nil, wrap(err, "list remotes")
	}
	defer rows.Close()

	out := []*Remote{}
	for rows.Next() {
		r, err := scanRemote(rows)
		if err != nil {
			return nil, wrap(err, "scan remote row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "iterate remotes")
	}
	return out, nil
}

// DeleteRemote removes a remote and its catalog.
func (s *Store) DeleteRemote(installation, name string) error {
	result, err := s.db.Exec(`DELETE FROM remotes WHERE installation = ? AND name = ?`, installation, name)
	if err != nil {
		return wrap(err, "delete remote %s", name)
	}
	return expectRow(result, "remote %s", name)
}

// RemoteInUse reports whether any installed ref has the remote as origin.
func (s *Store) RemoteInUse(installation, name string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM installed_refs WHERE installation = ? AND origin = ?`, installation, name).Scan(&n)
	if err != nil {
		return false, wrap(err, "count refs from %s", name)
	}
	return n > 0, nil
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func expectRow(result rowsAffected, format string, args ...any) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return nil
}
