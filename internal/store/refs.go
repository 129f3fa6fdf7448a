package store

import (
	"database/sql"
	"fmt"

	"github.com/blackwell-systems/goflatpak/internal/convert"
)

// Remote catalog operations

// UpsertRemoteRef adds or replaces an entry in a remote's catalog.
func (s *Store) UpsertRemoteRef(r *RemoteRef) error {
	dl, err := convert.Int64(r.DownloadSize)
	if err != nil {
		return fmt.Errorf("remote ref %s download size: %w", r.Ref, err)
	}
	inst, err := convert.Int64(r.InstalledSize)
	if err != nil {
		return fmt.Errorf("remote ref %s installed size: %w", r.Ref, err)
	}

	query := `
		INSERT OR REPLACE INTO remote_refs
		(installation, remote, ref, commit_id, download_size, installed_size, metadata, eol, eol_rebase)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query,
		r.Installation,
		r.Remote,
		r.Ref,
		r.Commit,
		dl,
		inst,
		r.Metadata,
		r.EOL,
		r.EOLRebase,
	)
	return wrap(err, "upsert remote ref %s", r.Ref)
}

const remoteRefColumns = `installation, remote, ref, commit_id, download_size, installed_size, metadata, eol, eol_rebase`

func scanRemoteRef(row interface{ Scan(...any) error }) (*RemoteRef, error) {
	var r RemoteRef
	var dl, inst int64
	if err := row.Scan(
		&r.Installation,
		&r.Remote,
		&r.Ref,
		&r.Commit,
		&dl,
		&inst,
		&r.Metadata,
		&r.EOL,
		&r.EOLRebase,
	); err != nil {
		return nil, err
	}
	var err error
	if r.DownloadSize, err = convert.Uint64(dl); err != nil {
		return nil, err
	}
	if r.InstalledSize, err = convert.Uint64(inst); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRemoteRef looks up one catalog entry.
func (s *Store) GetRemoteRef(installation, remote, ref string) (*RemoteRef, error) {
	row := s.db.QueryRow(`SELECT `+remoteRefColumns+` FROM remote_refs WHERE installation = ? AND remote = ? AND ref = ?`,
		installation, remote, ref)
	r, err := scanRemoteRef(row)
	if err != nil {
		return nil, wrap(err, "ref %s in remote %s", ref, remote)
	}
	return r, nil
}

// ListRemoteRefs returns a remote's catalog sorted by ref.
func (s *Store) ListRemoteRefs(installation, remote string) ([]*RemoteRef, error) {
	rows, err := s.db.Query(`SELECT `+remoteRefColumns+` FROM remote_refs WHERE installation = ? AND remote = ? ORDER BY ref`,
		installation, remote)
	if err != nil {
		return nil, wrap(err, "list refs of %s", remote)
	}
	defer rows.Close()

	out := []*RemoteRef{}
	for rows.Next() {
		r, err := scanRemoteRef(rows)
		if err != nil {
			return nil, wrap(err, "scan remote ref row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "iterate remote refs")
	}
	return out, nil
}

// Installed ref operations

// UpsertInstalledRef deploys or redeploys a ref. A new ref goes to the end
// of the installation's listing order; a redeploy keeps its position.
func (s *Store) UpsertInstalledRef(r *InstalledRef) error {
	size, err := convert.Int64(r.InstalledSize)
	if err != nil {
		return fmt.Errorf("installed ref %s size: %w", r.Ref, err)
	}
	subpaths, err := encodeList(r.Subpaths)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO installed_refs
		(installation, ref, origin, commit_id, latest_commit, installed_size, deploy_dir, is_current,
		 subpaths, eol, eol_rebase, appdata_name, appdata_summary, appdata_version, appdata_license,
		 metadata, appdata, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM installed_refs WHERE installation = ?))
		ON CONFLICT(installation, ref) DO UPDATE SET
			origin = excluded.origin,
			commit_id = excluded.commit_id,
			latest_commit = excluded.latest_commit,
			installed_size = excluded.installed_size,
			deploy_dir = excluded.deploy_dir,
			is_current = excluded.is_current,
			subpaths = excluded.subpaths,
			eol = excluded.eol,
			eol_rebase = excluded.eol_rebase,
			appdata_name = excluded.appdata_name,
			appdata_summary = excluded.appdata_summary,
			appdata_version = excluded.appdata_version,
			appdata_license = excluded.appdata_license,
			metadata = excluded.metadata,
			appdata = excluded.appdata
	`
	_, err = s.db.Exec(query,
		r.Installation,
		r.Ref,
		r.Origin,
		r.Commit,
		r.LatestCommit,
		size,
		r.DeployDir,
		r.IsCurrent,
		subpaths,
		r.EOL,
		r.EOLRebase,
		r.AppdataName,
		r.AppdataSummary,
		r.AppdataVersion,
		r.AppdataLicense,
		r.Metadata,
		r.Appdata,
		r.Installation,
	)
	return wrap(err, "upsert installed ref %s", r.Ref)
}

const installedRefColumns = `installation, ref, origin, commit_id, latest_commit, installed_size, deploy_dir,
	is_current, subpaths, eol, eol_rebase, appdata_name, appdata_summary, appdata_version, appdata_license,
	metadata, appdata`

func scanInstalledRef(row interface{ Scan(...any) error }) (*InstalledRef, error) {
	var r InstalledRef
	var size int64
	var subpaths sql.NullString
	if err := row.Scan(
		&r.Installation,
		&r.Ref,
		&r.Origin,
		&r.Commit,
		&r.LatestCommit,
		&size,
		&r.DeployDir,
		&r.IsCurrent,
		&subpaths,
		&r.EOL,
		&r.EOLRebase,
		&r.AppdataName,
		&r.AppdataSummary,
		&r.AppdataVersion,
		&r.AppdataLicense,
		&r.Metadata,
		&r.Appdata,
	); err != nil {
		return nil, err
	}
	var err error
	if r.InstalledSize, err = convert.Uint64(size); err != nil {
		return nil, err
	}
	if r.Subpaths, err = decodeList(subpaths); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetInstalledRef looks up a deployed ref.
func (s *Store) GetInstalledRef(installation, ref string) (*InstalledRef, error) {
	row := s.db.QueryRow(`SELECT `+installedRefColumns+` FROM installed_refs WHERE installation = ? AND ref = ?`,
		installation, ref)
	r, err := scanInstalledRef(row)
	if err != nil {
		return nil, wrap(err, "installed ref %s", ref)
	}
	return r, nil
}

// ListInstalledRefs returns deployed refs in installation order.
func (s *Store) ListInstalledRefs(installation string) ([]*InstalledRef, error) {
	rows, err := s.db.Query(`SELECT `+installedRefColumns+` FROM installed_refs WHERE installation = ? ORDER BY position`,
		installation)
	if err != nil {
		return nil, wrap(err, "list installed refs")
	}
	defer rows.Close()

	out := []*InstalledRef{}
	for rows.Next() {
		r, err := scanInstalledRef(rows)
		if err != nil {
			return nil, wrap(err, "scan installed ref row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "iterate installed refs")
	}
	return out, nil
}

// DeleteInstalledRef removes a deployed ref.
func (s *Store) DeleteInstalledRef(installation, ref string) error {
	result, err := s.db.Exec(`DELETE FROM installed_refs WHERE installation = ? AND ref = ?`, installation, ref)
	if err != nil {
		return wrap(err, "delete installed ref %s", ref)
	}
	return expectRow(result, "installed ref %s", ref)
}

// Related ref operations

// InsertRelatedRef records a related ref of ref in remote.
func (s *Store) InsertRelatedRef(r *RelatedRef) error {
	subpaths, err := encodeList(r.Subpaths)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO related_refs
		(installation, remote, ref, related, subpaths, should_download, should_delete, should_autoprune)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.Installation,
		r.Remote,
		r.Ref,
		r.Related,
		subpaths,
		r.ShouldDownload,
		r.ShouldDelete,
		r.ShouldAutoprune,
	)
	return wrap(err, "insert related ref %s", r.Related)
}

// ListRelatedRefs returns the related refs of ref in remote.
func (s *Store) ListRelatedRefs(installation, remote, ref string) ([]*RelatedRef, error) {
	rows, err := s.db.Query(`
		SELECT installation, remote, ref, related, subpaths, should_download, should_delete, should_autoprune
		FROM related_refs
		WHERE installation = ? AND remote = ? AND ref = ?
		ORDER BY related
	`, installation, remote, ref)
	if err != nil {
		return nil, wrap(err, "list related refs of %s", ref)
	}
	defer rows.Close()

	out := []*RelatedRef{}
	for rows.Next() {
		var r RelatedRef
		var subpaths sql.NullString
		if err := rows.Scan(
			&r.Installation,
			&r.Remote,
			&r.Ref,
			&r.Related,
			&subpaths,
			&r.ShouldDownload,
			&r.ShouldDelete,
			&r.ShouldAutoprune,
		); err != nil {
			return nil, wrap(err, "scan related ref row")
		}
		if r.Subpaths, err = decodeList(subpaths); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "iterate related refs")
	}
	return out, nil
}
