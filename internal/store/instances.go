package store

// InsertInstance records a running sandbox.
func (s *Store) InsertInstance(inst *Instance) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO instances
		(id, app, arch, branch, commit_id, runtime, runtime_commit, pid, child_pid, running, info)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inst.ID,
		inst.App,
		inst.Arch,
		inst.Branch,
		inst.Commit,
		inst.Runtime,
		inst.RuntimeCommit,
		inst.PID,
		inst.ChildPID,
		inst.Running,
		inst.Info,
	)
	return wrap(err, "insert instance %s", inst.ID)
}

// ListInstances returns all sandboxes, running or not.
func (s *Store) ListInstances() ([]*Instance, error) {
	rows, err := s.db.Query(`
		SELECT id, app, arch, branch, commit_id, runtime, runtime_commit, pid, child_pid, running, info
		FROM instances
		ORDER BY id
	`)
	if err != nil {
		return nil, wrap(err, "list instances")
	}
	defer rows.Close()

	out := []*Instance{}
	for rows.Next() {
		var inst Instance
		if err := rows.Scan(
			&inst.ID,
			&inst.App,
			&inst.Arch,
			&inst.Branch,
			&inst.Commit,
			&inst.Runtime,
			&inst.RuntimeCommit,
			&inst.PID,
			&inst.ChildPID,
			&inst.Running,
			&inst.Info,
		); err != nil {
			return nil, wrap(err, "scan instance row")
		}
		out = append(out, &inst)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "iterate instances")
	}
	return out, nil
}
