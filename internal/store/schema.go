package store

const schema = `
CREATE TABLE IF NOT EXISTS installations (
    id TEXT PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    display_name TEXT,
    is_user BOOLEAN NOT NULL DEFAULT 0,
    priority INTEGER NOT NULL DEFAULT 0,
    read_only BOOLEAN NOT NULL DEFAULT 0,
    min_free_space INTEGER NOT NULL DEFAULT 0,
    languages TEXT
);

CREATE TABLE IF NOT EXISTS remotes (
    installation TEXT NOT NULL,
    name TEXT NOT NULL,
    url TEXT,
    title TEXT,
    comment TEXT,
    description TEXT,
    homepage TEXT,
    icon TEXT,
    collection_id TEXT,
    default_branch TEXT,
    main_ref TEXT,
    filter TEXT,
    disabled BOOLEAN NOT NULL DEFAULT 0,
    nodeps BOOLEAN NOT NULL DEFAULT 0,
    noenumerate BOOLEAN NOT NULL DEFAULT 0,
    gpg_verify BOOLEAN NOT NULL DEFAULT 1,
    gpg_key BLOB,
    prio INTEGER NOT NULL DEFAULT 1,
    remote_type INTEGER NOT NULL DEFAULT 0,
    offline BOOLEAN NOT NULL DEFAULT 0,
    position INTEGER NOT NULL,
    PRIMARY KEY (installation, name),
    FOREIGN KEY (installation) REFERENCES installations(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS remote_refs (
    installation TEXT NOT NULL,
    remote TEXT NOT NULL,
    ref TEXT NOT NULL,
    commit_id TEXT NOT NULL,
    download_size INTEGER NOT NULL DEFAULT 0,
    installed_size INTEGER NOT NULL DEFAULT 0,
    metadata BLOB,
    eol TEXT,
    eol_rebase TEXT,
    PRIMARY KEY (installation, remote, ref),
    FOREIGN KEY (installation, remote) REFERENCES remotes(installation, name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS installed_refs (
    installation TEXT NOT NULL,
    ref TEXT NOT NULL,
    origin TEXT NOT NULL,
    commit_id TEXT NOT NULL,
    latest_commit TEXT,
    installed_size INTEGER NOT NULL DEFAULT 0,
    deploy_dir TEXT NOT NULL,
    is_current BOOLEAN NOT NULL DEFAULT 0,
    subpaths TEXT,
    eol TEXT,
    eol_rebase TEXT,
    appdata_name TEXT,
    appdata_summary TEXT,
    appdata_version TEXT,
    appdata_license TEXT,
    metadata BLOB,
    appdata BLOB,
    position INTEGER NOT NULL,
    PRIMARY KEY (installation, ref),
    FOREIGN KEY (installation) REFERENCES installations(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS related_refs (
    installation TEXT NOT NULL,
    remote TEXT NOT NULL,
    ref TEXT NOT NULL,
    related TEXT NOT NULL,
    subpaths TEXT,
    should_download BOOLEAN NOT NULL DEFAULT 1,
    should_delete BOOLEAN NOT NULL DEFAULT 1,
    should_autoprune BOOLEAN NOT NULL DEFAULT 0,
    PRIMARY KEY (installation, remote, ref, related)
);

CREATE TABLE IF NOT EXISTS instances (
    id TEXT PRIMARY KEY,
    app TEXT NOT NULL,
    arch TEXT NOT NULL,
    branch TEXT NOT NULL,
    commit_id TEXT,
    runtime TEXT,
    runtime_commit TEXT,
    pid INTEGER NOT NULL DEFAULT 0,
    child_pid INTEGER NOT NULL DEFAULT 0,
    running BOOLEAN NOT NULL DEFAULT 1,
    info BLOB
);

CREATE TABLE IF NOT EXISTS config (
    installation TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (installation, key),
    FOREIGN KEY (installation) REFERENCES installations(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS overrides (
    installation TEXT NOT NULL,
    app_id TEXT NOT NULL,
    data TEXT NOT NULL,
    PRIMARY KEY (installation, app_id),
    FOREIGN KEY (installation) REFERENCES installations(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_remote_refs_remote ON remote_refs(installation, remote);
CREATE INDEX IF NOT EXISTS idx_installed_refs_position ON installed_refs(installation, position);
CREATE INDEX IF NOT EXISTS idx_related_refs_ref ON related_refs(installation, remote, ref);
`
