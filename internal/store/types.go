package store

// Installation is one flatpak installation directory.
type Installation struct {
	ID           string
	Path         string
	DisplayName  *string
	IsUser       bool
	Priority     int
	ReadOnly     bool
	MinFreeSpace uint64
	Languages    []string
}

// Remote is a configured repository. Nullable settings are nil when unset.
type Remote struct {
	Installation  string
	Name          string
	URL           *string
	Title         *string
	Comment       *string
	Description   *string
	Homepage      *string
	Icon          *string
	CollectionID  *string
	DefaultBranch *string
	MainRef       *string
	Filter        *string
	Disabled      bool
	NoDeps        bool
	NoEnumerate   bool
	GPGVerify     bool
	GPGKey        []byte
	Prio          int
	Type          int
	// Offline makes every network operation against the remote fail.
	Offline bool
}

// RemoteRef is one entry of a remote's catalog.
type RemoteRef struct {
	Installation  string
	Remote        string
	Ref           string
	Commit        string
	DownloadSize  uint64
	InstalledSize uint64
	Metadata      []byte
	EOL           *string
	EOLRebase     *string
}

// InstalledRef is a deployed ref.
type InstalledRef struct {
	Installation   string
	Ref            string
	Origin         string
	Commit         string
	LatestCommit   *string
	InstalledSize  uint64
	DeployDir      string
	IsCurrent      bool
	Subpaths       []string
	EOL            *string
	EOLRebase      *string
	AppdataName    *string
	AppdataSummary *string
	AppdataVersion *string
	AppdataLicense *string
	Metadata       []byte
	Appdata        []byte
}

// RelatedRef links a ref to an extension or locale ref.
type RelatedRef struct {
	Installation    string
	Remote          string
	Ref             string
	Related         string
	Subpaths        []string
	ShouldDownload  bool
	ShouldDelete    bool
	ShouldAutoprune bool
}

// Instance is a running sandbox.
type Instance struct {
	ID            string
	App           string
	Arch          string
	Branch        string
	Commit        *string
	Runtime       *string
	RuntimeCommit *string
	PID           int
	ChildPID      int
	Running       bool
	Info          []byte
}
