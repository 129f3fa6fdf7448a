package flatpak

import "github.com/blackwell-systems/goflatpak/internal/native"

// Instance is a running sandbox.
type Instance struct {
	object
}

func (i *Instance) ID() (string, error)     { return i.str(native.InstanceGetID) }
func (i *Instance) App() (string, error)    { return i.str(native.InstanceGetApp) }
func (i *Instance) Arch() (string, error)   { return i.str(native.InstanceGetArch) }
func (i *Instance) Branch() (string, error) { return i.str(native.InstanceGetBranch) }

func (i *Instance) Commit() (*string, error)        { return i.optStr(native.InstanceGetCommit) }
func (i *Instance) Runtime() (*string, error)       { return i.optStr(native.InstanceGetRuntime) }
func (i *Instance) RuntimeCommit() (*string, error) { return i.optStr(native.InstanceGetRuntimeCommit) }

// PID is the pid of the bwrap process.
func (i *Instance) PID() (int, error) { return i.integer(native.InstanceGetPID) }

// ChildPID is the pid of the sandboxed application, 0 while it starts.
func (i *Instance) ChildPID() (int, error) { return i.integer(native.InstanceGetChildPID) }

// Info returns the instance's info key file.
func (i *Instance) Info() (map[string]map[string]string, error) {
	return i.keyFile(native.InstanceGetInfo)
}

// IsRunning reports whether the sandbox is still alive.
func (i *Instance) IsRunning() (bool, error) { return i.boolean(native.InstanceIsRunning) }
