package flatpak

import "github.com/blackwell-systems/goflatpak/internal/native"

func (r *RemoteRef) RemoteName() (string, error) { return r.str(native.RemoteRefGetRemoteName) }

func (r *RemoteRef) DownloadSize() (uint64, error) {
	return r.size(native.RemoteRefGetDownloadSize)
}

func (r *RemoteRef) InstalledSize() (uint64, error) {
	return r.size(native.RemoteRefGetInstalledSize)
}

// Metadata returns the ref's metadata file as published by the remote, or
// nil if the remote did not publish one.
func (r *RemoteRef) Metadata() ([]byte, error) { return r.bytes(native.RemoteRefGetMetadata) }

func (r *RemoteRef) EOL() (*string, error)       { return r.optStr(native.RemoteRefGetEOL) }
func (r *RemoteRef) EOLRebase() (*string, error) { return r.optStr(native.RemoteRefGetEOLRebase) }
