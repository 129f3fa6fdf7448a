package flatpak

import (
	"fmt"

	"github.com/blackwell-systems/goflatpak/internal/convert"
	"github.com/blackwell-systems/goflatpak/internal/native"
)

// RemoteType is FlatpakRemoteType.
type RemoteType int

const (
	RemoteStatic RemoteType = 0
	RemoteUSB    RemoteType = 1
	RemoteLAN    RemoteType = 2
)

func (t RemoteType) String() string {
	switch t {
	case RemoteStatic:
		return "static"
	case RemoteUSB:
		return "usb"
	case RemoteLAN:
		return "lan"
	}
	return fmt.Sprintf("RemoteType(%d)", int(t))
}

// Remote is a configured (or not yet added) remote repository. Setters only
// change the local object; persist them with Installation.AddRemote or
// Installation.ModifyRemote.
type Remote struct {
	object
}

func (r *Remote) Name() (string, error)           { return r.str(native.RemoteGetName) }
func (r *Remote) URL() (*string, error)           { return r.optStr(native.RemoteGetURL) }
func (r *Remote) Title() (*string, error)         { return r.optStr(native.RemoteGetTitle) }
func (r *Remote) Comment() (*string, error)       { return r.optStr(native.RemoteGetComment) }
func (r *Remote) Description() (*string, error)   { return r.optStr(native.RemoteGetDescription) }
func (r *Remote) Homepage() (*string, error)      { return r.optStr(native.RemoteGetHomepage) }
func (r *Remote) Icon() (*string, error)          { return r.optStr(native.RemoteGetIcon) }
func (r *Remote) CollectionID() (*string, error)  { return r.optStr(native.RemoteGetCollectionID) }
func (r *Remote) DefaultBranch() (*string, error) { return r.optStr(native.RemoteGetDefaultBranch) }
func (r *Remote) MainRef() (*string, error)       { return r.optStr(native.RemoteGetMainRef) }
func (r *Remote) Filter() (*string, error)        { return r.optStr(native.RemoteGetFilter) }
func (r *Remote) Disabled() (bool, error)         { return r.boolean(native.RemoteGetDisabled) }
func (r *Remote) NoDeps() (bool, error)           { return r.boolean(native.RemoteGetNoDeps) }
func (r *Remote) NoEnumerate() (bool, error)      { return r.boolean(native.RemoteGetNoEnumerate) }
func (r *Remote) GPGVerify() (bool, error)        { return r.boolean(native.RemoteGetGPGVerify) }
func (r *Remote) Prio() (int, error)              { return r.integer(native.RemoteGetPrio) }

func (r *Remote) Type() (RemoteType, error) {
	n, err := r.integer(native.RemoteGetType)
	if err != nil {
		return 0, err
	}
	t := RemoteType(n)
	if t < RemoteStatic || t > RemoteLAN {
		return 0, newError(InvalidData, fmt.Sprintf("%s: unknown remote type %d", native.RemoteGetType.Symbol, n))
	}
	return t, nil
}

func (r *Remote) SetURL(url string) error          { return r.setStr(native.RemoteSetURL, &url) }
func (r *Remote) SetTitle(v *string) error         { return r.setStr(native.RemoteSetTitle, v) }
func (r *Remote) SetComment(v *string) error       { return r.setStr(native.RemoteSetComment, v) }
func (r *Remote) SetDescription(v *string) error   { return r.setStr(native.RemoteSetDescription, v) }
func (r *Remote) SetHomepage(v *string) error      { return r.setStr(native.RemoteSetHomepage, v) }
func (r *Remote) SetIcon(v *string) error          { return r.setStr(native.RemoteSetIcon, v) }
func (r *Remote) SetCollectionID(v *string) error  { return r.setStr(native.RemoteSetCollectionID, v) }
func (r *Remote) SetDefaultBranch(v *string) error { return r.setStr(native.RemoteSetDefaultBranch, v) }
func (r *Remote) SetMainRef(v *string) error       { return r.setStr(native.RemoteSetMainRef, v) }
func (r *Remote) SetFilter(v *string) error        { return r.setStr(native.RemoteSetFilter, v) }
func (r *Remote) SetDisabled(v bool) error         { return r.setBool(native.RemoteSetDisabled, v) }
func (r *Remote) SetNoDeps(v bool) error           { return r.setBool(native.RemoteSetNoDeps, v) }
func (r *Remote) SetNoEnumerate(v bool) error      { return r.setBool(native.RemoteSetNoEnumerate, v) }
func (r *Remote) SetGPGVerify(v bool) error        { return r.setBool(native.RemoteSetGPGVerify, v) }
func (r *Remote) SetPrio(prio int) error           { return r.setInt(native.RemoteSetPrio, int64(prio)) }

// SetGPGKey sets the key used to verify the remote's signatures.
func (r *Remote) SetGPGKey(key []byte) error {
	const op = "flatpak_remote_set_gpg_key"
	if err := r.live(op); err != nil {
		return err
	}
	if key == nil {
		return convertError(op, convert.ErrNull)
	}
	return r.call(op, func(p native.Ptr) error {
		b := convert.ToBytes(r.c.lib, key)
		defer r.c.lib.BytesUnref(b)
		r.c.lib.RemoteSetGPGKey(p, b)
		return nil
	})
}
