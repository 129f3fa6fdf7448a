package nativesim

import (
	"os"
	"strconv"
	"strings"

	"github.com/blackwell-systems/goflatpak/internal/keyfile"
	"github.com/blackwell-systems/goflatpak/internal/native"
	"github.com/blackwell-systems/goflatpak/internal/store"
)

// Ref kinds.
const (
	kindApp     = 0
	kindRuntime = 1
)

type refObj struct {
	kind         int
	name         string
	arch         string
	branch       string
	commit       *string
	collectionID *string

	installed *store.InstalledRef
	remote    *store.RemoteRef
	bundle    *bundleData
	related   *store.RelatedRef
}

type bundleData struct {
	path          string
	origin        *string
	runtimeRepo   *string
	installedSize uint64
	metadata      []byte
	appstream     []byte
	icons         map[int][]byte
}

func (r *refObj) format() string {
	return formatRef(r.kind, r.name, r.arch, r.branch)
}

func formatRef(kind int, name, arch, branch string) string {
	prefix := "app"
	if kind == kindRuntime {
		prefix = "runtime"
	}
	return prefix + "/" + name + "/" + arch + "/" + branch
}

func validName(name string) bool {
	if name == "" || len(name) > 255 {
		return false
	}
	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return false
	}
	for _, p := range parts {
		if p == "" || (p[0] >= '0' && p[0] <= '9') {
			return false
		}
		for _, c := range p {
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-') {
				return false
			}
		}
	}
	return true
}

func validBranch(branch string) bool {
	if branch == "" || branch[0] == '.' {
		return false
	}
	for _, c := range branch {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '.') {
			return false
		}
	}
	return true
}

func parseRef(ref string) (*refObj, *native.GError) {
	parts := strings.Split(ref, "/")
	if len(parts) != 4 {
		return nil, flatpakErr(native.FlatpakErrorInvalidRef, "Wrong number of components in %s", ref)
	}
	r := &refObj{name: parts[1], arch: parts[2], branch: parts[3]}
	switch parts[0] {
	case "app":
		r.kind = kindApp
	case "runtime":
		r.kind = kindRuntime
	default:
		return nil, flatpakErr(native.FlatpakErrorInvalidRef, "%s is not application or runtime", ref)
	}
	if !validName(r.name) {
		return nil, flatpakErr(native.FlatpakErrorInvalidRef, "Invalid name %s", r.name)
	}
	if r.arch == "" {
		return nil, flatpakErr(native.FlatpakErrorInvalidRef, "Invalid arch: empty")
	}
	if !validBranch(r.branch) {
		return nil, flatpakErr(native.FlatpakErrorInvalidRef, "Invalid branch %s", r.branch)
	}
	return r, nil
}

func mustParse(ref string) *refObj {
	r, gerr := parseRef(ref)
	if gerr != nil {
		// rows in the store are validated on the way in
		return &refObj{name: ref}
	}
	return r
}

// RefParse implements native.Library.
func (s *Sim) RefParse(ref native.CString) (native.Ptr, *native.GError) {
	r, gerr := parseRef(string(ref.Data))
	if gerr != nil {
		return native.Null, gerr
	}
	return s.alloc(native.TypeRef, catGObject, r), nil
}

func (s *Sim) newInstalledRef(row *store.InstalledRef) native.Ptr {
	r := mustParse(row.Ref)
	r.commit = strPtr(row.Commit)
	r.installed = row
	return s.alloc(native.TypeInstalledRef, catGObject, r)
}

func (s *Sim) newRemoteRef(row *store.RemoteRef) native.Ptr {
	r := mustParse(row.Ref)
	r.commit = strPtr(row.Commit)
	r.remote = row
	return s.alloc(native.TypeRemoteRef, catGObject, r)
}

func (s *Sim) newRelatedRef(row *store.RelatedRef, commit *string) native.Ptr {
	r := mustParse(row.Related)
	r.commit = commit
	r.related = row
	return s.alloc(native.TypeRelatedRef, catGObject, r)
}

func parseBundle(path string, data []byte) (*refObj, *native.GError) {
	f, err := keyfile.Parse(data)
	if err != nil || !f.HasGroup("Flatpak Bundle") {
		return nil, flatpakErr(native.FlatpakErrorInvalidData, "Invalid bundle %s", path)
	}
	refStr, _ := f.Lookup("Flatpak Bundle", "Ref")
	r, gerr := parseRef(refStr)
	if gerr != nil {
		return nil, flatpakErr(native.FlatpakErrorInvalidData, "Invalid bundle ref: %s", gerr.Message)
	}
	commit, ok := f.Lookup("Flatpak Bundle", "Commit")
	if !ok {
		return nil, flatpakErr(native.FlatpakErrorInvalidData, "Invalid bundle, no commit")
	}
	r.commit = &commit

	b := &bundleData{path: path, icons: make(map[int][]byte)}
	if v, ok := f.Lookup("Flatpak Bundle", "Origin"); ok {
		b.origin = &v
	}
	if v, ok := f.Lookup("Flatpak Bundle", "RuntimeRepo"); ok {
		b.runtimeRepo = &v
	}
	if v, ok := f.Lookup("Flatpak Bundle", "InstalledSize"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, flatpakErr(native.FlatpakErrorInvalidData, "Invalid bundle size %q", v)
		}
		b.installedSize = n
	}
	if v, ok := f.Lookup("Flatpak Bundle", "Metadata"); ok {
		b.metadata = []byte(v)
	}
	if v, ok := f.Lookup("Flatpak Bundle", "Appstream"); ok {
		b.appstream = []byte(v)
	}
	for _, size := range []int{64, 128} {
		if v, ok := f.Lookup("Flatpak Bundle", "Icon"+strconv.Itoa(size)); ok {
			b.icons[size] = []byte(v)
		}
	}
	r.bundle = b
	return r, nil
}

// BundleRefNew implements native.Library. The simulator's bundle format is a
// key file with a [Flatpak Bundle] group.
func (s *Sim) BundleRefNew(file native.Ptr) (native.Ptr, *native.GError) {
	f := s.get(file, "flatpak_bundle_ref_new")
	if f == nil {
		return native.Null, ioErr(native.IOErrorInvalidArgument, "invalid file")
	}
	path := f.value.(*fileObj).path
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return native.Null, ioErr(native.IOErrorNotFound, "Error opening file %s: No such file or directory", path)
		}
		if os.IsPermission(err) {
			return native.Null, ioErr(native.IOErrorPermissionDenied, "Error opening file %s: Permission denied", path)
		}
		return native.Null, ioErr(native.IOErrorFailed, "%v", err)
	}
	r, gerr := parseBundle(path, data)
	if gerr != nil {
		return native.Null, gerr
	}
	return s.alloc(native.TypeBundleRef, catGObject, r), nil
}

// BundleRefGetIcon implements native.Library.
func (s *Sim) BundleRefGetIcon(ref native.Ptr, size int) native.Ptr {
	o := s.get(ref, "flatpak_bundle_ref_get_icon")
	if o == nil {
		return native.Null
	}
	r, ok := o.value.(*refObj)
	if !ok || r.bundle == nil {
		return native.Null
	}
	icon, ok := r.bundle.icons[size]
	if !ok {
		return native.Null
	}
	return s.newBytes(icon)
}

// InstalledRefLoadMetadata implements native.Library.
func (s *Sim) InstalledRefLoadMetadata(ref native.Ptr, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	r := s.installedRef(ref, "flatpak_installed_ref_load_metadata")
	if r == nil {
		return native.Null, ioErr(native.IOErrorInvalidArgument, "not an installed ref")
	}
	if r.installed.Metadata == nil {
		return native.Null, ioErr(native.IOErrorNotFound, "No metadata for %s", r.format())
	}
	return s.newBytes(r.installed.Metadata), nil
}

// InstalledRefLoadAppdata implements native.Library.
func (s *Sim) InstalledRefLoadAppdata(ref native.Ptr, cancellable native.Ptr) (native.Ptr, *native.GError) {
	if s.CancellableIsCancelled(cancellable) {
		return native.Null, cancelledErr()
	}
	r := s.installedRef(ref, "flatpak_installed_ref_load_appdata")
	if r == nil {
		return native.Null, ioErr(native.IOErrorInvalidArgument, "not an installed ref")
	}
	if r.installed.Appdata == nil {
		return native.Null, ioErr(native.IOErrorNotFound, "No appdata for %s", r.format())
	}
	return s.newBytes(r.installed.Appdata), nil
}

func (s *Sim) installedRef(p native.Ptr, op string) *refObj {
	o := s.get(p, op)
	if o == nil {
		return nil
	}
	r, ok := o.value.(*refObj)
	if !ok || r.installed == nil {
		return nil
	}
	return r
}

func cancelledErr() *native.GError {
	return ioErr(native.IOErrorCancelled, "Operation was cancelled")
}
