package native

// Library is the set of native entry points the bridge relies on.
//
// Methods returning *GError report failure through it; a nil *GError together
// with a failure-shaped result (false, Null) means the native side failed
// without setting an error. Pointers returned from methods named New*, Parse*,
// List*, Fetch*, Load* and Get*Installation* are transfer full unless the
// method documents otherwise.
type Library interface {
	// Name identifies the backend in logs.
	Name() string

	// GObject.
	Ref(p Ptr) Ptr
	Unref(p Ptr)
	TypeName(p Ptr) string

	// Descriptor-dispatched accessors.
	GetString(p Ptr, m Method) CString
	GetStrv(p Ptr, m Method) []CString
	GetBool(p Ptr, m Method) bool
	GetInt(p Ptr, m Method) int64
	GetUint64(p Ptr, m Method) uint64
	GetObject(p Ptr, m Method) Ptr
	// GetPointer returns a non-GObject pointer (GBytes, GKeyFile, GPtrArray).
	GetPointer(p Ptr, m Method) Ptr
	SetString(p Ptr, m Method, v CString)
	SetBool(p Ptr, m Method, v bool)
	SetInt(p Ptr, m Method, v int64)

	// GLib containers.
	BytesNew(data []byte) Ptr
	BytesData(b Ptr) []byte
	BytesUnref(b Ptr)
	PtrArrayNew(elems []Ptr) Ptr
	PtrArrayLen(a Ptr) int
	PtrArrayIndex(a Ptr, i int) Ptr
	PtrArrayUnref(a Ptr)
	// ListElements walks a GList. ListFree frees the list, unreffing each
	// element first when full is set.
	ListElements(l Ptr) []Ptr
	ListFree(l Ptr, full bool)
	KeyFileToData(k Ptr) ([]byte, *GError)
	KeyFileUnref(k Ptr)
	FileNewForPath(path CString) Ptr
	FileGetPath(f Ptr) CString

	// GCancellable.
	CancellableNew() Ptr
	CancellableCancel(c Ptr)
	CancellableIsCancelled(c Ptr) bool

	// Free functions.
	DefaultArch() CString
	SupportedArches() []CString
	GetSystemInstallations(cancellable Ptr) (Ptr, *GError)
	InstanceGetAll() Ptr

	// FlatpakInstallation.
	InstallationNewSystem(cancellable Ptr) (Ptr, *GError)
	InstallationNewUser(cancellable Ptr) (Ptr, *GError)
	InstallationNewForPath(file Ptr, user bool, cancellable Ptr) (Ptr, *GError)
	InstallationListInstalledRefs(inst Ptr, cancellable Ptr) (Ptr, *GError)
	InstallationListInstalledRefsByKind(inst Ptr, kind int, cancellable Ptr) (Ptr, *GError)
	InstallationListInstalledRefsForUpdate(inst Ptr, cancellable Ptr) (Ptr, *GError)
	InstallationGetInstalledRef(inst Ptr, kind int, name, arch, branch CString, cancellable Ptr) (Ptr, *GError)
	InstallationGetCurrentInstalledApp(inst Ptr, name CString, cancellable Ptr) (Ptr, *GError)
	InstallationListRemotes(inst Ptr, cancellable Ptr) (Ptr, *GError)
	InstallationGetRemoteByName(inst Ptr, name CString, cancellable Ptr) (Ptr, *GError)
	InstallationAddRemote(inst, remote Ptr, ifNeeded bool, cancellable Ptr) (bool, *GError)
	InstallationModifyRemote(inst, remote Ptr, cancellable Ptr) (bool, *GError)
	InstallationRemoveRemote(inst Ptr, name CString, cancellable Ptr) (bool, *GError)
	InstallationUpdateRemoteSync(inst Ptr, name CString, cancellable Ptr) (bool, *GError)
	InstallationListRemoteRefsSync(inst Ptr, remote CString, cancellable Ptr) (Ptr, *GError)
	InstallationFetchRemoteRefSync(inst Ptr, remote CString, kind int, name, arch, branch CString, cancellable Ptr) (Ptr, *GError)
	InstallationFetchRemoteMetadataSync(inst Ptr, remote CString, ref Ptr, cancellable Ptr) (Ptr, *GError)
	InstallationFetchRemoteSizeSync(inst Ptr, remote CString, ref Ptr, cancellable Ptr) (download, installed uint64, ok bool, gerr *GError)
	InstallationListInstalledRelatedRefsSync(inst Ptr, remote, ref CString, cancellable Ptr) (Ptr, *GError)
	InstallationListRemoteRelatedRefsSync(inst Ptr, remote, ref CString, cancellable Ptr) (Ptr, *GError)
	InstallationLoadAppOverrides(inst Ptr, appID CString, cancellable Ptr) (CString, *GError)
	InstallationInstallRefFile(inst Ptr, data Ptr, cancellable Ptr) (Ptr, *GError)
	InstallationGetConfig(inst Ptr, key CString, cancellable Ptr) (CString, *GError)
	InstallationSetConfigSync(inst Ptr, key, value CString, cancellable Ptr) (bool, *GError)
	InstallationGetDefaultLanguages(inst Ptr) ([]CString, *GError)
	InstallationGetMinFreeSpaceBytes(inst Ptr) (uint64, bool, *GError)
	InstallationDropCaches(inst Ptr, cancellable Ptr) (bool, *GError)

	// FlatpakRemote.
	RemoteNew(name CString) Ptr
	RemoteSetGPGKey(remote Ptr, data Ptr)

	// FlatpakRef and subclasses.
	RefParse(ref CString) (Ptr, *GError)
	BundleRefNew(file Ptr) (Ptr, *GError)
	BundleRefGetIcon(ref Ptr, size int) Ptr
	InstalledRefLoadMetadata(ref Ptr, cancellable Ptr) (Ptr, *GError)
	InstalledRefLoadAppdata(ref Ptr, cancellable Ptr) (Ptr, *GError)

	// FlatpakTransaction.
	TransactionNewForInstallation(inst Ptr, cancellable Ptr) (Ptr, *GError)
	TransactionAddInstall(t Ptr, remote, ref CString, subpaths []CString) (bool, *GError)
	TransactionAddUpdate(t Ptr, ref CString, subpaths []CString, commit CString) (bool, *GError)
	TransactionAddUninstall(t Ptr, ref CString) (bool, *GError)
	TransactionAddInstallBundle(t Ptr, file Ptr, gpgData Ptr) (bool, *GError)
	TransactionAddInstallFlatpakref(t Ptr, data Ptr) (bool, *GError)
	TransactionGetOperations(t Ptr) Ptr
	TransactionRun(t Ptr, cancellable Ptr) (bool, *GError)
	ConnectTransaction(t Ptr, s TransactionSignals) []uint64
	ConnectProgress(progress Ptr, changed func()) uint64
	Disconnect(instance Ptr, handlerID uint64)
}

// TransactionSignals receives the signals of a running FlatpakTransaction.
// Implementations are invoked on the native thread that is executing
// TransactionRun and must not block on the Go side of the bridge.
type TransactionSignals interface {
	NewOperation(op, progress Ptr)
	OperationDone(op Ptr, commit CString, result int)
	// OperationError returns true to continue the transaction.
	OperationError(op Ptr, err *GError, details int) bool
	// Ready returns false to abort before any operation starts.
	Ready() bool
}

// Operation error details flags.
const (
	ErrorDetailNonFatal = 1 << 0
)
