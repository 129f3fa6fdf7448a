package native

// FlatpakError codes (flatpak-error-quark).
const (
	FlatpakErrorAlreadyInstalled     = 0
	FlatpakErrorNotInstalled         = 1
	FlatpakErrorOnlyPulled           = 2
	FlatpakErrorDifferentRemote      = 3
	FlatpakErrorAborted              = 4
	FlatpakErrorSkipped              = 5
	FlatpakErrorNeedNewFlatpak       = 6
	FlatpakErrorRemoteNotFound       = 7
	FlatpakErrorRuntimeNotFound      = 8
	FlatpakErrorDowngrade            = 9
	FlatpakErrorInvalidRef           = 10
	FlatpakErrorInvalidData          = 11
	FlatpakErrorUntrusted            = 12
	FlatpakErrorSetupFailed          = 13
	FlatpakErrorExportFailed         = 14
	FlatpakErrorRemoteUsed           = 15
	FlatpakErrorRuntimeUsed          = 16
	FlatpakErrorInvalidName          = 17
	FlatpakErrorOutOfSpace           = 18
	FlatpakErrorWrongUser            = 19
	FlatpakErrorNotCached            = 20
	FlatpakErrorRefNotFound          = 21
	FlatpakErrorPermissionDenied     = 22
	FlatpakErrorAuthenticationFailed = 23
	FlatpakErrorNotAuthorized        = 24
)

// GIOErrorEnum codes (g-io-error-quark).
const (
	IOErrorFailed             = 0
	IOErrorNotFound           = 1
	IOErrorExists             = 2
	IOErrorIsDirectory        = 3
	IOErrorNotDirectory       = 4
	IOErrorNotEmpty           = 5
	IOErrorNotRegularFile     = 6
	IOErrorNotSymbolicLink    = 7
	IOErrorNotMountableFile   = 8
	IOErrorFilenameTooLong    = 9
	IOErrorInvalidFilename    = 10
	IOErrorTooManyLinks       = 11
	IOErrorNoSpace            = 12
	IOErrorInvalidArgument    = 13
	IOErrorPermissionDenied   = 14
	IOErrorNotSupported       = 15
	IOErrorClosed             = 18
	IOErrorCancelled          = 19
	IOErrorReadOnly           = 21
	IOErrorTimedOut           = 24
	IOErrorHostNotFound       = 28
	IOErrorPartialInput       = 34
	IOErrorInvalidData        = 35
	IOErrorHostUnreachable    = 37
	IOErrorNetworkUnreachable = 38
	IOErrorConnectionRefused  = 39
	IOErrorProxyFailed        = 40
	IOErrorConnectionClosed   = 44
	IOErrorNotConnected       = 45
)

// GKeyFileError codes (g-key-file-error-quark).
const (
	KeyFileErrorUnknownEncoding = 0
	KeyFileErrorParse           = 1
	KeyFileErrorNotFound        = 2
	KeyFileErrorKeyNotFound     = 3
	KeyFileErrorGroupNotFound   = 4
	KeyFileErrorInvalidValue    = 5
)

// GResolverError codes (g-resolver-error-quark).
const (
	ResolverErrorNotFound         = 0
	ResolverErrorTemporaryFailure = 1
	ResolverErrorInternal         = 2
)

// FlatpakPortalError codes (flatpak-portal-error-quark).
const (
	PortalErrorFailed          = 0
	PortalErrorInvalidArgument = 1
	PortalErrorNotFound        = 2
	PortalErrorExists          = 3
	PortalErrorNotAllowed      = 4
	PortalErrorCancelled       = 5
	PortalErrorWindowDestroyed = 6
)
