package flatpak

import "github.com/blackwell-systems/goflatpak/internal/native"

type errKey struct {
	domain string
	code   int
}

var errTable = map[errKey]Kind{
	{native.DomainFlatpak, native.FlatpakErrorAlreadyInstalled}:     AlreadyExists,
	{native.DomainFlatpak, native.FlatpakErrorNotInstalled}:         NotFound,
	{native.DomainFlatpak, native.FlatpakErrorAborted}:              Cancelled,
	{native.DomainFlatpak, native.FlatpakErrorNeedNewFlatpak}:       Unsupported,
	{native.DomainFlatpak, native.FlatpakErrorRemoteNotFound}:       NotFound,
	{native.DomainFlatpak, native.FlatpakErrorRuntimeNotFound}:      NotFound,
	{native.DomainFlatpak, native.FlatpakErrorInvalidRef}:           InvalidData,
	{native.DomainFlatpak, native.FlatpakErrorInvalidData}:          InvalidData,
	{native.DomainFlatpak, native.FlatpakErrorInvalidName}:          InvalidData,
	{native.DomainFlatpak, native.FlatpakErrorRefNotFound}:          NotFound,
	{native.DomainFlatpak, native.FlatpakErrorPermissionDenied}:     PermissionDenied,
	{native.DomainFlatpak, native.FlatpakErrorNotAuthorized}:        PermissionDenied,
	{native.DomainFlatpak, native.FlatpakErrorAuthenticationFailed}: PermissionDenied,

	{native.DomainIO, native.IOErrorNotFound}:           NotFound,
	{native.DomainIO, native.IOErrorExists}:             AlreadyExists,
	{native.DomainIO, native.IOErrorInvalidArgument}:    InvalidData,
	{native.DomainIO, native.IOErrorInvalidData}:        InvalidData,
	{native.DomainIO, native.IOErrorPermissionDenied}:   PermissionDenied,
	{native.DomainIO, native.IOErrorReadOnly}:           PermissionDenied,
	{native.DomainIO, native.IOErrorNotSupported}:       Unsupported,
	{native.DomainIO, native.IOErrorCancelled}:          Cancelled,
	{native.DomainIO, native.IOErrorTimedOut}:           NetworkFailure,
	{native.DomainIO, native.IOErrorHostNotFound}:       NetworkFailure,
	{native.DomainIO, native.IOErrorHostUnreachable}:    NetworkFailure,
	{native.DomainIO, native.IOErrorNetworkUnreachable}: NetworkFailure,
	{native.DomainIO, native.IOErrorConnectionRefused}:  NetworkFailure,
	{native.DomainIO, native.IOErrorProxyFailed}:        NetworkFailure,
	{native.DomainIO, native.IOErrorConnectionClosed}:   NetworkFailure,
	{native.DomainIO, native.IOErrorNotConnected}:       NetworkFailure,

	{native.DomainKeyFile, native.KeyFileErrorUnknownEncoding}: InvalidData,
	{native.DomainKeyFile, native.KeyFileErrorParse}:           InvalidData,
	{native.DomainKeyFile, native.KeyFileErrorNotFound}:        NotFound,
	{native.DomainKeyFile, native.KeyFileErrorKeyNotFound}:     NotFound,
	{native.DomainKeyFile, native.KeyFileErrorGroupNotFound}:   NotFound,
	{native.DomainKeyFile, native.KeyFileErrorInvalidValue}:    InvalidData,

	{native.DomainPortal, native.PortalErrorInvalidArgument}: InvalidData,
	{native.DomainPortal, native.PortalErrorNotFound}:        NotFound,
	{native.DomainPortal, native.PortalErrorExists}:          AlreadyExists,
	{native.DomainPortal, native.PortalErrorNotAllowed}:      PermissionDenied,
	{native.DomainPortal, native.PortalErrorCancelled}:       Cancelled,
}

// Domains whose every code maps to one kind.
var domainKinds = map[string]Kind{
	native.DomainResolver: NetworkFailure,
}

// lookupKind maps a (domain, code) pair. Unmapped pairs are Unknown.
func lookupKind(domain string, code int) (Kind, bool) {
	if k, ok := errTable[errKey{domain, code}]; ok {
		return k, true
	}
	if k, ok := domainKinds[domain]; ok {
		return k, true
	}
	return Unknown, false
}
