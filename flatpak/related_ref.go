package flatpak

import "github.com/blackwell-systems/goflatpak/internal/native"

func (r *RelatedRef) Subpaths() ([]string, error) { return r.strv(native.RelatedRefGetSubpaths) }

func (r *RelatedRef) ShouldDownload() (bool, error) {
	return r.boolean(native.RelatedRefShouldDownload)
}

func (r *RelatedRef) ShouldDelete() (bool, error) {
	return r.boolean(native.RelatedRefShouldDelete)
}

func (r *RelatedRef) ShouldAutoprune() (bool, error) {
	return r.boolean(native.RelatedRefShouldAutoprune)
}
