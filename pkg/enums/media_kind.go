package enums

import "slices"

// MediaKind says which record an uploaded image belongs to. It also picks the
// object-key folder: a banner image lands under banners/.
type MediaKind string

const (
	MediaKindProduct     MediaKind = "product"
	MediaKindBanner      MediaKind = "banner"
	MediaKindTestimonial MediaKind = "testimonial"
)

var mediaKinds = []MediaKind{MediaKindProduct, MediaKindBanner, MediaKindTestimonial}

func (m MediaKind) String() string { return string(m) }

func (m MediaKind) Folder() string { return string(m) + "s" }

func (m MediaKind) IsValid() bool { return slices.Contains(mediaKinds, m) }

func ParseMediaKind(value string) (MediaKind, error) {
	return parseMember("media kind", value, mediaKinds)
}
