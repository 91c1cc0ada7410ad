// Package media hands out signed upload URLs for catalog, banner and testimonial images.
package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/vaporhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
)

type gcsClient interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	PublicURL(bucket, object string) string
	DeleteObject(ctx context.Context, bucket, object string) error
}

// Service exposes media-presign semantics.
type Service interface {
	PresignUpload(ctx context.Context, input PresignInput) (*PresignOutput, error)
	Discard(ctx context.Context, objectKey string) error
}

type service struct {
	gcs       gcsClient
	bucket    string
	uploadTTL time.Duration
	maxBytes  int64
	now       func() time.Time
}

// NewService constructs a media service backed by the GCS signer.
func NewService(gcs gcsClient, bucket string, uploadTTL time.Duration, maxUploadMB int) (Service, error) {
	if gcs == nil {
		return nil, fmt.Errorf("gcs client required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if uploadTTL <= 0 {
		return nil, fmt.Errorf("upload ttl must be positive")
	}
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{
		gcs:       gcs,
		bucket:    bucket,
		uploadTTL: uploadTTL,
		maxBytes:  int64(maxUploadMB) * 1024 * 1024,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

type PresignInput struct {
	Kind        string `json:"kind" validate:"required"`
	FileName    string `json:"fileName" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// PresignOutput tells the client where to PUT the file and which URL to store once the PUT succeeds.
type PresignOutput struct {
	ObjectKey    string    `json:"objectKey"`
	SignedPUTURL string    `json:"signedPutUrl"`
	PublicURL    string    `json:"publicUrl"`
	ContentType  string    `json:"contentType"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (s *service) PresignUpload(ctx context.Context, input PresignInput) (*PresignOutput, error) {
	kind, err := enums.ParseMediaKind(strings.TrimSpace(input.Kind))
	if err != nil {
		return nil, pkgerrors.Validation("invalid upload", pkgerrors.FieldError{Field: "kind", Message: "must be product, banner or testimonial"})
	}
	fileName := sanitizeFileName(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.Validation("invalid upload", pkgerrors.FieldError{Field: "fileName", Message: "is required"})
	}
	contentType, err := normalizeMimeType(input.ContentType)
	if err != nil || !isImage(contentType) {
		return nil, pkgerrors.Validation("invalid upload", pkgerrors.FieldError{Field: "contentType", Message: "must be a png, jpeg, webp or gif image"})
	}
	if input.SizeBytes < 0 || input.SizeBytes > s.maxBytes {
		return nil, pkgerrors.Validation("invalid upload", pkgerrors.FieldError{Field: "sizeBytes", Message: fmt.Sprintf("must be at most %d bytes", s.maxBytes)})
	}

	now := s.now()
	key := objectKey(kind, now, fileName)
	signed, err := s.gcs.SignedURL(s.bucket, key, contentType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}
	return &PresignOutput{
		ObjectKey:    key,
		SignedPUTURL: signed,
		PublicURL:    s.gcs.PublicURL(s.bucket, key),
		ContentType:  contentType,
		ExpiresAt:    now.Add(s.uploadTTL),
	}, nil
}

// Discard removes an uploaded object that never made it into a record.
func (s *service) Discard(ctx context.Context, key string) error {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if !ownedKey(key) {
		return pkgerrors.Validation("invalid object key", pkgerrors.FieldError{Field: "objectKey", Message: "is not a media upload"})
	}
	if err := s.gcs.DeleteObject(ctx, s.bucket, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete object")
	}
	return nil
}

func objectKey(kind enums.MediaKind, at time.Time, fileName string) string {
	return fmt.Sprintf("%s/%d_%s", kind.Folder(), at.UnixMilli(), fileName)
}

func ownedKey(key string) bool {
	if key == "" || strings.Contains(key, "..") {
		return false
	}
	for _, kind := range []enums.MediaKind{enums.MediaKindProduct, enums.MediaKindBanner, enums.MediaKindTestimonial} {
		if rest, ok := strings.CutPrefix(key, kind.Folder()+"/"); ok && rest != "" && !strings.Contains(rest, "/") {
			return true
		}
	}
	return false
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
