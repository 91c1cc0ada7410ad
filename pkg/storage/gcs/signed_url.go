package gcs

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SignedURL returns a V2 signed URL that lets a browser PUT object with contentType.
func (c *Client) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	if contentType == "" {
		return "", errors.New("content type is required")
	}
	return c.sign("PUT", bucket, object, contentType, expires)
}

// SignedReadURL returns a V2 signed URL for GET on a private object.
func (c *Client) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	return c.sign("GET", bucket, object, "", expires)
}

// PublicURL is the unsigned address of object once the bucket serves it publicly.
func (c *Client) PublicURL(bucket, object string) string {
	if bucket == "" {
		bucket = c.defaultBucket
	}
	base := c.publicBaseURL
	if base == "" {
		base = "https://" + storageHost
	}
	return fmt.Sprintf("%s/%s/%s", base, bucket, escapeObject(object))
}

func (c *Client) sign(method, bucket, object, contentType string, expires time.Duration) (string, error) {
	if c == nil || c.signer == nil || c.signer.key == nil {
		return "", errors.New("service account credentials are required for signing")
	}
	if bucket == "" {
		bucket = c.defaultBucket
	}
	if bucket == "" {
		return "", errors.New("bucket is required")
	}
	if object == "" {
		return "", errors.New("object is required")
	}
	if expires <= 0 {
		return "", errors.New("expiry must be positive")
	}

	expiresAt := strconv.FormatInt(time.Now().Add(expires).Unix(), 10)
	resource := "/" + bucket + "/" + escapeObject(object)
	payload := strings.Join([]string{method, "", contentType, expiresAt, resource}, "\n")

	digest := sha256.Sum256([]byte(payload))
	sig, err := rsa.SignPKCS1v15(rand.Reader, c.signer.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("signing url: %w", err)
	}

	q := url.Values{}
	q.Set("GoogleAccessId", c.signer.email)
	q.Set("Expires", expiresAt)
	q.Set("Signature", base64.StdEncoding.EncodeToString(sig))
	return "https://" + storageHost + resource + "?" + q.Encode(), nil
}

func escapeObject(object string) string {
	segments := strings.Split(object, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
