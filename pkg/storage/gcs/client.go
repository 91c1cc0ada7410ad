// Package gcs is a small Cloud Storage client: bucket health, object deletes and
// V2 signed URLs for browser uploads.
package gcs

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"

	"github.com/vaporhaus/storefront-backend/pkg/config"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
)

const (
	storageHost = "storage.googleapis.com"
	scope       = "https://www.googleapis.com/auth/devstorage.read_write"
	httpTimeout = 10 * time.Second
	pingTimeout = 5 * time.Second
)

var errNotInitialized = errors.New("gcs client not initialized")

type Client struct {
	httpClient    *http.Client
	defaultBucket string
	publicBaseURL string
	signer        *urlSigner
}

// urlSigner is the service account identity behind signed URLs.
type urlSigner struct {
	email string
	key   *rsa.PrivateKey
}

// NewClient authenticates with service account JSON (inline or from a file) and
// falls back to the metadata server. Only service account credentials can sign URLs.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}
	raw, err := credentialsJSON(gcp)
	if err != nil {
		return nil, err
	}
	ts, signer, err := tokenSource(context.WithoutCancel(ctx), raw)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = httpTimeout
	client := &Client{
		httpClient:    httpClient,
		defaultBucket: cfg.BucketName,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		signer:        signer,
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"bucket": cfg.BucketName, "can_sign": signer != nil}), "gcs client initialized")
	}
	return client, nil
}

func credentialsJSON(gcp config.GCPConfig) ([]byte, error) {
	switch {
	case gcp.CredentialsJSON != "":
		return []byte(gcp.CredentialsJSON), nil
	case gcp.ApplicationCredentials != "":
		raw, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		return raw, nil
	}
	return nil, nil
}

func tokenSource(ctx context.Context, raw []byte) (oauth2.TokenSource, *urlSigner, error) {
	if len(raw) == 0 {
		return google.ComputeTokenSource("", scope), nil, nil
	}
	jwtCfg, err := google.JWTConfigFromJSON(raw, scope)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing service account credentials: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(jwtCfg.PrivateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing service account key: %w", err)
	}
	return jwtCfg.TokenSource(ctx), &urlSigner{email: jwtCfg.Email, key: key}, nil
}

func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

// Ping lists at most one object to prove the credentials reach the bucket.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.call(ctx, http.MethodGet, c.objectsURL(c.DefaultBucket(), "")+"?maxResults=1", false)
}

// DeleteObject removes an object. A missing object counts as deleted.
func (c *Client) DeleteObject(ctx context.Context, bucket, object string) error {
	if bucket == "" {
		bucket = c.DefaultBucket()
	}
	if bucket == "" || object == "" {
		return errors.New("bucket and object are required")
	}
	return c.call(ctx, http.MethodDelete, c.objectsURL(bucket, object), true)
}

func (c *Client) objectsURL(bucket, object string) string {
	u := "https://" + storageHost + "/storage/v1/b/" + url.PathEscape(bucket) + "/o"
	if object != "" {
		u += "/" + url.PathEscape(object)
	}
	return u
}

// call sends an authorized JSON API request and maps the status through googleapi.
func (c *Client) call(ctx context.Context, method, u string, missingOK bool) error {
	if c == nil || c.httpClient == nil {
		return errNotInitialized
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if missingOK && resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return googleapi.CheckResponse(resp)
}
