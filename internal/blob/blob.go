// Package blob stores uploaded screenshots. Images go to S3-compatible
// storage when a bucket is configured and to local disk otherwise.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/devtrack/internal/config"
)

var (
	// ErrNotConfigured is returned when no blob storage is configured.
	ErrNotConfigured = errors.New("blob storage not configured")
	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("upload too large")
	// ErrUnsupportedType is returned when an upload is not an allowed image type.
	ErrUnsupportedType = errors.New("unsupported image type")
)

// maxPresignExpiry is the longest expiry S3 accepts for pre-signed URLs.
const maxPresignExpiry = 7 * 24 * time.Hour

// Uploader stores a blob under key and returns the URL it can be fetched from.
type Uploader interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// s3Client defines the minimal minio.Client operations used by S3Uploader.
type s3Client interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error)
}

// minioClientWrapper adapts *minio.Client to s3Client.
type minioClientWrapper struct {
	client *minio.Client
}

func (w *minioClientWrapper) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	_, err := w.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (w *minioClientWrapper) PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error) {
	return w.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
}

// S3Uploader stores blobs in S3-compatible storage.
type S3Uploader struct {
	client        s3Client
	bucket        string
	publicBaseURL string
	urlExpiry     time.Duration
}

// Put uploads the blob. The returned URL is under the public base URL when
// one is configured, otherwise a pre-signed GET URL.
func (u *S3Uploader) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := u.client.PutObject(ctx, u.bucket, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("upload blob to S3: %w", err)
	}
	if u.publicBaseURL != "" {
		return strings.TrimRight(u.publicBaseURL, "/") + "/" + key, nil
	}
	presigned, err := u.client.PresignedGetObject(ctx, u.bucket, key, u.urlExpiry)
	if err != nil {
		return "", fmt.Errorf("generate pre-signed URL: %w", err)
	}
	return presigned.String(), nil
}

// LocalURLPrefix is the path local blobs are served under.
const LocalURLPrefix = "/uploads/"

// LocalUploader stores blobs on disk under a root directory.
type LocalUploader struct {
	dir string
}

// NewLocalUploader creates a LocalUploader rooted at dir.
func NewLocalUploader(dir string) *LocalUploader {
	return &LocalUploader{dir: dir}
}

// Put writes the blob to disk and returns its /uploads/ URL.
func (u *LocalUploader) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return "", fmt.Errorf("invalid blob key %q", key)
	}

	dst := filepath.Join(u.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return LocalURLPrefix + clean, nil
}

// Handler serves stored blobs. Mount it at LocalURLPrefix.
// Directory paths are not listed.
func (u *LocalUploader) Handler() http.Handler {
	files := http.StripPrefix(LocalURLPrefix, http.FileServer(http.Dir(u.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// NoopUploader is used when no storage is configured.
type NoopUploader struct{}

// Put always returns ErrNotConfigured.
func (u *NoopUploader) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	return "", ErrNotConfigured
}

// NewUploader creates the appropriate Uploader based on configuration:
// S3 when a bucket is set, local disk when a directory is set, and
// NoopUploader otherwise.
func NewUploader(cfg config.StorageConfig) (Uploader, error) {
	if cfg.Bucket == "" {
		if cfg.LocalDir == "" {
			return &NoopUploader{}, nil
		}
		return NewLocalUploader(cfg.LocalDir), nil
	}

	useSSL := true
	if cfg.UseSSL != nil {
		useSSL = *cfg.UseSSL
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}

	expiry := time.Duration(cfg.URLExpiry)
	if expiry <= 0 || expiry > maxPresignExpiry {
		expiry = maxPresignExpiry
	}

	return &S3Uploader{
		client:        &minioClientWrapper{client: client},
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
		urlExpiry:     expiry,
	}, nil
}

// allowedImages maps accepted MIME types to their canonical extension.
var allowedImages = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Image is an upload that passed size and type checks.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Reader returns a fresh reader over the image bytes.
func (img *Image) Reader() io.Reader {
	return bytes.NewReader(img.Data)
}

// ReadImage reads at most max bytes from r and checks the content is an
// allowed image type. The declared content type of the upload is ignored.
func ReadImage(r io.Reader, max int64) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return nil, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := allowedImages[m.String()]; ok {
			return &Image{Data: data, ContentType: m.String(), Extension: ext}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
}

const maxNameLen = 100

// ScreenshotKey builds a unique object key for an uploaded screenshot:
// screenshots/<ulid>_<sanitized name>. ext is appended when the name
// has no extension.
func ScreenshotKey(filename, ext string) string {
	name := sanitize(filepath.Base(strings.ReplaceAll(filename, "\\", "/")))
	if name == "" {
		name = "screenshot"
	}
	if filepath.Ext(name) == "" {
		name += ext
	}
	return "screenshots/" + ulid.Make().String() + "_" + name
}

// sanitize keeps letters, digits, dot, dash and underscore; everything
// else becomes an underscore.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= maxNameLen {
			break
		}
	}
	return strings.Trim(b.String(), "._")
}
