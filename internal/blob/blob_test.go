package blob

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/devtrack/internal/config"
)

// --- Mock S3 client ---

type mockS3Client struct {
	putCalls     int
	putKey       string
	putBody      []byte
	putType      string
	putErr       error
	presignCalls int
	presignErr   error
	lastExpiry   time.Duration
}

func (m *mockS3Client) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	m.putCalls++
	m.putKey = key
	m.putType = contentType
	m.putBody, _ = io.ReadAll(r)
	return m.putErr
}

func (m *mockS3Client) PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error) {
	m.presignCalls++
	m.lastExpiry = expiry
	if m.presignErr != nil {
		return nil, m.presignErr
	}
	return url.Parse("https://" + bucket + ".s3.example/" + key + "?X-Amz-Signature=abc")
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// --- S3Uploader ---

func TestS3Uploader_Put_PublicBaseURL(t *testing.T) {
	client := &mockS3Client{}
	u := &S3Uploader{client: client, bucket: "shots", publicBaseURL: "https://cdn.example/", urlExpiry: time.Hour}

	got, err := u.Put(context.Background(), "screenshots/a.png", strings.NewReader("img"), 3, "image/png")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got != "https://cdn.example/screenshots/a.png" {
		t.Errorf("Put() url = %q", got)
	}
	if client.presignCalls != 0 {
		t.Error("public base URL should not presign")
	}
	if string(client.putBody) != "img" || client.putType != "image/png" {
		t.Errorf("uploaded body=%q type=%q", client.putBody, client.putType)
	}
}

func TestS3Uploader_Put_PresignsWithoutPublicBaseURL(t *testing.T) {
	client := &mockS3Client{}
	u := &S3Uploader{client: client, bucket: "shots", urlExpiry: 2 * time.Hour}

	got, err := u.Put(context.Background(), "screenshots/a.png", strings.NewReader("img"), 3, "image/png")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !strings.Contains(got, "X-Amz-Signature") {
		t.Errorf("Put() url = %q, want a pre-signed URL", got)
	}
	if client.lastExpiry != 2*time.Hour {
		t.Errorf("expiry = %v, want 2h", client.lastExpiry)
	}
}

func TestS3Uploader_Put_Errors(t *testing.T) {
	putErr := errors.New("bucket gone")
	u := &S3Uploader{client: &mockS3Client{putErr: putErr}, bucket: "b"}
	if _, err := u.Put(context.Background(), "k", strings.NewReader(""), 0, ""); !errors.Is(err, putErr) {
		t.Errorf("Put() error = %v, want wrapped put error", err)
	}

	presignErr := errors.New("no creds")
	u = &S3Uploader{client: &mockS3Client{presignErr: presignErr}, bucket: "b"}
	if _, err := u.Put(context.Background(), "k", strings.NewReader(""), 0, ""); !errors.Is(err, presignErr) {
		t.Errorf("Put() error = %v, want wrapped presign error", err)
	}
}

// --- LocalUploader ---

func TestLocalUploader_PutAndServe(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir)

	got, err := u.Put(context.Background(), "screenshots/01ABC_map.png", strings.NewReader("pixels"), 6, "image/png")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got != "/uploads/screenshots/01ABC_map.png" {
		t.Errorf("Put() url = %q", got)
	}
	data, err := os.ReadFile(filepath.Join(dir, "screenshots", "01ABC_map.png"))
	if err != nil || string(data) != "pixels" {
		t.Fatalf("file contents = %q, %v", data, err)
	}

	rec := httptest.NewRecorder()
	u.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, got, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "pixels" {
		t.Errorf("GET %s = %d %q", got, rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	u.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/screenshots/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("directory listing status = %d, want 404", rec.Code)
	}
}

func TestLocalUploader_RejectsTraversalAndOverwrite(t *testing.T) {
	u := NewLocalUploader(t.TempDir())
	ctx := context.Background()

	if _, err := u.Put(ctx, "../escape.png", strings.NewReader("x"), 1, ""); err == nil {
		t.Error("Put() should reject keys that escape the root")
	}
	if _, err := u.Put(ctx, "a.png", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := u.Put(ctx, "a.png", strings.NewReader("y"), 1, ""); err == nil {
		t.Error("Put() should not overwrite an existing blob")
	}
}

// --- NoopUploader / NewUploader ---

func TestNoopUploader_ReturnsErrNotConfigured(t *testing.T) {
	_, err := (&NoopUploader{}).Put(context.Background(), "k", strings.NewReader(""), 0, "")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Put() error = %v, want ErrNotConfigured", err)
	}
}

func TestNewUploader_SelectsBackend(t *testing.T) {
	u, err := NewUploader(config.StorageConfig{})
	if err != nil {
		t.Fatalf("NewUploader() error = %v", err)
	}
	if _, ok := u.(*NoopUploader); !ok {
		t.Errorf("empty config: got %T, want *NoopUploader", u)
	}

	u, _ = NewUploader(config.StorageConfig{LocalDir: t.TempDir()})
	if _, ok := u.(*LocalUploader); !ok {
		t.Errorf("local dir: got %T, want *LocalUploader", u)
	}

	u, err = NewUploader(config.StorageConfig{Bucket: "shots", Endpoint: "localhost:9000", LocalDir: "ignored"})
	if err != nil {
		t.Fatalf("NewUploader() error = %v", err)
	}
	s3, ok := u.(*S3Uploader)
	if !ok {
		t.Fatalf("bucket: got %T, want *S3Uploader", u)
	}
	if s3.urlExpiry != maxPresignExpiry {
		t.Errorf("zero expiry should default to %v, got %v", maxPresignExpiry, s3.urlExpiry)
	}
}

// --- ReadImage / ScreenshotKey ---

func TestReadImage_AcceptsPNG(t *testing.T) {
	img, err := ReadImage(bytes.NewReader(pngBytes(t)), 1<<20)
	if err != nil {
		t.Fatalf("ReadImage() error = %v", err)
	}
	if img.ContentType != "image/png" || img.Extension != ".png" {
		t.Errorf("ReadImage() = %s %s", img.ContentType, img.Extension)
	}
}

func TestReadImage_RejectsNonImages(t *testing.T) {
	_, err := ReadImage(strings.NewReader("<html><body>hi</body></html>"), 1<<20)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("ReadImage(html) error = %v, want ErrUnsupportedType", err)
	}
}

func TestReadImage_EnforcesLimit(t *testing.T) {
	data := pngBytes(t)
	if _, err := ReadImage(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Errorf("exactly at limit: %v", err)
	}
	if _, err := ReadImage(bytes.NewReader(data), int64(len(data)-1)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("over limit error = %v, want ErrTooLarge", err)
	}
}

func TestScreenshotKey(t *testing.T) {
	tests := []struct {
		filename   string
		wantSuffix string
	}{
		{"boss fight.png", "_boss_fight.png"},
		{`C:\Users\me\shot.jpg`, "_shot.jpg"},
		{"../../etc/passwd", "_passwd.png"},
		{"", "_screenshot.png"},
	}
	for _, tt := range tests {
		key := ScreenshotKey(tt.filename, ".png")
		if !strings.HasPrefix(key, "screenshots/") || !strings.HasSuffix(key, tt.wantSuffix) {
			t.Errorf("ScreenshotKey(%q) = %q, want suffix %q", tt.filename, key, tt.wantSuffix)
		}
		if strings.Contains(key[len("screenshots/"):], "/") {
			t.Errorf("ScreenshotKey(%q) = %q contains a nested path", tt.filename, key)
		}
	}

	if ScreenshotKey("a.png", ".png") == ScreenshotKey("a.png", ".png") {
		t.Error("keys should be unique")
	}
}
