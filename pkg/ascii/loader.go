package ascii

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/asciifolio/pkg/buildinfo"
	"github.com/matzehuels/asciifolio/pkg/cache"
	"github.com/matzehuels/asciifolio/pkg/errors"
	"github.com/matzehuels/asciifolio/pkg/observability"
)

const (
	httpTimeout = 10 * time.Second

	// maxImageBytes bounds a remote image body.
	maxImageBytes = 32 << 20
)

// Loader resolves an image source to a decoded image.
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// Decode decodes PNG, JPEG, GIF, WebP or BMP data. src only labels errors.
func Decode(data []byte, src string) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "decode %s", src)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New(errors.ErrCodeImageDecode, "decode %s: empty image", src)
	}
	return img, nil
}

// =============================================================================
// File Loader
// =============================================================================

// FileLoader reads images from a directory. Sources are slash-separated paths
// relative to Root and may not escape it.
type FileLoader struct {
	Root string
}

// Load reads and decodes src.
func (l FileLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.ValidatePath(src); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(l.Root, filepath.FromSlash(src)))
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeImageNotFound, err, "image %s", src)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return Decode(data, src)
}

// =============================================================================
// HTTP Loader
// =============================================================================

// HTTPLoader fetches images over HTTP. Raw response bodies are cached; decoded
// images and grids never are.
type HTTPLoader struct {
	client *http.Client
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
}

// NewHTTPLoader creates a loader backed by c. Pass nil for no caching.
func NewHTTPLoader(c cache.Cache, ttl time.Duration) *HTTPLoader {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &HTTPLoader{
		client: &http.Client{Timeout: httpTimeout},
		cache:  c,
		keyer:  cache.NewDefaultKeyer(),
		ttl:    ttl,
	}
}

// WithKeyer replaces the cache key scheme. Nil keeps the current one.
func (l *HTTPLoader) WithKeyer(k cache.Keyer) *HTTPLoader {
	if k != nil {
		l.keyer = k
	}
	return l
}

// WithClient replaces the HTTP client, mainly for tests.
func (l *HTTPLoader) WithClient(c *http.Client) *HTTPLoader {
	l.client = c
	return l
}

// Load fetches src, consulting the cache first.
func (l *HTTPLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if err := errors.ValidateURL(src); err != nil {
		return nil, err
	}
	key := l.keyer.ImageKey(src)
	if data, ok, err := l.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "image")
		if img, err := Decode(data, src); err == nil {
			return img, nil
		}
		// A cached body that no longer decodes is dropped and refetched.
		_ = l.cache.Delete(ctx, key)
	} else {
		observability.Cache().OnCacheMiss(ctx, "image")
	}

	data, err := l.fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data, src)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Set(ctx, key, data, l.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "image", len(data))
	}
	return img, nil
}

func (l *HTTPLoader) fetch(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", src)
	}
	hooks := observability.HTTP()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", src)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeImageNotFound, "image %s: status 404", src)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.New(errors.ErrCodeNetwork, "fetch %s: status %d", src, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read %s", src)
	}
	if len(data) > maxImageBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image %s exceeds %d bytes", src, maxImageBytes)
	}
	return data, nil
}

// =============================================================================
// Mux Loader
// =============================================================================

// MuxLoader sends http(s) sources to Remote and everything else to Files.
type MuxLoader struct {
	Files  Loader
	Remote Loader
}

// Load dispatches on the source scheme.
func (m MuxLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if IsRemote(src) {
		if m.Remote == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "remote images are disabled: %s", src)
		}
		return m.Remote.Load(ctx, src)
	}
	if m.Files == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "local images are disabled: %s", src)
	}
	return m.Files.Load(ctx, src)
}

// IsRemote reports whether src is an http(s) URL.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
