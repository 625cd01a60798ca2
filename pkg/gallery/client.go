// Package gallery is the client for the photo gallery REST backend: it loads
// images for editing, uploads edited derivatives and refreshes the listing.
package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/Fepozopo/photoedit/pkg/edit"
	"github.com/Fepozopo/photoedit/pkg/httputil"
)

const (
	// DefaultTimeout matches the web client's request timeout.
	DefaultTimeout = 5 * time.Second

	// DefaultListLimit is the page size of the gallery listing.
	DefaultListLimit = 20

	maxErrorBody = 64 << 10
)

// Client talks to the gallery backend. It satisfies edit.Fetcher and
// edit.Uploader.
type Client struct {
	apiURL    string
	staticURL string
	token     string
	http      *http.Client
	logger    *log.Logger

	attempts int
	delay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithStaticURL sets the base URL rasters are served from. It defaults to the
// API URL with a trailing /api removed.
func WithStaticURL(u string) Option {
	return func(c *Client) { c.staticURL = strings.TrimRight(u, "/") }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetry sets how often idempotent GETs are attempted and the initial
// backoff between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the API rooted at apiURL
// (e.g. http://localhost:8000/api).
func NewClient(apiURL string, opts ...Option) *Client {
	api := strings.TrimRight(apiURL, "/")
	c := &Client{
		apiURL:    api,
		staticURL: strings.TrimSuffix(api, "/api"),
		http:      &http.Client{Timeout: DefaultTimeout},
		logger:    log.Default(),
		attempts:  3,
		delay:     500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Image returns the record of image id.
func (c *Client) Image(ctx context.Context, id int64) (*Image, error) {
	var img Image
	u := c.apiURL + "/images/" + strconv.FormatInt(id, 10)
	if err := c.getJSON(ctx, u, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

// RasterURL returns where the pixels of img are served.
func (c *Client) RasterURL(img *Image) string {
	p := strings.TrimLeft(strings.ReplaceAll(img.FilePath, "\\", "/"), "/")
	return c.staticURL + "/" + p
}

// Fetch loads the record and the full-resolution raster of image id. EXIF
// orientation is applied while decoding, so the raster is upright.
func (c *Client) Fetch(ctx context.Context, id int64) (*edit.SourceImage, error) {
	rec, err := c.Image(ctx, id)
	if err != nil {
		return nil, err
	}
	src := c.RasterURL(rec)
	var data []byte
	err = httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var gerr error
		data, gerr = c.get(ctx, src)
		return gerr
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", src, err)
	}
	raster, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rec.Filename, err)
	}
	b := raster.Bounds()
	if w, h, rerr := rec.Dimensions(); rerr == nil && (w != b.Dx() || h != b.Dy()) {
		c.logger.Debug("decoded size differs from record", "image", id, "record", rec.Resolution,
			"decoded", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
	}
	c.logger.Debug("fetched image", "image", id, "url", src, "bytes", len(data))
	return &edit.SourceImage{
		ID:        rec.ID,
		Width:     b.Dx(),
		Height:    b.Dy(),
		SourceURL: src,
		FileName:  rec.Filename,
		Raster:    raster,
	}, nil
}

// Upload stores payload as a new image. It is never retried: a retried POST
// could create duplicates.
func (c *Client) Upload(ctx context.Context, payload []byte, fileName string) (*edit.UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(payload); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	u := c.apiURL + "/images/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	data, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var img Image
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	c.logger.Debug("uploaded image", "image", img.ID, "file", img.Filename, "bytes", len(payload))
	return &edit.UploadResult{ImageID: img.ID, FileName: img.Filename, Path: img.FilePath}, nil
}

// List returns one page of the gallery listing, newest first.
func (c *Client) List(ctx context.Context, skip, limit int) ([]Image, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	var imgs []Image
	if err := c.getJSON(ctx, c.apiURL+"/images/?"+q.Encode(), &imgs); err != nil {
		return nil, err
	}
	return imgs, nil
}

// Refresher returns an edit.Refresher that reloads the first listing page.
func (c *Client) Refresher(limit int) edit.Refresher {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return func(ctx context.Context) error {
		imgs, err := c.List(ctx, 0, limit)
		if err != nil {
			return err
		}
		c.logger.Debug("listing refreshed", "count", len(imgs))
		return nil
	}
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	return httputil.Retry(ctx, c.attempts, c.delay, func() error {
		data, err := c.get(ctx, u)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode %s: %w", u, err)
		}
		return nil
	})
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// do sends req and returns the body of a 2xx response. Transport errors, 5xx
// and 429 come back wrapped in *httputil.RetryableError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
		}
		return data, nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	serr := &StatusError{
		Method: req.Method,
		URL:    req.URL.String(),
		Code:   resp.StatusCode,
		Detail: parseDetail(raw),
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, &httputil.RetryableError{Err: serr}
	}
	return nil, serr
}
