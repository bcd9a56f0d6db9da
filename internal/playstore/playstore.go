// Package playstore is a small Google Play Developer API client updating store listings.
//
// Every change goes through an edit: the edit is created, the listing is updated in it,
// and the edit is committed. A failed edit is deleted.
package playstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sudokufaceoff/faceoff/internal/constants"
	"github.com/sudokufaceoff/faceoff/internal/locale"
	"github.com/ubuntu/decorate"
	"golang.org/x/oauth2/google"
)

var (
	// ErrMissingPackageName is returned when no package name is configured.
	ErrMissingPackageName = errors.New("missing Google Play package name")
	// ErrNothingToUpdate is returned when a listing holds none of the fields Google Play accepts.
	ErrNothingToUpdate = errors.New("listing has no Google Play field to update")
)

// Client is a Google Play Developer API client bound to one package.
type Client struct {
	baseURL     string
	packageName string
	http        *http.Client
	log         *slog.Logger
}

type options struct {
	baseURL string
	timeout time.Duration
	log     *slog.Logger
}

// Options represents an optional function to override Client default values.
type Options func(*options)

// WithBaseURL overrides the Google Play Developer API URL.
func WithBaseURL(u string) Options {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithTimeout sets the timeout of every request.
func WithTimeout(d time.Duration) Options {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the logger of the client.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// New returns a Client authenticating with the service account key JSON.
func New(ctx context.Context, packageName string, serviceAccountJSON []byte, args ...Options) (*Client, error) {
	if packageName == "" {
		return nil, ErrMissingPackageName
	}

	opts := options{
		baseURL: constants.PlayPublisherURL,
		timeout: constants.DefaultHTTPTimeout,
		log:     slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	conf, err := google.JWTConfigFromJSON(serviceAccountJSON, constants.PlayPublisherScope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account key: %v", err)
	}
	hc := conf.Client(ctx)
	hc.Timeout = opts.timeout

	return &Client{
		baseURL:     strings.TrimSuffix(opts.baseURL, "/"),
		packageName: packageName,
		http:        hc,
		log:         opts.log,
	}, nil
}

// NewFromFile is New reading the service account key from path.
func NewFromFile(ctx context.Context, packageName, path string, args ...Options) (c *Client, err error) {
	defer decorate.OnError(&err, "could not create Google Play client")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(ctx, packageName, data, args...)
}

// Listing is a Google Play store listing.
type Listing struct {
	Language         string `json:"language"`
	Title            string `json:"title,omitempty"`
	ShortDescription string `json:"shortDescription,omitempty"`
	FullDescription  string `json:"fullDescription,omitempty"`
}

// ListingFrom builds the Google Play listing of a locale file.
// Google names differ from Apple's: title falls back to name, and the short description
// to the subtitle.
func ListingFrom(localeCode string, l locale.Listing) Listing {
	return Listing{
		Language:         locale.GoogleLocale(localeCode),
		Title:            firstNonEmpty(l.Title, l.Name),
		ShortDescription: firstNonEmpty(l.ShortDescription, l.Subtitle),
		FullDescription:  l.Description,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// APIError is a non successful response of the Google Play Developer API.
type APIError struct {
	StatusCode int
	Message    string
	Status     string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("Google Play returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("Google Play returned status %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

type edit struct {
	ID string `json:"id"`
}

// PushListing updates the store listing of the locale file in a new committed edit.
func (c *Client) PushListing(ctx context.Context, localeCode string, l locale.Listing) (err error) {
	defer decorate.OnError(&err, "could not push %s listing to Google Play", localeCode)

	listing := ListingFrom(localeCode, l)
	if listing.Title == "" && listing.ShortDescription == "" && listing.FullDescription == "" {
		return ErrNothingToUpdate
	}
	if l.WhatsNew != "" {
		c.log.Debug("Release notes are attached to a track release and are not pushed with the listing", "locale", localeCode)
	}

	var e edit
	if err := c.do(ctx, http.MethodPost, c.editsPath(), nil, &e); err != nil {
		return fmt.Errorf("could not create edit: %w", err)
	}
	c.log.Debug("Created Google Play edit", "edit", e.ID)

	if err := c.do(ctx, http.MethodPut, c.editsPath(e.ID, "listings", listing.Language), listing, nil); err != nil {
		c.deleteEdit(e.ID)
		return fmt.Errorf("could not update listing: %w", err)
	}

	if err := c.do(ctx, http.MethodPost, c.editsPath(e.ID)+":commit", nil, nil); err != nil {
		c.deleteEdit(e.ID)
		return fmt.Errorf("could not commit edit: %w", err)
	}

	c.log.Info("Updated Google Play listing", "language", listing.Language, "edit", e.ID)
	return nil
}

// deleteEdit discards an edit. It runs on an independent context: the edit must be
// cleaned up even if the push was cancelled.
func (c *Client) deleteEdit(id string) {
	timeout := c.http.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := c.do(ctx, http.MethodDelete, c.editsPath(id), nil, nil); err != nil {
		c.log.Warn("Could not delete Google Play edit", "edit", id, "error", err)
	}
}

func (c *Client) editsPath(elems ...string) string {
	p := "/androidpublisher/v3/applications/" + url.PathEscape(c.packageName) + "/edits"
	for _, e := range elems {
		p += "/" + url.PathEscape(e)
	}
	return p
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		d, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("could not encode request: %v", err)
		}
		body = bytes.NewReader(d)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("Sending Google Play request", "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error struct {
				Message string `json:"message"`
				Status  string `json:"status"`
			} `json:"error"`
		}
		// The body is informative only: an undecodable one still yields the status code.
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error.Message, Status: e.Error.Status}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %v", err)
	}
	return nil
}
