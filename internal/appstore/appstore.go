// Package appstore is a small App Store Connect API client.
//
// It covers what the listing tooling needs: reading the app resource and updating the
// localized metadata of the version being prepared for submission.
package appstore

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
	"strings"
	"time"

	"github.com/sudokufaceoff/faceoff/internal/constants"
	"github.com/sudokufaceoff/faceoff/internal/locale"
	"github.com/ubuntu/decorate"
)

var (
	// ErrNoEditableVersion is returned when the app has no version whose metadata can be edited.
	ErrNoEditableVersion = errors.New("no editable App Store version")
	// ErrLocalizationNotFound is returned when the editable version has no localization for a locale.
	ErrLocalizationNotFound = errors.New("App Store version localization not found")
	// ErrNothingToUpdate is returned when a listing holds none of the fields App Store Connect accepts.
	ErrNothingToUpdate = errors.New("listing has no App Store field to update")
)

// editableStates are the version states in which App Store Connect accepts metadata changes.
var editableStates = []string{
	"PREPARE_FOR_SUBMISSION",
	"DEVELOPER_REJECTED",
	"REJECTED",
	"METADATA_REJECTED",
	"INVALID_BINARY",
}

// Client is an App Store Connect API client.
type Client struct {
	baseURL string
	http    *http.Client
	signer  *Signer
	log     *slog.Logger

	token  string
	expiry time.Time
}

type options struct {
	baseURL string
	timeout time.Duration
	log     *slog.Logger
}

// Options represents an optional function to override Client default values.
type Options func(*options)

// WithBaseURL overrides the App Store Connect API URL.
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

// New returns a Client authenticating with signer.
func New(signer *Signer, args ...Options) *Client {
	opts := options{
		baseURL: constants.AppStoreConnectURL,
		timeout: constants.DefaultHTTPTimeout,
		log:     slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	return &Client{
		baseURL: strings.TrimSuffix(opts.baseURL, "/"),
		http:    &http.Client{Timeout: opts.timeout},
		signer:  signer,
		log:     opts.log,
	}
}

// GetApp fetches the app resource.
func (c *Client) GetApp(ctx context.Context, appID string) (app App, err error) {
	defer decorate.OnError(&err, "could not get app %s", appID)

	var doc document[resource[appAttributes]]
	if err := c.do(ctx, http.MethodGet, "/v1/apps/"+url.PathEscape(appID), nil, nil, &doc); err != nil {
		return App{}, err
	}

	a := doc.Data.Attributes
	return App{
		ID:            doc.Data.ID,
		Name:          a.Name,
		BundleID:      a.BundleID,
		SKU:           a.SKU,
		PrimaryLocale: a.PrimaryLocale,
	}, nil
}

// EditableVersion returns the iOS version of the app whose metadata can currently be edited.
func (c *Client) EditableVersion(ctx context.Context, appID string) (v Version, err error) {
	defer decorate.OnError(&err, "could not get editable version of app %s", appID)

	q := url.Values{}
	q.Set("filter[appStoreState]", strings.Join(editableStates, ","))
	q.Set("filter[platform]", "IOS")
	q.Set("limit", "1")

	var doc document[[]resource[versionAttributes]]
	if err := c.do(ctx, http.MethodGet, "/v1/apps/"+url.PathEscape(appID)+"/appStoreVersions", q, nil, &doc); err != nil {
		return Version{}, err
	}
	if len(doc.Data) == 0 {
		return Version{}, ErrNoEditableVersion
	}

	r := doc.Data[0]
	return Version{ID: r.ID, VersionString: r.Attributes.VersionString, State: r.Attributes.AppStoreState}, nil
}

// Localization returns the localization of the version for the App Store locale.
func (c *Client) Localization(ctx context.Context, versionID, loc string) (l Localization, err error) {
	defer decorate.OnError(&err, "could not get %s localization of version %s", loc, versionID)

	q := url.Values{}
	q.Set("limit", "200")

	var doc document[[]resource[localizationAttributes]]
	if err := c.do(ctx, http.MethodGet, "/v1/appStoreVersions/"+url.PathEscape(versionID)+"/appStoreVersionLocalizations", q, nil, &doc); err != nil {
		return Localization{}, err
	}

	for _, r := range doc.Data {
		if strings.EqualFold(r.Attributes.Locale, loc) {
			return Localization{ID: r.ID, Locale: r.Attributes.Locale, LocalizationAttributes: r.Attributes.LocalizationAttributes}, nil
		}
	}
	return Localization{}, fmt.Errorf("%w: %s", ErrLocalizationNotFound, loc)
}

// UpdateLocalization sets the non-empty attributes on the version localization.
func (c *Client) UpdateLocalization(ctx context.Context, id string, attrs LocalizationAttributes) (err error) {
	defer decorate.OnError(&err, "could not update localization %s", id)

	body := document[resource[LocalizationAttributes]]{Data: resource[LocalizationAttributes]{
		Type:       "appStoreVersionLocalizations",
		ID:         id,
		Attributes: attrs,
	}}
	return c.do(ctx, http.MethodPatch, "/v1/appStoreVersionLocalizations/"+url.PathEscape(id), nil, body, nil)
}

// PushListing updates the editable version of the app with the listing of a locale file.
func (c *Client) PushListing(ctx context.Context, appID, localeCode string, l locale.Listing) (err error) {
	defer decorate.OnError(&err, "could not push %s listing to the App Store", localeCode)

	attrs := LocalizationAttributes{
		Description:     l.Description,
		Keywords:        l.Keywords,
		WhatsNew:        l.WhatsNew,
		PromotionalText: l.PromotionalText,
		SupportURL:      l.SupportURL,
		MarketingURL:    l.MarketingURL,
	}
	if attrs == (LocalizationAttributes{}) {
		return ErrNothingToUpdate
	}

	v, err := c.EditableVersion(ctx, appID)
	if err != nil {
		return err
	}
	c.log.Info("Found editable version", "version", v.VersionString, "state", v.State)

	appleLocale := locale.AppleLocale(localeCode)
	loc, err := c.Localization(ctx, v.ID, appleLocale)
	if err != nil {
		return err
	}

	if err := c.UpdateLocalization(ctx, loc.ID, attrs); err != nil {
		return err
	}
	c.log.Info("Updated App Store localization", "locale", appleLocale, "version", v.VersionString)
	return nil
}

// bearer returns a valid token, signing a new one a minute before the current one expires.
func (c *Client) bearer() (string, error) {
	if c.token != "" && c.signer.now().Add(time.Minute).Before(c.expiry) {
		return c.token, nil
	}

	t, exp, err := c.signer.Token()
	if err != nil {
		return "", err
	}
	c.token, c.expiry = t, exp
	return t, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		d, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("could not encode request: %v", err)
		}
		body = bytes.NewReader(d)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	token, err := c.bearer()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("Sending App Store Connect request", "method", method, "url", u)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// The body is informative only: an undecodable one still yields the status code.
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %v", err)
	}
	return nil
}
