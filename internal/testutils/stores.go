package testutils

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// FakeAppStore is an App Store Connect server knowing app 42, with the editable version v1
// localized in en-US and fr-FR.
type FakeAppStore struct {
	*httptest.Server

	mu      sync.Mutex
	patches map[string]map[string]any
}

// NewFakeAppStore starts a FakeAppStore stopped at the end of the test.
func NewFakeAppStore(t *testing.T) *FakeAppStore {
	t.Helper()

	f := &FakeAppStore{patches: make(map[string]map[string]any)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *FakeAppStore) serve(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"errors": [{"status": "401", "code": "NOT_AUTHORIZED", "title": "Authentication credentials are missing or invalid."}]}`)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/apps/42":
		_, _ = io.WriteString(w, `{"data": {"type": "apps", "id": "42", "attributes": {"name": "Sudoku Face Off", "bundleId": "com.example.faceoff", "sku": "FACEOFF", "primaryLocale": "en-US"}}}`)
	case r.Method == http.MethodGet && r.URL.Path == "/v1/apps/42/appStoreVersions":
		_, _ = io.WriteString(w, `{"data": [{"type": "appStoreVersions", "id": "v1", "attributes": {"versionString": "2.0.0", "appStoreState": "PREPARE_FOR_SUBMISSION"}}]}`)
	case r.Method == http.MethodGet && r.URL.Path == "/v1/appStoreVersions/v1/appStoreVersionLocalizations":
		_, _ = io.WriteString(w, `{"data": [
			{"type": "appStoreVersionLocalizations", "id": "loc-en", "attributes": {"locale": "en-US"}},
			{"type": "appStoreVersionLocalizations", "id": "loc-fr", "attributes": {"locale": "fr-FR"}}
		]}`)
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/v1/appStoreVersionLocalizations/"):
		var body struct {
			Data struct {
				Attributes map[string]any `json:"attributes"`
			} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.patches[strings.TrimPrefix(r.URL.Path, "/v1/appStoreVersionLocalizations/")] = body.Data.Attributes
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"data": {}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errors": [{"status": "404", "code": "NOT_FOUND", "title": "Not found", "detail": "The resource does not exist"}]}`)
	}
}

// Patched returns the attributes last sent for the localization id, or nil.
func (f *FakeAppStore) Patched(id string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.patches[id]
}

// FakePlay is a Google Play Developer API server, with its OAuth token endpoint, accepting
// any listing of any package.
type FakePlay struct {
	*httptest.Server

	mu        sync.Mutex
	listings  map[string]map[string]any
	committed int
}

// NewFakePlay starts a FakePlay stopped at the end of the test.
func NewFakePlay(t *testing.T) *FakePlay {
	t.Helper()

	f := &FakePlay{listings: make(map[string]map[string]any)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *FakePlay) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/token" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token": "play-token", "token_type": "Bearer", "expires_in": 3600}`)
		return
	}
	if r.Header.Get("Authorization") != "Bearer play-token" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error": {"code": 401, "message": "Request is missing required authentication credential", "status": "UNAUTHENTICATED"}}`)
		return
	}

	_, rest, _ := strings.Cut(r.URL.Path, "/edits")
	switch {
	case r.Method == http.MethodPost && rest == "":
		_, _ = io.WriteString(w, `{"id": "edit-1"}`)
	case r.Method == http.MethodPut && strings.HasPrefix(rest, "/edit-1/listings/"):
		var l map[string]any
		if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.listings[strings.TrimPrefix(rest, "/edit-1/listings/")] = l
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPost && rest == "/edit-1:commit":
		f.mu.Lock()
		f.committed++
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"id": "edit-1"}`)
	case r.Method == http.MethodDelete && rest == "/edit-1":
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error": {"code": 404, "message": "Not found", "status": "NOT_FOUND"}}`)
	}
}

// Listing returns the listing last sent for language, or nil.
func (f *FakePlay) Listing(language string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listings[language]
}

// Commits returns the number of committed edits.
func (f *FakePlay) Commits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.committed
}

// ServiceAccountJSON returns a Google service account key with a new RSA key, exchanging its
// tokens at tokenURL.
func ServiceAccountJSON(t *testing.T, tokenURL string) []byte {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "Setup: could not generate RSA key")
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err, "Setup: could not marshal RSA key")

	d, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "faceoff-test",
		"private_key_id": "key-1",
		"private_key":    string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})),
		"client_email":   "publisher@faceoff-test.iam.gserviceaccount.com",
		"token_uri":      tokenURL,
	})
	require.NoError(t, err, "Setup: could not marshal service account")
	return d
}

// WriteServiceAccount writes ServiceAccountJSON in dir and returns its path.
func WriteServiceAccount(t *testing.T, dir, tokenURL string) string {
	t.Helper()

	p := filepath.Join(dir, "service-account.json")
	require.NoError(t, os.WriteFile(p, ServiceAccountJSON(t, tokenURL), 0600), "Setup: could not write service account key")
	return p
}
