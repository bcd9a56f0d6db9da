package playstore_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudokufaceoff/faceoff/internal/locale"
	"github.com/sudokufaceoff/faceoff/internal/playstore"
	"github.com/sudokufaceoff/faceoff/internal/testutils"
)

const pkg = "com.example.faceoff"

// fakePlay is a minimal Google Play Developer API with its OAuth token endpoint.
type fakePlay struct {
	failListing bool
	failCommit  bool

	mu       sync.Mutex
	calls    []string
	listing  map[string]any
	badAuths int
}

func (f *fakePlay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/token" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token": "play-token", "token_type": "Bearer", "expires_in": 3600}`)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	if r.Header.Get("Authorization") != "Bearer play-token" {
		f.badAuths++
	}

	base := "/androidpublisher/v3/applications/" + pkg + "/edits"
	switch {
	case r.Method == http.MethodPost && r.URL.Path == base:
		_, _ = io.WriteString(w, `{"id": "edit-1", "expiryTimeSeconds": "1700000000"}`)
	case r.Method == http.MethodPut && r.URL.Path == base+"/edit-1/listings/en-US":
		if f.failListing {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error": {"code": 400, "message": "Short description is too long", "status": "INVALID_ARGUMENT"}}`)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&f.listing)
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPost && r.URL.Path == base+"/edit-1:commit":
		if f.failCommit {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error": {"code": 403, "message": "The caller does not have permission", "status": "PERMISSION_DENIED"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"id": "edit-1"}`)
	case r.Method == http.MethodDelete && r.URL.Path == base+"/edit-1":
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakePlay) recorded() ([]string, map[string]any, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...), f.listing, f.badAuths
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := playstore.New(context.Background(), "", testutils.ServiceAccountJSON(t, "http://127.0.0.1/token"))
	require.ErrorIs(t, err, playstore.ErrMissingPackageName)

	_, err = playstore.New(context.Background(), pkg, []byte("not json"))
	require.Error(t, err, "New should fail on an invalid service account key")

	_, err = playstore.NewFromFile(context.Background(), pkg, filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	p := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(p, testutils.ServiceAccountJSON(t, "http://127.0.0.1/token"), 0600), "Setup: could not write key")
	_, err = playstore.NewFromFile(context.Background(), pkg, p)
	require.NoError(t, err, "NewFromFile should accept a valid key file")
}

func TestListingFrom(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		locale  string
		listing locale.Listing

		want playstore.Listing
	}{
		"Google fields win": {
			locale:  "en",
			listing: locale.Listing{Title: "Face Off", Name: "Sudoku Face Off", ShortDescription: "Duel", Subtitle: "Sudoku duels", Description: "Long"},
			want:    playstore.Listing{Language: "en-US", Title: "Face Off", ShortDescription: "Duel", FullDescription: "Long"},
		},
		"Falls back on Apple fields": {
			locale:  "zh-hans",
			listing: locale.Listing{Name: "数独对决", Subtitle: "在线对战"},
			want:    playstore.Listing{Language: "zh-CN", Title: "数独对决", ShortDescription: "在线对战"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, playstore.ListingFrom(tc.locale, tc.listing))
		})
	}
}

func TestPushListing(t *testing.T) {
	t.Parallel()

	base := "/androidpublisher/v3/applications/" + pkg + "/edits"

	tests := map[string]struct {
		listing     locale.Listing
		failListing bool
		failCommit  bool

		wantCalls   []string
		wantListing map[string]any
		wantStatus  int
		wantErr     error
	}{
		"Pushes listing in a committed edit": {
			listing:     locale.Listing{Name: "Sudoku Face Off", Subtitle: "Sudoku duels", Description: "Race your friends.", WhatsNew: "Rooms"},
			wantCalls:   []string{"POST " + base, "PUT " + base + "/edit-1/listings/en-US", "POST " + base + "/edit-1:commit"},
			wantListing: map[string]any{"language": "en-US", "title": "Sudoku Face Off", "shortDescription": "Sudoku duels", "fullDescription": "Race your friends."},
		},

		"Error deletes edit when listing is rejected": {
			listing:     locale.Listing{Description: "Race your friends."},
			failListing: true,
			wantCalls:   []string{"POST " + base, "PUT " + base + "/edit-1/listings/en-US", "DELETE " + base + "/edit-1"},
			wantStatus:  http.StatusBadRequest,
		},
		"Error deletes edit when commit is refused": {
			listing:    locale.Listing{Description: "Race your friends."},
			failCommit: true,
			wantCalls:  []string{"POST " + base, "PUT " + base + "/edit-1/listings/en-US", "POST " + base + "/edit-1:commit", "DELETE " + base + "/edit-1"},
			wantStatus: http.StatusForbidden,
		},
		"Error on listing without Google fields": {
			listing: locale.Listing{WhatsNew: "Rooms", Keywords: "sudoku"},
			wantErr: playstore.ErrNothingToUpdate,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := &fakePlay{failListing: tc.failListing, failCommit: tc.failCommit}
			srv := httptest.NewServer(f)
			t.Cleanup(srv.Close)

			c, err := playstore.New(context.Background(), pkg, testutils.ServiceAccountJSON(t, srv.URL+"/token"), playstore.WithBaseURL(srv.URL))
			require.NoError(t, err, "Setup: could not create client")

			err = c.PushListing(context.Background(), "en", tc.listing)
			calls, listing, badAuths := f.recorded()
			assert.Equal(t, tc.wantCalls, calls, "Unexpected API calls")
			assert.Zero(t, badAuths, "Every API call should carry the service account token")

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			if tc.wantStatus != 0 {
				var apiErr *playstore.APIError
				require.ErrorAs(t, err, &apiErr, "PushListing should return an API error")
				assert.Equal(t, tc.wantStatus, apiErr.StatusCode)
				assert.NotEmpty(t, apiErr.Message, "API error should carry the Google message")
				return
			}
			require.NoError(t, err, "PushListing should not return an error")
			assert.Equal(t, tc.wantListing, listing)
		})
	}
}
