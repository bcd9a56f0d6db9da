package supporturl_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudokufaceoff/faceoff/internal/appstore"
	"github.com/sudokufaceoff/faceoff/internal/supporturl"
)

type fakeGetter struct {
	app appstore.App
	err error

	gotID string
}

func (f *fakeGetter) GetApp(_ context.Context, appID string) (appstore.App, error) {
	f.gotID = appID
	return f.app, f.err
}

var app = appstore.App{ID: "42", Name: "Sudoku Face Off", BundleID: "com.example.faceoff", SKU: "FACEOFF", PrimaryLocale: "en-US"}

func TestRun(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		files  map[string]string
		getErr error
		noDir  bool

		wantLocales []supporturl.LocaleURL
		wantMissing []string
		wantOutput  []string
		wantErr     bool
	}{
		"Lists support URL of every locale": {
			files: map[string]string{
				"en.json":        `{"supportUrl": "https://example.com/support"}`,
				"fr.json":        `{"supportUrl": "https://example.com/fr/support"}`,
				"prompt-en.json": `{"supportUrl": "https://ignored.example.com"}`,
			},
			wantLocales: []supporturl.LocaleURL{
				{Locale: "en", AppleLocale: "en-US", SupportURL: "https://example.com/support"},
				{Locale: "fr", AppleLocale: "fr-FR", SupportURL: "https://example.com/fr/support"},
			},
			wantOutput: []string{"Sudoku Face Off", "com.example.faceoff", "App Information", "en-US", "https://example.com/fr/support"},
		},
		"Reports locales without support URL": {
			files: map[string]string{
				"en.json": `{"supportUrl": "https://example.com/support"}`,
				"de.json": `{"name": "Sudoku Duell"}`,
			},
			wantLocales: []supporturl.LocaleURL{
				{Locale: "de", AppleLocale: "de-DE"},
				{Locale: "en", AppleLocale: "en-US", SupportURL: "https://example.com/support"},
			},
			wantMissing: []string{"de"},
			wantOutput:  []string{"(none in locale file)"},
		},
		"No locale file": {
			wantOutput: []string{"Sudoku Face Off", "No locale file found."},
		},

		"Error when app cannot be fetched": {files: map[string]string{"en.json": `{}`}, getErr: errors.New("status 401"), wantErr: true},
		"Error on invalid locale file":     {files: map[string]string{"en.json": `{`}, wantErr: true},
		"Error on missing directory":       {noDir: true, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			for n, content := range tc.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(content), 0600), "Setup: could not write locale file")
			}
			if tc.noDir {
				dir = filepath.Join(dir, "missing")
			}

			g := &fakeGetter{app: app, err: tc.getErr}
			var out bytes.Buffer
			r, err := supporturl.New(g, "42", dir, supporturl.WithOutput(&out)).Run(context.Background())
			if tc.wantErr {
				require.Error(t, err, "Run should return an error")
				return
			}
			require.NoError(t, err, "Run should not return an error")

			assert.Equal(t, "42", g.gotID, "Run should fetch the configured app")
			assert.Equal(t, app, r.App)
			assert.Equal(t, tc.wantLocales, r.Locales)
			assert.Equal(t, tc.wantMissing, r.Missing())
			for _, want := range tc.wantOutput {
				assert.Contains(t, out.String(), want, "Instructions should mention %q", want)
			}
		})
	}
}
