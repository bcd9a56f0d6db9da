// Package locale handles the per-language app-store listing files.
//
// A locale file is a JSON object named after its locale code (en.json, pt-br.json, ...)
// holding the listing text pushed to both stores.
package locale

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sudokufaceoff/faceoff/internal/constants"
	"github.com/sudokufaceoff/faceoff/internal/fileutils"
	"github.com/ubuntu/decorate"
)

var (
	// ErrLocaleNotFound is returned when no locale file exists for the requested locale.
	ErrLocaleNotFound = errors.New("locale file not found")
	// ErrInvalidLocale is returned when a locale code does not match the locale file pattern.
	ErrInvalidLocale = errors.New("invalid locale code")
)

var filePattern = regexp.MustCompile(`(?i)^[a-z]{2}(-[a-z]{2,4})?\.json$`)

// excludedMarker excludes translation prompt files living next to the locale files.
const excludedMarker = "prompt"

// File is a locale file found in the metadata directory.
type File struct {
	// Locale is the code derived from the file name, e.g. "en" or "pt-br".
	Locale string
	Path   string
}

// IsLocaleFile reports whether name is a locale file name.
func IsLocaleFile(name string) bool {
	if strings.Contains(strings.ToLower(name), excludedMarker) {
		return false
	}
	return filePattern.MatchString(name)
}

// Discover lists every locale file in dir, sorted by name.
func Discover(dir string) (files []File, err error) {
	defer decorate.OnError(&err, "could not discover locale files in %s", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.IsDir() || !IsLocaleFile(e.Name()) {
			continue
		}
		files = append(files, File{
			Locale: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Path:   filepath.Join(dir, e.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Path returns the expected path of the locale file for locale in dir.
func Path(dir, locale string) string {
	return filepath.Join(dir, locale+constants.LocaleExtension)
}

// Find returns the path of the locale file for locale in dir, checking that it exists.
func Find(dir, locale string) (string, error) {
	if !IsLocaleFile(locale + constants.LocaleExtension) {
		return "", fmt.Errorf("%w: %q", ErrInvalidLocale, locale)
	}

	p := Path(dir, locale)
	fi, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrLocaleNotFound, p)
	}
	if err != nil {
		return "", fmt.Errorf("could not check locale file %s: %v", p, err)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrLocaleNotFound, p)
	}
	return p, nil
}

// Listing is the text of a locale file pushed to the stores.
//
// Fields the stores do not use are ignored. Use Document to rewrite a file.
type Listing struct {
	Name             string `json:"name"`
	Subtitle         string `json:"subtitle"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	Description      string `json:"description"`
	Keywords         string `json:"keywords"`
	WhatsNew         string `json:"whatsNew"`
	PromotionalText  string `json:"promotionalText"`
	SupportURL       string `json:"supportUrl"`
	MarketingURL     string `json:"marketingUrl"`
	PrivacyPolicyURL string `json:"privacyPolicyUrl"`
}

// marshalNoEscape is json.Marshal without HTML escaping: "&" stays "&" in store text.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Load reads the locale file at path.
func Load(path string) (l Listing, err error) {
	defer decorate.OnError(&err, "could not load locale file %s", path)

	if err := fileutils.ReadJSONFile(path, &l); err != nil {
		return Listing{}, err
	}
	return l, nil
}
