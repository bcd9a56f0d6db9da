// Package share builds the invitations players send to bring friends into a room.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sudokufaceoff/faceoff/internal/constants"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrEmptyRoomCode is returned when no room code is given.
	ErrEmptyRoomCode = errors.New("room code is empty")
	// ErrNotDeepLink is returned when a link does not use the Face Off scheme.
	ErrNotDeepLink = errors.New("not a Sudoku Face Off link")
)

// Platform is the platform the invitation is sent from.
type Platform string

// Known platforms. Any other value is handled as Web.
const (
	IOS     Platform = "ios"
	Android Platform = "android"
	Web     Platform = "web"
)

// Stores holds the identifiers of the app in both stores.
type Stores struct {
	AppleAppID  string
	PackageName string
}

// AppStoreURL is the public App Store page of the app.
func (s Stores) AppStoreURL() string {
	return constants.AppStoreURLPrefix + s.AppleAppID
}

// PlayStoreURL is the public Google Play page of the app.
func (s Stores) PlayStoreURL() string {
	return constants.PlayStoreURLPrefix + url.QueryEscape(s.PackageName)
}

// DeepLink returns the link opening roomCode in the app.
func DeepLink(roomCode string) (string, error) {
	code := strings.TrimSpace(roomCode)
	if code == "" {
		return "", ErrEmptyRoomCode
	}
	return constants.DeepLinkScheme + "://" + code, nil
}

// ParseDeepLink returns the room code of a link built by DeepLink.
func ParseDeepLink(link string) (string, error) {
	scheme, code, ok := strings.Cut(strings.TrimSpace(link), "://")
	if !ok || !strings.EqualFold(scheme, constants.DeepLinkScheme) {
		return "", fmt.Errorf("%w: %q", ErrNotDeepLink, link)
	}
	code = strings.TrimSuffix(code, "/")
	if code == "" {
		return "", ErrEmptyRoomCode
	}
	return code, nil
}

const messageTemplate = `Join me for a Sudoku Face Off! Room code: %s
Open the room: %s
%s`

// Message returns the invitation text for roomCode sent from platform p.
// iOS players only get the App Store link and Android ones only the Google Play link.
// Web players, and any unknown platform, get both.
func Message(roomCode string, p Platform, stores Stores) (string, error) {
	link, err := DeepLink(roomCode)
	if err != nil {
		return "", err
	}

	var download string
	switch Platform(strings.ToLower(string(p))) {
	case IOS:
		download = "Get the app: " + stores.AppStoreURL()
	case Android:
		download = "Get the app: " + stores.PlayStoreURL()
	default:
		download = fmt.Sprintf("Get the app on iOS: %s\nGet the app on Android: %s", stores.AppStoreURL(), stores.PlayStoreURL())
	}

	return fmt.Sprintf(messageTemplate, cases.Upper(language.Und).String(strings.TrimSpace(roomCode)), link, download), nil
}
