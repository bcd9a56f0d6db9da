// Package constants is responsible for defining the constants used in the application.
// It also provides utility functions to get the default configuration path.
package constants

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

var (
	// Version is the version of the application.
	Version = "Dev"
)

const (
	// CmdName is the name of the command line tool.
	CmdName = "faceoff"

	// DefaultAppFolder is the name of the default configuration folder.
	DefaultAppFolder = "faceoff"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn

	// DefaultMetadataDir is the directory holding the locale files, relative to the working directory.
	DefaultMetadataDir = "metadata"

	// LocaleExtension is the extension of the locale files.
	LocaleExtension = ".json"

	// DefaultHTTPTimeout is the timeout applied to every store API request.
	DefaultHTTPTimeout = 30 * time.Second

	// RunIDEnv is the environment variable passing the publish run ID to child processes.
	RunIDEnv = "FACEOFF_RUN_ID"
)

const (
	// DeepLinkScheme is the custom URI scheme routing players into a room.
	DeepLinkScheme = "sudokufaceoff"

	// AppStoreURLPrefix is the public App Store listing URL, to be suffixed with the Apple app ID.
	AppStoreURLPrefix = "https://apps.apple.com/app/id"

	// PlayStoreURLPrefix is the public Google Play listing URL, to be suffixed with the package name.
	PlayStoreURLPrefix = "https://play.google.com/store/apps/details?id="
)

const (
	// AppStoreConnectURL is the base URL of the App Store Connect API.
	AppStoreConnectURL = "https://api.appstoreconnect.apple.com"

	// AppStoreConnectAudience is the audience claim expected by App Store Connect.
	AppStoreConnectAudience = "appstoreconnect-v1"

	// AppStoreTokenLifetime is the validity of a signed App Store Connect token.
	// Apple rejects tokens living longer than 20 minutes.
	AppStoreTokenLifetime = 20 * time.Minute

	// PlayPublisherURL is the base URL of the Google Play Developer API.
	PlayPublisherURL = "https://androidpublisher.googleapis.com"

	// PlayPublisherScope is the OAuth scope of the Google Play Developer API.
	PlayPublisherScope = "https://www.googleapis.com/auth/androidpublisher"
)

type options struct {
	baseDir func() (string, error)
}

type option func(*options)

// GetDefaultConfigPath is the default path to the configuration folder.
func GetDefaultConfigPath(opts ...option) string {
	o := options{baseDir: os.UserConfigDir}
	for _, opt := range opts {
		opt(&o)
	}

	dir, err := o.baseDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, DefaultAppFolder)
}
