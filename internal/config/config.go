// Package config holds the configuration shared by every faceoff command.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/sudokufaceoff/faceoff/internal/constants"
)

// ErrMissingKeys is returned when a command needs configuration keys which are not set.
var ErrMissingKeys = errors.New("missing configuration keys")

// Apple holds the App Store Connect API credentials and the app to manage.
type Apple struct {
	KeyID    string `mapstructure:"keyId" yaml:"keyId"`
	IssuerID string `mapstructure:"issuerId" yaml:"issuerId"`
	KeyPath  string `mapstructure:"keyPath" yaml:"keyPath"`
	AppID    string `mapstructure:"appId" yaml:"appId"`
}

// Google holds the Google Play service account and the app to manage.
type Google struct {
	ServiceAccountPath string `mapstructure:"serviceAccountPath" yaml:"serviceAccountPath"`
	PackageName        string `mapstructure:"packageName" yaml:"packageName"`
}

// Publish overrides the commands run by "push both". An empty command re-executes faceoff.
type Publish struct {
	AppleCommand  []string `mapstructure:"appleCommand" yaml:"appleCommand,omitempty"`
	GoogleCommand []string `mapstructure:"googleCommand" yaml:"googleCommand,omitempty"`
}

// Config is the faceoff configuration document.
type Config struct {
	Apple       Apple         `mapstructure:"apple" yaml:"apple"`
	Google      Google        `mapstructure:"google" yaml:"google"`
	MetadataDir string        `mapstructure:"metadataDir" yaml:"metadataDir"`
	HTTPTimeout time.Duration `mapstructure:"httpTimeout" yaml:"httpTimeout"`
	Publish     Publish       `mapstructure:"publish" yaml:"publish"`
}

// SetDefaults registers the default values of the configuration in vip.
func SetDefaults(vip *viper.Viper) {
	vip.SetDefault("metadatadir", constants.DefaultMetadataDir)
	vip.SetDefault("httptimeout", constants.DefaultHTTPTimeout.String())
}

// Load decodes the configuration held by vip.
// Relative key paths are resolved against baseDir, the directory of the configuration file.
func Load(vip *viper.Viper, baseDir string) (c Config, err error) {
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(" "),
	))
	if err := vip.Unmarshal(&c, hooks); err != nil {
		return Config{}, fmt.Errorf("unable to decode configuration into struct: %w", err)
	}

	if c.HTTPTimeout <= 0 {
		return Config{}, fmt.Errorf("httpTimeout must be positive, got %s", c.HTTPTimeout)
	}

	c.Apple.KeyPath = resolve(baseDir, c.Apple.KeyPath)
	c.Google.ServiceAccountPath = resolve(baseDir, c.Google.ServiceAccountPath)

	return c, nil
}

func resolve(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// ValidateApple checks the keys needed to call App Store Connect are set.
func (c Config) ValidateApple() error {
	return missing(map[string]string{
		"apple.keyId":    c.Apple.KeyID,
		"apple.issuerId": c.Apple.IssuerID,
		"apple.keyPath":  c.Apple.KeyPath,
		"apple.appId":    c.Apple.AppID,
	})
}

// ValidateGoogle checks the keys needed to call the Google Play Developer API are set.
func (c Config) ValidateGoogle() error {
	return missing(map[string]string{
		"google.serviceAccountPath": c.Google.ServiceAccountPath,
		"google.packageName":        c.Google.PackageName,
	})
}

// ValidateStores checks both store identifiers are set.
func (c Config) ValidateStores() error {
	return missing(map[string]string{
		"apple.appId":        c.Apple.AppID,
		"google.packageName": c.Google.PackageName,
	})
}

func missing(keys map[string]string) error {
	var m []string
	for k, v := range keys {
		if strings.TrimSpace(v) == "" {
			m = append(m, k)
		}
	}
	if len(m) == 0 {
		return nil
	}
	slices.Sort(m)
	return fmt.Errorf("%w: %s", ErrMissingKeys, strings.Join(m, ", "))
}
