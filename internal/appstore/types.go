package appstore

import (
	"fmt"
	"strings"
)

// App is the App Store Connect app resource.
type App struct {
	ID            string
	Name          string
	BundleID      string
	SKU           string
	PrimaryLocale string
}

// Version is an App Store version of the app.
type Version struct {
	ID            string
	VersionString string
	State         string
}

// Localization is the per-locale metadata of an App Store version.
type Localization struct {
	ID     string
	Locale string
	LocalizationAttributes
}

// LocalizationAttributes are the editable fields of a version localization.
// Empty fields are left untouched on update.
type LocalizationAttributes struct {
	Description     string `json:"description,omitempty"`
	Keywords        string `json:"keywords,omitempty"`
	WhatsNew        string `json:"whatsNew,omitempty"`
	PromotionalText string `json:"promotionalText,omitempty"`
	SupportURL      string `json:"supportUrl,omitempty"`
	MarketingURL    string `json:"marketingUrl,omitempty"`
}

// APIError is a non successful response of App Store Connect.
type APIError struct {
	StatusCode int
	Errors     []ErrorDetail `json:"errors"`
}

// ErrorDetail is one entry of the JSON:API errors array.
type ErrorDetail struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("App Store Connect returned status %d", e.StatusCode)
	}

	details := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		details = append(details, fmt.Sprintf("%s: %s", d.Code, d.Detail))
	}
	return fmt.Sprintf("App Store Connect returned status %d: %s", e.StatusCode, strings.Join(details, "; "))
}

// resource is a JSON:API resource object.
type resource[T any] struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes T      `json:"attributes"`
}

type document[T any] struct {
	Data T `json:"data"`
}

type appAttributes struct {
	Name          string `json:"name"`
	BundleID      string `json:"bundleId"`
	SKU           string `json:"sku"`
	PrimaryLocale string `json:"primaryLocale"`
}

type versionAttributes struct {
	VersionString string `json:"versionString"`
	AppStoreState string `json:"appStoreState"`
}

type localizationAttributes struct {
	Locale string `json:"locale"`
	LocalizationAttributes
}
