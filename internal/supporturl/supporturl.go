// Package supporturl reports the support URLs an operator has to set by hand in App Store Connect.
//
// The App Store Connect API does not expose the support URL of an app for writing, so the
// inspector only checks the API credentials, prints the app as known by Apple and lists the
// URL wanted for each locale.
package supporturl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/sudokufaceoff/faceoff/internal/appstore"
	"github.com/sudokufaceoff/faceoff/internal/locale"
	"github.com/ubuntu/decorate"
)

// AppGetter fetches an app from App Store Connect.
type AppGetter interface {
	GetApp(ctx context.Context, appID string) (appstore.App, error)
}

// LocaleURL is the support URL a locale file asks for.
type LocaleURL struct {
	Locale      string
	AppleLocale string
	SupportURL  string
}

// Report is the result of an inspection.
type Report struct {
	App     appstore.App
	Locales []LocaleURL
}

// Missing lists the locales without any support URL.
func (r Report) Missing() []string {
	var m []string
	for _, l := range r.Locales {
		if l.SupportURL == "" {
			m = append(m, l.Locale)
		}
	}
	return m
}

// Inspector fetches the app and collects the support URLs of the locale files.
type Inspector struct {
	client AppGetter
	appID  string
	dir    string
	out    io.Writer
	log    *slog.Logger
}

type options struct {
	out io.Writer
	log *slog.Logger
}

// Options represents an optional function to override Inspector default values.
type Options func(*options)

// WithOutput sets where the instructions are printed. Defaults to stdout.
func WithOutput(w io.Writer) Options {
	return func(o *options) {
		o.out = w
	}
}

// WithLogger sets the logger of the inspector.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// New returns an Inspector of appID reading the locale files of metadataDir.
func New(client AppGetter, appID, metadataDir string, args ...Options) Inspector {
	opts := options{
		out: os.Stdout,
		log: slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	return Inspector{
		client: client,
		appID:  appID,
		dir:    metadataDir,
		out:    opts.out,
		log:    opts.log,
	}
}

// Run fetches the app, reads the locale files and prints the manual instructions.
func (i Inspector) Run(ctx context.Context) (r Report, err error) {
	defer decorate.OnError(&err, "could not inspect support URLs")

	files, err := locale.Discover(i.dir)
	if err != nil {
		return Report{}, err
	}

	app, err := i.client.GetApp(ctx, i.appID)
	if err != nil {
		return Report{}, err
	}
	i.log.Info("Fetched app from App Store Connect", "app", app.ID, "name", app.Name)
	r.App = app

	for _, f := range files {
		l, err := locale.Load(f.Path)
		if err != nil {
			return Report{}, err
		}
		r.Locales = append(r.Locales, LocaleURL{
			Locale:      f.Locale,
			AppleLocale: locale.AppleLocale(f.Locale),
			SupportURL:  l.SupportURL,
		})
	}

	if err := i.print(r); err != nil {
		return Report{}, fmt.Errorf("could not print instructions: %v", err)
	}
	if m := r.Missing(); len(m) > 0 {
		i.log.Warn("Some locale files have no support URL", "locales", m)
	}

	return r, nil
}

func (i Inspector) print(r Report) error {
	w := tabwriter.NewWriter(i.out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "App:\t%s\n", r.App.Name)
	fmt.Fprintf(w, "ID:\t%s\n", r.App.ID)
	fmt.Fprintf(w, "Bundle ID:\t%s\n", r.App.BundleID)
	fmt.Fprintf(w, "SKU:\t%s\n", r.App.SKU)
	fmt.Fprintf(w, "Primary locale:\t%s\n", r.App.PrimaryLocale)
	fmt.Fprintln(w)

	if len(r.Locales) == 0 {
		fmt.Fprintln(w, "No locale file found.")
		return w.Flush()
	}

	fmt.Fprintln(w, "The support URL cannot be set through the App Store Connect API.")
	fmt.Fprintln(w, "Set it in App Store Connect > App Information for each locale below:")
	fmt.Fprintln(w)
	for _, l := range r.Locales {
		u := l.SupportURL
		if u == "" {
			u = "(none in locale file)"
		}
		fmt.Fprintf(w, "  %s\t%s\n", l.AppleLocale, u)
	}

	return w.Flush()
}
