// Package sanitize rewrites the characters app stores reject in locale listing text.
//
// Only the description and whatsNew fields are rewritten.
package sanitize

import (
	"fmt"
	"log/slog"

	"github.com/sudokufaceoff/faceoff/internal/locale"
	"github.com/ubuntu/decorate"
)

// Sanitizer rewrites the locale files of a metadata directory.
type Sanitizer struct {
	dir    string
	dryRun bool
	log    *slog.Logger
}

type options struct {
	dryRun bool
	log    *slog.Logger
}

// Options represents an optional function to override Sanitizer default values.
type Options func(*options)

// WithDryRun reports the replacements without writing any file.
func WithDryRun(dryRun bool) Options {
	return func(o *options) {
		o.dryRun = dryRun
	}
}

// WithLogger sets the logger of the sanitizer.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// New returns a Sanitizer for the locale files of dir.
func New(dir string, args ...Options) Sanitizer {
	opts := options{log: slog.Default()}
	for _, opt := range args {
		opt(&opts)
	}

	return Sanitizer{
		dir:    dir,
		dryRun: opts.dryRun,
		log:    opts.log,
	}
}

// FileReport holds the replacements made in one locale file.
type FileReport struct {
	Locale      string
	Path        string
	Description int
	WhatsNew    int
}

// Replacements returns the number of replaced characters in the file.
func (r FileReport) Replacements() int {
	return r.Description + r.WhatsNew
}

// Report aggregates the FileReport of a run.
type Report struct {
	Files        []FileReport
	Changed      int
	Replacements int
}

// Scanned returns the number of locale files examined.
func (r Report) Scanned() int {
	return len(r.Files)
}

func (r *Report) add(f FileReport) {
	r.Files = append(r.Files, f)
	if n := f.Replacements(); n > 0 {
		r.Changed++
		r.Replacements += n
	}
}

// Run sanitizes every locale file of the directory.
// It stops at the first file that cannot be read or written.
func (s Sanitizer) Run() (rep Report, err error) {
	defer decorate.OnError(&err, "could not sanitize %s", s.dir)

	files, err := locale.Discover(s.dir)
	if err != nil {
		return Report{}, err
	}

	for _, f := range files {
		fr, err := s.File(f)
		if err != nil {
			return rep, err
		}
		rep.add(fr)
	}

	s.log.Info("Sanitized locale files", "dir", s.dir, "scanned", rep.Scanned(), "changed", rep.Changed, "replacements", rep.Replacements)
	return rep, nil
}

// File sanitizes a single locale file. The file is only rewritten if a replacement occurred,
// and only the rewritten values change in it.
func (s Sanitizer) File(f locale.File) (fr FileReport, err error) {
	doc, err := locale.LoadDocument(f.Path)
	if err != nil {
		return FileReport{}, err
	}

	fr = FileReport{Locale: f.Locale, Path: f.Path}
	if fr.Description, err = doc.RewriteString("description", Text); err != nil {
		return FileReport{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	if fr.WhatsNew, err = doc.RewriteString("whatsNew", Text); err != nil {
		return FileReport{}, fmt.Errorf("%s: %w", f.Path, err)
	}

	if fr.Replacements() == 0 {
		s.log.Debug("No replacement needed", "file", f.Path)
		return fr, nil
	}

	s.log.Debug("Replaced characters", "file", f.Path, "description", fr.Description, "whatsNew", fr.WhatsNew)
	if s.dryRun {
		return fr, nil
	}

	if err := doc.Save(f.Path); err != nil {
		return FileReport{}, fmt.Errorf("could not write sanitized file: %w", err)
	}
	return fr, nil
}
