package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/lodthe/fromcheck/internal/audit"

	"github.com/gookit/color"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
	}
}

// ColorEnabled reports whether ANSI colors should be written to f.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type Renderer struct {
	w      io.Writer
	format Format
	color  bool
}

func New(w io.Writer, format Format, colored bool) *Renderer {
	return &Renderer{
		w:      w,
		format: format,
		color:  colored && format == FormatTable,
	}
}

// Report writes the audit report in the configured format.
func (r *Renderer) Report(report *audit.Report) error {
	switch r.format {
	case FormatJSON:
		return r.json(report)
	case FormatYAML:
		return r.yaml(report)
	default:
		return r.table(report)
	}
}

// Entry writes a single audit entry, as printed by the "latest" command.
func (r *Renderer) Entry(entry audit.Entry) error {
	switch r.format {
	case FormatJSON:
		return r.json(entry)
	case FormatYAML:
		return r.yaml(entry)
	}

	w := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "IMAGE\t%s\n", entry.Image)
	fmt.Fprintf(w, "CURRENT\t%s\n", orDash(entry.Current))
	fmt.Fprintf(w, "LATEST\t%s\n", orDash(entry.Latest))
	if entry.LastUpdated != nil {
		fmt.Fprintf(w, "UPDATED\t%s\n", entry.LastUpdated.Format("2006-01-02"))
	}
	if entry.Newer > 0 {
		fmt.Fprintf(w, "NEWER\t%d\n", entry.Newer)
	}
	fmt.Fprintf(w, "STATUS\t%s\n", r.status(entry.Status))
	if entry.Error != "" {
		fmt.Fprintf(w, "ERROR\t%s\n", entry.Error)
	}

	return w.Flush()
}

func (r *Renderer) table(report *audit.Report) error {
	if len(report.Entries) == 0 {
		_, err := fmt.Fprintln(r.w, "No Dockerfiles found")
		return err
	}

	// Status goes last so that color codes do not break the alignment.
	w := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DOCKERFILE\tLINE\tIMAGE\tCURRENT\tLATEST\tSTATUS")
	for _, e := range report.Entries {
		line := "-"
		if e.Line > 0 {
			line = fmt.Sprint(e.Line)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Dockerfile,
			line,
			orDash(e.Image),
			orDash(e.Current),
			orDash(e.Latest),
			r.status(e.Status),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(r.w, "\n"+r.summary(report))

	return err
}

func (r *Renderer) summary(report *audit.Report) string {
	counts := report.Summary()

	parts := make([]string, 0, len(audit.Statuses))
	for _, s := range audit.Statuses {
		if counts[s] == 0 {
			continue
		}

		parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
	}

	return fmt.Sprintf("%d images: %s", len(report.Entries), strings.Join(parts, ", "))
}

func (r *Renderer) status(s audit.Status) string {
	if !r.color {
		return string(s)
	}

	switch s {
	case audit.StatusUpToDate:
		return color.Green.Render(string(s))
	case audit.StatusOutdated:
		return color.Yellow.Render(string(s))
	case audit.StatusFailed, audit.StatusInvalid:
		return color.Red.Render(string(s))
	default:
		return color.Gray.Render(string(s))
	}
}

func (r *Renderer) json(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(v), "failed to encode json")
}

func (r *Renderer) yaml(v any) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode yaml")
	}

	return enc.Close()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
