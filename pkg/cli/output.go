package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// OutputFormat represents the output format for command results, per
// spec §6's "--format {markdown|json|table|summary}".
type OutputFormat string

const (
	// FormatMarkdown renders a short Markdown document (default).
	FormatMarkdown OutputFormat = "markdown"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatTable renders an aligned plain-text table.
	FormatTable OutputFormat = "table"
	// FormatSummary renders a single human-readable summary line.
	FormatSummary OutputFormat = "summary"
)

// Tabular is implemented by command results with a natural
// row/column rendering; FormatTable and FormatMarkdown use it when
// present and fall back to JSON otherwise.
type Tabular interface {
	TableHeader() []string
	TableRows() [][]string
}

// Summarizable is implemented by command results with a natural
// one-line human summary; FormatSummary uses it when present.
type Summarizable interface {
	Summary() string
}

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// JSONFormatter formats output as indented JSON.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// MarkdownFormatter renders data as a Markdown table when it
// implements Tabular, or as a fenced JSON block otherwise.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(data interface{}) ([]byte, error) {
	var buf strings.Builder
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func (f *MarkdownFormatter) FormatTo(w io.Writer, data interface{}) error {
	if t, ok := data.(Tabular); ok {
		header := t.TableHeader()
		fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
		fmt.Fprintf(w, "|%s|\n", strings.Repeat("---|", len(header)))
		for _, row := range t.TableRows() {
			fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
		}
		return nil
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "```json\n%s\n```\n", encoded)
	return nil
}

// TableFormatter renders data as an aligned plain-text table when it
// implements Tabular, or falls back to indented JSON otherwise.
type TableFormatter struct{}

func (f *TableFormatter) Format(data interface{}) ([]byte, error) {
	var buf strings.Builder
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func (f *TableFormatter) FormatTo(w io.Writer, data interface{}) error {
	t, ok := data.(Tabular)
	if !ok {
		encoded, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", encoded)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.TableHeader(), "\t"))
	for _, row := range t.TableRows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// SummaryFormatter renders a single human-readable line via
// Summarizable, or falls back to fmt's default verb.
type SummaryFormatter struct{}

func (f *SummaryFormatter) Format(data interface{}) ([]byte, error) {
	var buf strings.Builder
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func (f *SummaryFormatter) FormatTo(w io.Writer, data interface{}) error {
	if s, ok := data.(Summarizable); ok {
		_, err := fmt.Fprintf(w, "%s\n", s.Summary())
		return err
	}
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// NewFormatter creates a new formatter for the specified format,
// defaulting to Markdown for anything unrecognized.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatTable:
		return &TableFormatter{}
	case FormatSummary:
		return &SummaryFormatter{}
	default:
		return &MarkdownFormatter{}
	}
}
