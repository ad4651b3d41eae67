// Package cli provides output formatting for the asistan command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hyperjump/asistan/internal/assistant"
	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/internal/relevance"
	"github.com/hyperjump/asistan/internal/structure"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteReply writes an assistant reply. Detected tables are rendered as aligned columns.
func WriteReply(w io.Writer, reply *assistant.Reply, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, reply)
	}
	fmt.Fprintf(w, "%s\n", reply.Message.Text)
	if reply.Message.Table != nil {
		fmt.Fprintln(w)
		WriteTable(w, reply.Message.Table)
	}
	fmt.Fprintf(w, "\n# conversation: %s", reply.ConversationID)
	if reply.Resolver != "" {
		fmt.Fprintf(w, " | resolver: %s", reply.Resolver)
	}
	fmt.Fprintf(w, " | structure: %s\n", reply.Structure)
	return nil
}

// WriteResolution writes a cascade result and its grounding context.
func WriteResolution(w io.Writer, res models.Resolution, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	if !res.Retrieved {
		fmt.Fprintln(w, "no records retrieved (generic prompt)")
		return nil
	}
	fmt.Fprintf(w, "resolver: %s\n", res.Resolver)
	if res.Grounded != nil {
		fmt.Fprintf(w, "grounded: %s\n", res.Grounded)
	}
	fmt.Fprintf(w, "\n%s\n", res.Context)
	return nil
}

// WriteDecision writes a relevance decision.
func WriteDecision(w io.Writer, d relevance.Decision, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{
			"relevant": d.Relevant,
			"greeting": d.Greeting,
			"reason":   d.Reason,
			"matched":  d.Matched,
		})
	}
	fmt.Fprintf(w, "relevant: %t\n", d.Relevant)
	fmt.Fprintf(w, "greeting: %t\n", d.Greeting)
	if d.Reason != relevance.ReasonNone {
		fmt.Fprintf(w, "reason:   %s (%s)\n", d.Reason, d.Matched)
	}
	return nil
}

// WriteDetection writes a structure detection result.
func WriteDetection(w io.Writer, r structure.Result, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "kind: %s\n", r.Kind)
	if r.Table != nil {
		fmt.Fprintln(w)
		WriteTable(w, r.Table)
	}
	return nil
}

// WriteTable renders table data as tab-aligned columns.
func WriteTable(w io.Writer, t *models.TableData) {
	if t.Title != "" {
		fmt.Fprintf(w, "%s\n", t.Title)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}
