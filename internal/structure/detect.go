// Package structure turns generated reply text back into table data for display.
package structure

import (
	"regexp"
	"strings"

	"github.com/hyperjump/asistan/internal/models"
)

// Kind names the strategy that produced a table.
type Kind string

const (
	KindNone     Kind = "text"
	KindMarker   Kind = "marker"
	KindMarkdown Kind = "markdown"
	KindList     Kind = "list"
	KindSummary  Kind = "summary"
)

// ListTitle is the title and only header of tables built from bullet lists.
const ListTitle = "Items"

// MinListLines is the number of list lines needed before a list becomes a table.
const MinListLines = 3

// Result is the outcome of structure detection.
type Result struct {
	IsTable bool              `json:"is_table"`
	Kind    Kind              `json:"kind"`
	Table   *models.TableData `json:"table_data,omitempty"`
}

var (
	markerPattern   = regexp.MustCompile(`(?s)\[TABLE:\s*(.*?)\]`)
	listLinePattern = regexp.MustCompile(`^\s*(?:\d+\.|[-*•])\s+(.+)$`)
	separatorCells  = regexp.MustCompile(`^[\s\-:|]+$`)
)

// Detect runs the marker, markdown, and list strategies in that order and
// returns the first table found.
func Detect(text string) Result {
	if t, ok := parseMarker(text); ok {
		return Result{IsTable: true, Kind: KindMarker, Table: t}
	}
	if t, ok := parseMarkdown(text); ok {
		return Result{IsTable: true, Kind: KindMarkdown, Table: t}
	}
	if t, ok := parseList(text); ok {
		return Result{IsTable: true, Kind: KindList, Table: t}
	}
	return Result{Kind: KindNone}
}

// DetectReply is used when packaging an assistant reply. Retrieval answers are
// tried against the "Toplam N ... bulundu." summary shape first.
func DetectReply(text string, retrieved bool) Result {
	if retrieved {
		if t, ok := ParseSummary(text); ok {
			return Result{IsTable: true, Kind: KindSummary, Table: t}
		}
	}
	return Detect(text)
}

// parseMarker reads "[TABLE: h1,h2|v1,v2|v3,v4]".
func parseMarker(text string) (*models.TableData, bool) {
	m := markerPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	parts := strings.Split(m[1], "|")
	headers := splitCells(parts[0], ",")
	if len(headers) == 0 {
		return nil, false
	}
	rows := make([][]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "" {
			continue
		}
		rows = append(rows, splitCells(p, ","))
	}
	return &models.TableData{Headers: headers, Rows: rows}, true
}

// parseMarkdown reads pipe tables. The first pipe row is the header; a dash
// row directly after it is skipped.
func parseMarkdown(text string) (*models.TableData, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.Contains(line, "|") {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, false
	}

	headers := pipeCells(lines[0])
	body := lines[1:]
	if isSeparator(body[0]) {
		body = body[1:]
	}
	rows := make([][]string, 0, len(body))
	for _, line := range body {
		rows = append(rows, pipeCells(line))
	}
	return &models.TableData{Headers: headers, Rows: rows}, true
}

func isSeparator(line string) bool {
	return separatorCells.MatchString(line) && strings.Contains(line, "-")
}

func pipeCells(line string) []string {
	line = strings.TrimPrefix(strings.TrimSpace(line), "|")
	line = strings.TrimSuffix(line, "|")
	return splitCells(line, "|")
}

// parseList turns three or more bullet or numbered lines into a one-column table.
func parseList(text string) (*models.TableData, bool) {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		if m := listLinePattern.FindStringSubmatch(line); m != nil {
			rows = append(rows, []string{strings.TrimSpace(m[1])})
		}
	}
	if len(rows) < MinListLines {
		return nil, false
	}
	return &models.TableData{Headers: []string{ListTitle}, Rows: rows, Title: ListTitle}, true
}

func splitCells(s, sep string) []string {
	raw := strings.Split(s, sep)
	cells := make([]string, 0, len(raw))
	for _, c := range raw {
		cells = append(cells, strings.TrimSpace(c))
	}
	if len(cells) == 1 && cells[0] == "" {
		return nil
	}
	return cells
}
