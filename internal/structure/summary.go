package structure

import (
	"regexp"
	"strings"

	"github.com/hyperjump/asistan/internal/models"
)

var (
	summaryPattern = regexp.MustCompile(`Toplam (\d+) (.*?) bulundu\.`)
	bulletPattern  = regexp.MustCompile(`^\s*[-*•]\s+(.+)$`)
)

// ParseSummary reads a retrieval listing: a "Toplam N <noun> bulundu." line
// followed by "- Key: Value, Key: Value" bullets. Headers come from the keys in
// bullet order; a key first seen on a later bullet adds a column. Fragments
// without a colon belong to the previous value ("Tutar: 1.250,00, TRY" style
// splits). The noun phrase becomes the title.
func ParseSummary(text string) (*models.TableData, bool) {
	text = strings.ReplaceAll(text, "**", "")
	loc := summaryPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, false
	}
	title := strings.TrimSpace(text[loc[4]:loc[5]])

	var headers []string
	column := map[string]int{}
	var rows [][]string
	for _, line := range strings.Split(text[loc[1]:], "\n") {
		m := bulletPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fields := bulletFields(m[1])
		if len(fields) == 0 {
			continue
		}
		row := make([]string, len(headers))
		for _, f := range fields {
			idx, ok := column[f.key]
			if !ok {
				idx = len(headers)
				column[f.key] = idx
				headers = append(headers, f.key)
				row = append(row, "")
			}
			row[idx] = f.value
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, false
	}
	// Earlier rows are padded once every column is known.
	for i := range rows {
		for len(rows[i]) < len(headers) {
			rows[i] = append(rows[i], "")
		}
	}
	return &models.TableData{Headers: headers, Rows: rows, Title: title}, true
}

type field struct {
	key   string
	value string
}

func bulletFields(s string) []field {
	var out []field
	for _, frag := range strings.Split(s, ", ") {
		key, value, ok := strings.Cut(frag, ":")
		if !ok || strings.TrimSpace(key) == "" {
			if len(out) > 0 {
				out[len(out)-1].value += ", " + strings.TrimSpace(frag)
			}
			continue
		}
		out = append(out, field{key: strings.TrimSpace(key), value: strings.TrimSpace(value)})
	}
	return out
}
