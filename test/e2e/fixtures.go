package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/asistan/internal/models"
)

// WriteSnapshotFile writes snap to path as YAML (.yaml, .yml) or JSON (anything else).
func WriteSnapshotFile(path string, snap *models.Snapshot) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(snap)
	default:
		data, err = json.MarshalIndent(snap, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// MarkdownReply is a canned model answer holding a two-row pipe table.
const MarkdownReply = "İzmir bölgesindeki klinikler:\n\n" +
	"| Klinik | Durum |\n" +
	"|---|---|\n" +
	"| Güneş Diş Kliniği | Aktif |\n" +
	"| Körfez Klinik 01 | Aktif |\n"
