// Package backup reads and writes portable backups of the entry set and
// exports spreadsheet timesheets.
package backup

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/dori/timelog/internal/model"
	"github.com/dori/timelog/internal/store"
)

// Version is written into every exported document
const Version = "1.0"

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// Document is the backup file layout
type Document struct {
	Entries    []model.Entry `json:"entries"`
	DarkMode   bool          `json:"darkMode"`
	ExportDate string        `json:"exportDate"`
	Version    string        `json:"version"`
}

// Options controls how a document is written
type Options struct {
	Compress bool
}

// ImportFormatError reports a backup that does not have the expected shape.
// Nothing is merged when it is returned.
type ImportFormatError struct {
	Reason string
}

func (e *ImportFormatError) Error() string {
	return "invalid backup file: " + e.Reason
}

// Imported is a decoded backup
type Imported struct {
	Entries []model.Entry
	// DarkMode is nil when the backup does not carry the flag
	DarkMode *bool
	// Rejected counts records that could not be read
	Rejected int
}

// FileName is the default backup file name for the local date of now
func FileName(now time.Time, compress bool) string {
	name := "time-tracker-backup-" + now.Format("2006-01-02") + ".json"
	if compress {
		name += ".xz"
	}
	return name
}

// Export builds a backup document
func Export(entries []model.Entry, darkMode bool, now time.Time) Document {
	if entries == nil {
		entries = []model.Entry{}
	}
	return Document{
		Entries:    entries,
		DarkMode:   darkMode,
		ExportDate: now.UTC().Format(time.RFC3339),
		Version:    Version,
	}
}

// Encode writes doc as indented JSON, xz-compressed if requested
func Encode(w io.Writer, doc Document, opts Options) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	if !opts.Compress {
		_, err := w.Write(data)
		return err
	}

	zw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("failed to compress backup: %w", err)
	}
	return zw.Close()
}

// Decode reads a plain or xz-compressed backup. Each record goes through the
// same versioned decoder as stored entries.
func Decode(r io.Reader) (Imported, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(xzMagic))

	var src io.Reader = br
	if bytes.Equal(head, xzMagic) {
		zr, err := xz.NewReader(br)
		if err != nil {
			return Imported{}, &ImportFormatError{Reason: fmt.Sprintf("corrupt xz stream: %v", err)}
		}
		src = zr
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return Imported{}, fmt.Errorf("failed to read backup: %w", err)
	}

	var doc struct {
		Entries  json.RawMessage `json:"entries"`
		DarkMode *bool           `json:"darkMode"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Imported{}, &ImportFormatError{Reason: "not a JSON object"}
	}
	entries := bytes.TrimSpace(doc.Entries)
	if len(entries) == 0 || entries[0] != '[' {
		return Imported{}, &ImportFormatError{Reason: "entries must be an array"}
	}

	// A record from a newer schema fails the whole import
	decoded, rejected, _, err := store.DecodeRecords(entries)
	if err != nil {
		return Imported{}, &ImportFormatError{Reason: err.Error()}
	}

	return Imported{Entries: decoded, DarkMode: doc.DarkMode, Rejected: len(rejected)}, nil
}
