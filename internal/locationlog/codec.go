package locationlog

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"geo-tracker/internal/models"

	"github.com/goccy/go-json"
)

// Encode serializes records as an indented JSON array and base64-encodes it.
func Encode(records []models.LocationRecord) (string, error) {
	entries, err := marshalEntries(records)
	if err != nil {
		return "", err
	}
	return encodeEntries(entries), nil
}

// Decode reverses Encode. Line breaks inside the base64 payload are ignored.
func Decode(content string) ([]models.LocationRecord, error) {
	entries, err := decodeEntries(content)
	if err != nil {
		return nil, err
	}

	records := make([]models.LocationRecord, len(entries))
	for i, entry := range entries {
		if err := json.Unmarshal(entry, &records[i]); err != nil {
			return nil, fmt.Errorf("codec: failed to unmarshal record %d: %w", i, err)
		}
	}
	return records, nil
}

// decodeEntries returns the stored array elements exactly as they appear in the file.
// Every element must be a JSON object; its fields are not interpreted.
func decodeEntries(content string) ([]json.RawMessage, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, content)

	data, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("codec: invalid base64 content: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("codec: content is not a JSON array")
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("codec: failed to unmarshal entries: %w", err)
	}

	for i, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			return nil, fmt.Errorf("codec: entry %d is not a JSON object", i)
		}
		entries[i] = entry
	}
	return entries, nil
}

// marshalEntries renders records the way they sit inside the stored array.
func marshalEntries(records []models.LocationRecord) ([]json.RawMessage, error) {
	entries := make([]json.RawMessage, 0, len(records))
	for _, record := range records {
		data, err := json.MarshalIndent(record, "  ", "  ")
		if err != nil {
			return nil, fmt.Errorf("codec: failed to marshal record: %w", err)
		}
		entries = append(entries, data)
	}
	return entries, nil
}

// encodeEntries lays entries out as a two-space indented array and base64-encodes it.
// Entries are written verbatim.
func encodeEntries(entries []json.RawMessage) string {
	if len(entries) == 0 {
		return base64.StdEncoding.EncodeToString([]byte("[]"))
	}

	var buf bytes.Buffer
	buf.WriteString("[\n  ")
	for i, entry := range entries {
		if i > 0 {
			buf.WriteString(",\n  ")
		}
		buf.Write(entry)
	}
	buf.WriteString("\n]")

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
