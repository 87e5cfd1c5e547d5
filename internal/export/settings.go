package export

import (
	"bytes"
	"strings"
)

// Field delimiter of the settings exchange format
const settingsDelimiter = "$"

const settingsFieldCount = 6

// SettingsEntry is one line of the settings exchange file. The positional
// order (key, name, two free-text fields, two directory paths) is fixed by
// the format.
type SettingsEntry struct {
	Key     string
	Name    string
	Remark  string
	Contact string
	WebDir  string
	DataDir string
}

// EncodeSettings renders entries one per line, '$'-delimited
func EncodeSettings(entries []SettingsEntry) []byte {
	var buf bytes.Buffer

	for _, e := range entries {
		buf.WriteString(strings.Join([]string{e.Key, e.Name, e.Remark, e.Contact, e.WebDir, e.DataDir}, settingsDelimiter))
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// DecodeSettings parses the exchange format. Blank lines, lines with the
// wrong field count and lines with an empty key are skipped; a later line
// with the same key wins over an earlier one at the store layer.
func DecodeSettings(data []byte) []SettingsEntry {
	var entries []SettingsEntry

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, settingsDelimiter)
		if len(fields) != settingsFieldCount {
			continue
		}
		if fields[0] == "" {
			continue
		}

		entries = append(entries, SettingsEntry{
			Key:     fields[0],
			Name:    fields[1],
			Remark:  fields[2],
			Contact: fields[3],
			WebDir:  fields[4],
			DataDir: fields[5],
		})
	}

	return entries
}
