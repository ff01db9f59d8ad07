// Package ini reads and writes the legacy flat configuration files and keeps
// their entries in the canonical store.
package ini

import (
	"bufio"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/BartekS5/legacysync/pkg/models"
)

// Legacy files are ISO-8859-1, not UTF-8.
var fileEncoding = charmap.ISO8859_1

// Parse decodes an INI stream and returns one entry per key=value line,
// stamped with now and actor. Comment, blank and malformed lines are skipped.
// Keys before the first [section] belong to the "" section. A key repeated
// within a section keeps its first position and its last value.
func Parse(fileName string, r io.Reader, now time.Time, actor string) ([]models.ConfigEntry, error) {
	scanner := bufio.NewScanner(fileEncoding.NewDecoder().Reader(r))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		section string
		entries []models.ConfigEntry
		seen    = make(map[[2]string]int)
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			continue
		}

		sep := strings.IndexByte(line, '=')
		if sep <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:sep])
		value := unquote(strings.TrimSpace(line[sep+1:]))

		if i, ok := seen[[2]string{section, key}]; ok {
			entries[i].Value = value
			entries[i].Type = InferType(value)
			continue
		}
		seen[[2]string{section, key}] = len(entries)
		entries = append(entries, models.ConfigEntry{
			FileName:  fileName,
			Section:   section,
			Key:       key,
			Value:     value,
			Type:      InferType(value),
			Critical:  IsCritical(key),
			Active:    true,
			CreatedAt: now,
			CreatedBy: actor,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func unquote(v string) string {
	if len(v) > 1 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return v[1 : len(v)-1]
	}
	return v
}

// Document is an ordered section -> key -> value structure.
type Document struct {
	Sections []Section
}

type Section struct {
	Name string
	Keys []KeyValue
}

type KeyValue struct {
	Key   string
	Value string
}

// Set adds or replaces a value, keeping first-seen order of sections and keys.
func (d *Document) Set(section, key, value string) {
	s := d.section(section)
	for i := range s.Keys {
		if s.Keys[i].Key == key {
			s.Keys[i].Value = value
			return
		}
	}
	s.Keys = append(s.Keys, KeyValue{Key: key, Value: value})
}

// Get returns the value of section/key.
func (d *Document) Get(section, key string) (string, bool) {
	for _, s := range d.Sections {
		if s.Name != section {
			continue
		}
		for _, kv := range s.Keys {
			if kv.Key == key {
				return kv.Value, true
			}
		}
	}
	return "", false
}

// Map flattens the document for comparisons and reports.
func (d *Document) Map() map[string]map[string]string {
	out := make(map[string]map[string]string, len(d.Sections))
	for _, s := range d.Sections {
		keys := make(map[string]string, len(s.Keys))
		for _, kv := range s.Keys {
			keys[kv.Key] = kv.Value
		}
		out[s.Name] = keys
	}
	return out
}

func (d *Document) section(name string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i]
		}
	}
	d.Sections = append(d.Sections, Section{Name: name})
	return &d.Sections[len(d.Sections)-1]
}

// DocumentOf groups entries by section in the order they are given.
func DocumentOf(entries []models.ConfigEntry) *Document {
	d := &Document{}
	for _, e := range entries {
		d.Set(e.Section, e.Key, e.Value)
	}
	return d
}

// Serialize writes the document as ISO-8859-1 text. Each section is a
// [header] followed by key=value lines and a blank line. A leading unnamed
// section is written without a header. Characters outside the charset are
// replaced.
func Serialize(w io.Writer, d *Document) error {
	var b strings.Builder
	for i, s := range d.Sections {
		if s.Name != "" || i > 0 {
			b.WriteString("[" + s.Name + "]\n")
		}
		for _, kv := range s.Keys {
			b.WriteString(kv.Key + "=" + kv.Value + "\n")
		}
		b.WriteString("\n")
	}

	enc := encoding.ReplaceUnsupported(fileEncoding.NewEncoder())
	out, err := enc.String(b.String())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
