package voice

import (
	"os"
	"sort"
	"strings"
	"unicode"
)

// Info is one entry in the voice listing.
type Info struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// List scans dir for voice model assets and returns one entry per voice
// whose descriptor loads cleanly, ordered by id. A missing directory
// yields an empty listing, not an error.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var voices []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, modelExt) {
			continue
		}
		id := strings.TrimSuffix(name, modelExt)
		d, err := Load(dir, id)
		if err != nil {
			continue
		}
		voices = append(voices, Info{ID: id, Name: DisplayName(id), Language: d.Language})
	}
	sort.Slice(voices, func(i, j int) bool { return voices[i].ID < voices[j].ID })
	return voices, nil
}

// DisplayName derives a human-readable name from a
// <language>-<name>-<quality> identifier: en_GB-alba-medium becomes Alba.
// Identifiers that do not follow the pattern are returned unchanged.
func DisplayName(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return id
	}
	name := []rune(parts[1])
	if len(name) == 0 {
		return id
	}
	name[0] = unicode.ToUpper(name[0])
	return string(name)
}
