package config

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var languagesYAML []byte

// LanguageEntry maps a file extension to an editor language and MIME type.
type LanguageEntry struct {
	Extension string `yaml:"extension"`
	Language  string `yaml:"language"`
	MimeType  string `yaml:"mime_type"`
}

type languagesFile struct {
	DefaultLanguage string          `yaml:"default_language"`
	DefaultMimeType string          `yaml:"default_mime_type"`
	Languages       []LanguageEntry `yaml:"languages"`
}

// LanguageRegistry resolves file names to languages and MIME types.
// Entries are loaded once from the embedded YAML file.
type LanguageRegistry struct {
	byExtension map[string]LanguageEntry
	defaultLang string
	defaultMime string
	mu          sync.RWMutex
}

// NewLanguageRegistry loads the embedded language table.
func NewLanguageRegistry() (*LanguageRegistry, error) {
	var parsed languagesFile
	if err := yaml.Unmarshal(languagesYAML, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal languages.yaml: %w", err)
	}

	r := &LanguageRegistry{
		byExtension: make(map[string]LanguageEntry, len(parsed.Languages)),
		defaultLang: parsed.DefaultLanguage,
		defaultMime: parsed.DefaultMimeType,
	}
	for _, entry := range parsed.Languages {
		r.byExtension[strings.ToLower(entry.Extension)] = entry
	}

	return r, nil
}

// LanguageFor returns the editor language for a file name.
func (r *LanguageRegistry) LanguageFor(name string) string {
	if entry, ok := r.lookup(name); ok {
		return entry.Language
	}
	return r.defaultLang
}

// MimeTypeFor returns the MIME type for a file name.
func (r *LanguageRegistry) MimeTypeFor(name string) string {
	if entry, ok := r.lookup(name); ok {
		return entry.MimeType
	}
	return r.defaultMime
}

func (r *LanguageRegistry) lookup(name string) (LanguageEntry, bool) {
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
		ext = strings.ToLower(name[i+1:])
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byExtension[ext]
	return entry, ok
}
