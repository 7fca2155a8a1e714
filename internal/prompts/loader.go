// Package prompts loads the LLM prompt templates embedded from JSON files.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Prompt files
const (
	// CoachingFile holds the free-text prompts, worded as the legacy parsers expect
	CoachingFile = "coaching.json"
	// StructuredFile holds prompts that ask for schema-constrained JSON
	StructuredFile = "structured.json"
)

//go:embed *.json
var promptFiles embed.FS

var embedded = NewLibrary(promptFiles)

// Library reads prompt files of the form {"key": "template"} from a file
// system. Each file is parsed once on first use.
type Library struct {
	fsys  fs.FS
	mu    sync.Mutex
	files map[string]map[string]string
}

// NewLibrary creates a Library over fsys
func NewLibrary(fsys fs.FS) *Library {
	return &Library{fsys: fsys, files: make(map[string]map[string]string)}
}

// Get returns the template stored under key in filename
func (l *Library) Get(filename, key string) (string, error) {
	file, err := l.file(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := file[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// Keys returns the prompt keys of filename in sorted order
func (l *Library) Keys(filename string) ([]string, error) {
	file, err := l.file(filename)
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(file)), nil
}

func (l *Library) file(filename string) (map[string]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if file, ok := l.files[filename]; ok {
		return file, nil
	}

	data, err := fs.ReadFile(l.fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var file map[string]string
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	l.files[filename] = file
	return file, nil
}

// Get returns an embedded prompt
func Get(filename, key string) (string, error) {
	return embedded.Get(filename, key)
}

// MustGet is Get for prompts that ship with the binary. It panics on a miss.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// List returns the keys of an embedded prompt file
func List(filename string) ([]string, error) {
	return embedded.Keys(filename)
}

// Render loads an embedded prompt and formats it with data
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	return Format(template, data), nil
}

// Format replaces {{.Key}} placeholders with values from data in a single
// pass, so placeholder-like text inside a value (a resume, say) is left alone.
// Unknown placeholders remain in the output.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}

	pairs := make([]string, 0, 2*len(data))
	for _, key := range slices.Sorted(maps.Keys(data)) {
		pairs = append(pairs, "{{."+key+"}}", data[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
