package codec

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry manages the available codecs
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec // key can be either name or extension
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry that codec packages register into
func Default() *Registry {
	return defaultRegistry
}

// Register registers a codec using its name and all of its extensions
func Register(codec Codec) {
	defaultRegistry.Register(codec)
}

// Get retrieves a codec by name or extension
func Get(nameOrExt string) (Codec, error) {
	return defaultRegistry.Get(nameOrExt)
}

// ForPath retrieves the codec for a file path by its extension
func ForPath(path string) (Codec, error) {
	return defaultRegistry.ForPath(path)
}

// List returns all registered codecs
func List() []Codec {
	return defaultRegistry.List()
}

// Register registers a codec using its name and all of its extensions
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[codec.Name()] = codec
	for _, ext := range codec.Extensions() {
		r.codecs[normalizeExt(ext)] = codec
	}
}

// Get retrieves a codec by name or extension
func (r *Registry) Get(nameOrExt string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if codec, ok := r.codecs[nameOrExt]; ok {
		return codec, nil
	}
	if strings.HasPrefix(nameOrExt, ".") {
		if codec, ok := r.codecs[normalizeExt(nameOrExt)]; ok {
			return codec, nil
		}
	}
	return nil, ErrCodecNotFound
}

// ForPath retrieves the codec for a file path by its extension
func (r *Registry) ForPath(path string) (Codec, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrCodecNotFound, path)
	}
	codec, err := r.Get(normalizeExt(ext))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, ext)
	}
	return codec, nil
}

// List returns all registered codecs (deduplicated, sorted by name)
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	codecs := make([]Codec, 0)

	for _, codec := range r.codecs {
		if !seen[codec.Name()] {
			seen[codec.Name()] = true
			codecs = append(codecs, codec)
		}
	}

	sort.Slice(codecs, func(i, j int) bool { return codecs[i].Name() < codecs[j].Name() })
	return codecs
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
