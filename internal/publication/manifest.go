package publication

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Manifest file names probed by Load, in order.
var manifestNames = []string{"book.yaml", "book.yml", "book.toml"}

// ErrNoManifest is returned when a book directory has no manifest.
var ErrNoManifest = errors.New("publication: no manifest found")

// manifest is the on-disk form of a publication.
type manifest struct {
	ID           string `yaml:"id" toml:"id"`
	Title        string `yaml:"title" toml:"title"`
	Author       string `yaml:"author" toml:"author"`
	ReadingOrder []Link `yaml:"reading_order" toml:"reading_order"`
	Resources    []Link `yaml:"resources" toml:"resources"`
	TOC          []Link `yaml:"toc" toml:"toc"`
}

// ManifestError describes an invalid manifest.
type ManifestError struct {
	Path    string
	Message string
	Err     error
}

func (e *ManifestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("manifest %s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("manifest %s: %s", e.Path, e.Message)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// Load reads the manifest of the book directory dir and returns the
// publication backed by a DirSource over dir. If dir names a manifest file
// directly, its parent directory is used as the content root.
func Load(dir string) (*Publication, error) {
	manifestPath, err := findManifest(dir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	pub, err := Parse(manifestPath, data)
	if err != nil {
		return nil, err
	}
	pub.Source = NewDirSource(os.DirFS(filepath.Dir(manifestPath)))
	return pub, nil
}

// Parse decodes manifest data. The format is chosen by the extension of name.
func Parse(name string, data []byte) (*Publication, error) {
	var m manifest
	switch filepath.Ext(name) {
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, &ManifestError{Path: name, Message: "invalid toml", Err: err}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, &ManifestError{Path: name, Message: "invalid yaml", Err: err}
		}
	default:
		return nil, &ManifestError{Path: name, Message: "unsupported manifest format"}
	}

	if len(m.ReadingOrder) == 0 {
		return nil, &ManifestError{Path: name, Message: "reading_order is empty"}
	}

	readingOrder, err := cleanLinks(name, m.ReadingOrder)
	if err != nil {
		return nil, err
	}
	resources, err := cleanLinks(name, m.Resources)
	if err != nil {
		return nil, err
	}
	toc, err := cleanLinks(name, m.TOC)
	if err != nil {
		return nil, err
	}

	return &Publication{
		ID:           m.ID,
		Title:        m.Title,
		Author:       m.Author,
		ReadingOrder: readingOrder,
		Resources:    resources,
		TOC:          toc,
	}, nil
}

func findManifest(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("opening book: %w", err)
	}
	if !info.IsDir() {
		return dir, nil
	}
	for _, name := range manifestNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoManifest, dir)
}

func cleanLinks(name string, links []Link) ([]Link, error) {
	if len(links) == 0 {
		return nil, nil
	}
	out := make([]Link, len(links))
	for i, l := range links {
		if l.Href == "" {
			return nil, &ManifestError{Path: name, Message: fmt.Sprintf("link %q has no href", l.Title)}
		}
		l.Href = CleanHref(l.Href)
		children, err := cleanLinks(name, l.Children)
		if err != nil {
			return nil, err
		}
		l.Children = children
		out[i] = l
	}
	return out, nil
}
