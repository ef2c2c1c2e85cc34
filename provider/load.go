package provider

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/broady/smartgen/ir"
)

//go:embed references/*.yaml
var referenceFS embed.FS

// CoreLibrary is the reference assembly every compilation loads.
const CoreLibrary = "corlib"

var validate = validator.New()

// ReferenceNames returns the names of the embedded reference assemblies.
func ReferenceNames() []string {
	entries, err := referenceFS.ReadDir("references")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Reference returns the embedded reference assembly with the given name.
func Reference(name string) (*Document, error) {
	data, err := referenceFS.ReadFile(path.Join("references", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown reference assembly %q (available: %s)", name, strings.Join(ReferenceNames(), ", "))
	}
	doc, err := Decode(name+".yaml", data)
	if err != nil {
		return nil, err
	}
	doc.Metadata = true
	return doc, nil
}

// Decode parses a snapshot document. Files ending in ".json" are decoded as
// JSON, everything else as YAML. The document is validated before it is
// returned.
func Decode(name string, data []byte) (*Document, error) {
	var doc Document
	if strings.EqualFold(filepath.Ext(name), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode json: %w", name, err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode yaml: %w", name, err)
		}
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &doc, nil
}

// LoadFile reads and decodes one snapshot file.
func LoadFile(name string) (*Document, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(name, data)
}

// Discover expands doublestar patterns ("snapshots/**/*.yaml") relative to
// root into a sorted, de-duplicated list of file paths. A pattern without
// meta characters must name an existing file.
func Discover(root string, patterns ...string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := fs.Stat(fsys, pattern); err != nil {
				return nil, fmt.Errorf("no snapshot matches %q", pattern)
			}
			matches = []string{pattern}
		}
		for _, m := range matches {
			p := filepath.Join(root, filepath.FromSlash(m))
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// LoadCompilation discovers, decodes and builds the snapshots matched by
// patterns. All documents must agree on the compilation name.
func LoadCompilation(root string, patterns ...string) (*ir.Compilation, error) {
	files, err := Discover(root, patterns...)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, 0, len(files))
	for _, f := range files {
		doc, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return Build(docs...)
}
