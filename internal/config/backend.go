package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// ConfigBackend abstracts persistent config storage. Keys are dotted names
// such as "promotion.min_frequency"; values are their scalar text form.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	SetString(key, val string) error
	Delete(key string) error
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "uiforge-data"
		}
	}
	return filepath.Join(dir, "uiforge")
}

// DefaultPath returns $XDG_CONFIG_HOME/uiforge/config.yaml, falling back to
// ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "uiforge", "config.yaml")
}

// fileBackend stores config as a YAML document. Nested mappings are
// flattened to dotted keys on load and rebuilt on save.
type fileBackend struct {
	path string
	data map[string]string
}

func newFileBackend(path string) *fileBackend {
	b := &fileBackend{path: path, data: make(map[string]string)}
	b.load()
	return b
}

func (b *fileBackend) load() {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "[WARN] could not read config file %s: %v. Using default values.\n", b.path, err)
		}
		return
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] could not parse config file %s: %v. Using default values.\n", b.path, err)
		return
	}
	if len(doc.Content) == 0 {
		return
	}
	flatten("", doc.Content[0], b.data)
}

func flatten(prefix string, n *yaml.Node, out map[string]string) {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if prefix != "" {
				key = prefix + "." + key
			}
			flatten(key, n.Content[i+1], out)
		}
	case yaml.ScalarNode:
		if prefix != "" && n.Tag != "!!null" {
			out[prefix] = n.Value
		}
	case yaml.AliasNode:
		if n.Alias != nil {
			flatten(prefix, n.Alias, out)
		}
	}
}

func (b *fileBackend) save() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return goerr.Wrap(err, "creating config dir", goerr.V("path", b.path))
	}

	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := map[string]any{}
	for _, k := range keys {
		parts := strings.Split(k, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = b.data[k]
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return goerr.Wrap(err, "encoding config")
	}
	if err := os.WriteFile(b.path, out, 0o600); err != nil {
		return goerr.Wrap(err, "writing config file", goerr.V("path", b.path))
	}
	return nil
}

func (b *fileBackend) GetString(key string) (string, bool, error) {
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *fileBackend) SetString(key, val string) error {
	b.data[key] = val
	return b.save()
}

func (b *fileBackend) Delete(key string) error {
	delete(b.data, key)
	return b.save()
}
