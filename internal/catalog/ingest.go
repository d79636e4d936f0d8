package catalog

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// rawRecord mirrors the on-disk snippet shape. Set fields are kept as nodes
// so a scalar where a list is expected is reported instead of coerced.
type rawRecord struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Type        string            `yaml:"type"`
	Variant     string            `yaml:"variant"`
	Category    string            `yaml:"category"`
	Tags        yaml.Node         `yaml:"tags"`
	Mood        yaml.Node         `yaml:"mood"`
	Industry    yaml.Node         `yaml:"industry"`
	VisualStyle yaml.Node         `yaml:"visual_style"`
	HTML        string            `yaml:"html"`
	Classes     map[string]string `yaml:"classes"`
	A11y        model.A11yInfo    `yaml:"a11y"`
}

// DecodeError describes one record that could not be decoded.
type DecodeError struct {
	Index int
	Err   error
}

func (e DecodeError) Error() string { return e.Err.Error() }
func (e DecodeError) Unwrap() error { return e.Err }

// DecodeRecords parses a YAML or JSON document holding either a list of
// snippets or a mapping with a "snippets" list. Records that fail to decode
// are reported individually and do not affect the others.
func DecodeRecords(data []byte) ([]model.SnippetRecord, []DecodeError, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, goerr.Wrap(err, "parsing snippet document")
	}
	if len(doc.Content) == 0 {
		return nil, nil, nil
	}

	list := doc.Content[0]
	if list.Kind == yaml.MappingNode {
		list = mappingValue(list, "snippets")
		if list == nil {
			return nil, nil, goerr.New("snippet document has no snippets list")
		}
	}
	if list.Kind != yaml.SequenceNode {
		return nil, nil, goerr.New("snippet document must be a list", goerr.V("line", list.Line))
	}

	var (
		recs []model.SnippetRecord
		errs []DecodeError
	)
	for i, item := range list.Content {
		rec, err := decodeRecord(item)
		if err != nil {
			errs = append(errs, DecodeError{Index: i, Err: err})
			continue
		}
		recs = append(recs, rec)
	}
	return recs, errs, nil
}

func decodeRecord(n *yaml.Node) (model.SnippetRecord, error) {
	var raw rawRecord
	if err := n.Decode(&raw); err != nil {
		return model.SnippetRecord{}, goerr.Wrap(model.ErrInvalidSnippet, "decoding record",
			goerr.V("line", n.Line), goerr.V("cause", err.Error()))
	}

	rec := model.SnippetRecord{
		ID:       raw.ID,
		Name:     raw.Name,
		Type:     raw.Type,
		Variant:  raw.Variant,
		Category: model.Category(raw.Category),
		HTML:     raw.HTML,
		A11y:     raw.A11y,
		Source:   model.SourceCurated,
	}
	if len(raw.Classes) > 0 {
		rec.Classes = make(model.ClassMap, len(raw.Classes))
		for role, classes := range raw.Classes {
			rec.Classes[model.ClassRole(role)] = classes
		}
	}

	sets := []struct {
		field string
		node  *yaml.Node
		dst   *[]string
	}{
		{"tags", &raw.Tags, &rec.Tags},
		{"mood", &raw.Mood, &rec.Mood},
		{"industry", &raw.Industry, &rec.Industry},
		{"visual_style", &raw.VisualStyle, &rec.VisualStyle},
	}
	for _, s := range sets {
		values, err := decodeList(s.field, s.node)
		if err != nil {
			return model.SnippetRecord{}, goerr.Wrap(err, "invalid snippet", goerr.V("id", raw.ID))
		}
		*s.dst = values
	}
	return rec, nil
}

func decodeList(field string, n *yaml.Node) ([]string, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, goerr.Wrap(model.ErrInvalidSnippet, "field must be a list",
			goerr.V("field", field), goerr.V("line", n.Line))
	}
	var out []string
	if err := n.Decode(&out); err != nil {
		return nil, goerr.Wrap(model.ErrInvalidSnippet, "list members must be strings",
			goerr.V("field", field), goerr.V("line", n.Line))
	}
	return out, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// LoadFile decodes the snippet file at path and registers every valid
// record. It returns the number of records accepted.
func (r *Registry) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, goerr.Wrap(err, "reading snippet file", goerr.V("path", path))
	}
	recs, decodeErrs, err := DecodeRecords(data)
	if err != nil {
		return 0, goerr.Wrap(err, "decoding snippet file", goerr.V("path", path))
	}
	for _, de := range decodeErrs {
		r.logger.Warn("skipping undecodable snippet", "path", path, "index", de.Index, "error", de.Err)
	}
	return r.RegisterBatch(ctx, recs), nil
}
