package model

import (
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Category is the atomic-design level of a snippet.
type Category string

const (
	CategoryAtom     Category = "atom"
	CategoryMolecule Category = "molecule"
	CategoryOrganism Category = "organism"
)

// Validate checks if the category is one of the known values
func (c Category) Validate() error {
	switch c {
	case CategoryAtom, CategoryMolecule, CategoryOrganism:
		return nil
	default:
		return goerr.Wrap(ErrInvalidSnippet, "unknown category", goerr.V("category", c))
	}
}

// SnippetSource records whether a snippet was curated or promoted from a
// learned pattern.
type SnippetSource string

const (
	SourceCurated  SnippetSource = "curated"
	SourcePromoted SnippetSource = "promoted"
)

// ClassRole identifies an element role inside a snippet's markup that carries
// its own class list.
type ClassRole string

const (
	RoleRoot       ClassRole = "root"
	RoleContainer  ClassRole = "container"
	RoleHeading    ClassRole = "heading"
	RoleBody       ClassRole = "body"
	RoleMedia      ClassRole = "media"
	RoleAction     ClassRole = "action"
	RoleNavigation ClassRole = "navigation"
	RoleItem       ClassRole = "item"
)

// ClassMap maps element roles to class strings.
type ClassMap map[ClassRole]string

// Class returns the classes for role, or the root classes when the role has
// no entry of its own.
func (m ClassMap) Class(role ClassRole) string {
	if c, ok := m[role]; ok {
		return c
	}
	return m[RoleRoot]
}

// A11yInfo describes accessibility properties of a snippet.
type A11yInfo struct {
	Roles          []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	AriaAttributes []string `json:"aria_attributes,omitempty" yaml:"aria_attributes,omitempty"`
	KeyboardNav    bool     `json:"keyboard_nav" yaml:"keyboard_nav"`
	FocusVisible   bool     `json:"focus_visible" yaml:"focus_visible"`
	ReducedMotion  bool     `json:"reduced_motion" yaml:"reduced_motion"`
}

// SnippetRecord is a reusable UI snippet held by the catalog.
type SnippetRecord struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	Type        string        `json:"type"`
	Variant     string        `json:"variant"`
	Category    Category      `json:"category"`
	Tags        []string      `json:"tags,omitempty"`
	Mood        []string      `json:"mood,omitempty"`
	Industry    []string      `json:"industry,omitempty"`
	VisualStyle []string      `json:"visual_style,omitempty"`
	HTML        string        `json:"html,omitempty"`
	Classes     ClassMap      `json:"classes,omitempty"`
	A11y        A11yInfo      `json:"a11y"`
	Source      SnippetSource `json:"source"`
	PatternHash string        `json:"pattern_hash,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize lowercases and trims the taxonomy fields in place and removes
// duplicate and empty set members.
func (s *SnippetRecord) Normalize() {
	s.ID = strings.TrimSpace(s.ID)
	s.Type = NormalizeTerm(s.Type)
	s.Variant = NormalizeTerm(s.Variant)
	s.Category = Category(NormalizeTerm(string(s.Category)))
	s.Tags = NormalizeSet(s.Tags)
	s.Mood = NormalizeSet(s.Mood)
	s.Industry = NormalizeSet(s.Industry)
	s.VisualStyle = NormalizeSet(s.VisualStyle)
	if s.Source == "" {
		s.Source = SourceCurated
	}
}

// Validate checks required fields. Call Normalize first.
func (s *SnippetRecord) Validate() error {
	if s.ID == "" {
		return goerr.Wrap(ErrInvalidSnippet, "id is empty")
	}
	if s.Type == "" {
		return goerr.Wrap(ErrInvalidSnippet, "type is empty", goerr.V("id", s.ID))
	}
	if s.Variant == "" {
		return goerr.Wrap(ErrInvalidSnippet, "variant is empty", goerr.V("id", s.ID))
	}
	if s.Category != "" {
		if err := s.Category.Validate(); err != nil {
			return goerr.Wrap(err, "invalid snippet", goerr.V("id", s.ID))
		}
	}
	return nil
}

// Clone returns a deep copy so callers can't mutate catalog state.
func (s SnippetRecord) Clone() SnippetRecord {
	out := s
	out.Tags = slices.Clone(s.Tags)
	out.Mood = slices.Clone(s.Mood)
	out.Industry = slices.Clone(s.Industry)
	out.VisualStyle = slices.Clone(s.VisualStyle)
	out.A11y.Roles = slices.Clone(s.A11y.Roles)
	out.A11y.AriaAttributes = slices.Clone(s.A11y.AriaAttributes)
	if s.Classes != nil {
		out.Classes = make(ClassMap, len(s.Classes))
		for k, v := range s.Classes {
			out.Classes[k] = v
		}
	}
	return out
}

// NormalizeTerm lowercases and trims a taxonomy term.
func NormalizeTerm(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// NormalizeSet normalizes every member, dropping empties and duplicates while
// keeping first-seen order.
func NormalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = NormalizeTerm(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
