// Package fingerprint reduces generated markup to a structural skeleton and
// a content-addressed hash, so repeated generations of the same shape can be
// recognised regardless of text, attributes or class names.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// EmptySkeleton is the skeleton of markup that contains no tags.
const EmptySkeleton = "empty"

var jsxComment = regexp.MustCompile(`(?s)\{\s*/\*.*?\*/\s*\}`)

// defaultRoles maps tag names to the semantic role recorded in the skeleton.
// Tags without an entry are recorded by name alone.
var defaultRoles = map[string]string{
	"h1": "heading", "h2": "heading", "h3": "heading",
	"h4": "heading", "h5": "heading", "h6": "heading",

	"p":          "body",
	"span":       "body",
	"blockquote": "body",
	"label":      "body",
	"small":      "body",
	"strong":     "body",
	"em":         "body",

	"img":     "media",
	"picture": "media",
	"svg":     "media",
	"video":   "media",
	"audio":   "media",
	"canvas":  "media",
	"figure":  "media",
	"iframe":  "media",

	"nav": "navigation",

	"button":  "button",
	"section": "section",
	"header":  "header",
	"footer":  "footer",
	"main":    "main",
}

// Print is the fingerprint of one markup fragment.
type Print struct {
	Skeleton string `json:"skeleton"`
	Hash     string `json:"hash"`
}

// Extractor builds skeletons using a tag-to-role table.
type Extractor struct {
	roles map[string]string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRole maps tag to role, overriding any default. An empty role records
// the tag by name alone.
func WithRole(tag, role string) Option {
	return func(e *Extractor) {
		tag = strings.ToLower(tag)
		if role == "" {
			delete(e.roles, tag)
			return
		}
		e.roles[tag] = role
	}
}

// NewExtractor returns an Extractor seeded with the default role table.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{roles: maps.Clone(defaultRoles)}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Role returns the semantic role assigned to tag, if any.
func (e *Extractor) Role(tag string) (string, bool) {
	r, ok := e.roles[strings.ToLower(tag)]
	return r, ok
}

// ExtractSkeleton returns the space-separated sequence of opening tags in
// markup, each annotated with its role when it has one. Comments, text and
// attributes are ignored. Markup without tags yields EmptySkeleton.
func (e *Extractor) ExtractSkeleton(markup string) string {
	markup = jsxComment.ReplaceAllString(markup, "")

	z := html.NewTokenizer(strings.NewReader(markup))
	var tokens []string
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, _ := z.TagName()
		tag := string(name)
		if role, ok := e.roles[tag]; ok {
			tag += "[" + role + "]"
		}
		tokens = append(tokens, tag)
	}

	if len(tokens) == 0 {
		return EmptySkeleton
	}
	return strings.Join(tokens, " ")
}

// Fingerprint extracts the skeleton of code and hashes it.
func (e *Extractor) Fingerprint(code string) Print {
	s := e.ExtractSkeleton(code)
	return Print{Skeleton: s, Hash: HashSkeleton(s)}
}

// HashSkeleton returns the first 64 bits of the SHA-256 digest of skeleton
// as 16 lowercase hex characters.
func HashSkeleton(skeleton string) string {
	sum := sha256.Sum256([]byte(skeleton))
	return hex.EncodeToString(sum[:8])
}

// HashContent returns the full SHA-256 digest of content in hex.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Tokens splits a skeleton back into its tokens. EmptySkeleton has none.
func Tokens(skeleton string) []string {
	if skeleton == EmptySkeleton {
		return nil
	}
	return strings.Fields(skeleton)
}
