package promotion

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/catalog"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/fingerprint"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

const defaultComponentType = "component"

var ariaAttr = regexp.MustCompile(`\b(aria-[a-z]+)\s*=`)

// landmarks maps skeleton roles to the ARIA role the element exposes.
var landmarks = map[string]string{
	"header":     "banner",
	"footer":     "contentinfo",
	"navigation": "navigation",
	"main":       "main",
	"section":    "region",
	"button":     "button",
	"heading":    "heading",
	"media":      "img",
}

var interactiveTags = []string{"a", "button", "input", "select", "textarea", "details", "summary"}

// Synthesize builds the catalog record for a promoted pattern. Category,
// tags and accessibility metadata are inferred from the component type and
// skeleton.
func Synthesize(p model.CodePattern) model.SnippetRecord {
	componentType := model.NormalizeTerm(p.ComponentType)
	if componentType == "" {
		componentType = defaultComponentType
	}
	short := p.SkeletonHash
	if len(short) > 8 {
		short = short[:8]
	}

	tokens := fingerprint.Tokens(p.Skeleton)
	tags, roles := skeletonTags(tokens)

	category := p.Category
	if category.Validate() != nil {
		category = catalog.InferCategory(componentType, len(tokens))
	}

	rec := model.SnippetRecord{
		ID:       "promoted-" + p.SkeletonHash,
		Name:     fmt.Sprintf("Learned %s (%s)", componentType, short),
		Type:     componentType,
		Variant:  "learned-" + short,
		Category: category,
		Tags:     append([]string{"promoted", "learned", componentType}, roles...),
		Industry: []string{"general"},
		HTML:     p.Snippet,
		A11y:     inferA11y(tags, roles, p.Snippet),
		Source:   model.SourcePromoted,

		PatternHash: p.SkeletonHash,
	}
	rec.Normalize()
	return rec
}

// skeletonTags splits tokens like "h1[heading]" into the distinct tag names
// and roles they contain, in first-seen order.
func skeletonTags(tokens []string) (tags, roles []string) {
	for _, tok := range tokens {
		tag, role, _ := strings.Cut(tok, "[")
		role = strings.TrimSuffix(role, "]")
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
		if role != "" && !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}
	return tags, roles
}

func inferA11y(tags, roles []string, markup string) model.A11yInfo {
	var info model.A11yInfo
	for _, r := range roles {
		if aria, ok := landmarks[r]; ok && !slices.Contains(info.Roles, aria) {
			info.Roles = append(info.Roles, aria)
		}
	}
	for _, m := range ariaAttr.FindAllStringSubmatch(strings.ToLower(markup), -1) {
		if !slices.Contains(info.AriaAttributes, m[1]) {
			info.AriaAttributes = append(info.AriaAttributes, m[1])
		}
	}
	slices.Sort(info.AriaAttributes)

	for _, t := range tags {
		if slices.Contains(interactiveTags, t) {
			info.KeyboardNav = true
			info.FocusVisible = true
			break
		}
	}
	info.ReducedMotion = strings.Contains(markup, "motion-reduce") || strings.Contains(markup, "prefers-reduced-motion")
	return info
}
