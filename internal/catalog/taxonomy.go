package catalog

import (
	"strings"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

var knownCategories = map[string]model.Category{
	"avatar":   model.CategoryAtom,
	"badge":    model.CategoryAtom,
	"button":   model.CategoryAtom,
	"checkbox": model.CategoryAtom,
	"chip":     model.CategoryAtom,
	"divider":  model.CategoryAtom,
	"icon":     model.CategoryAtom,
	"input":    model.CategoryAtom,
	"label":    model.CategoryAtom,
	"link":     model.CategoryAtom,
	"spinner":  model.CategoryAtom,
	"tag":      model.CategoryAtom,
	"toggle":   model.CategoryAtom,

	"accordion":  model.CategoryMolecule,
	"alert":      model.CategoryMolecule,
	"breadcrumb": model.CategoryMolecule,
	"card":       model.CategoryMolecule,
	"dropdown":   model.CategoryMolecule,
	"form":       model.CategoryMolecule,
	"list":       model.CategoryMolecule,
	"menu":       model.CategoryMolecule,
	"modal":      model.CategoryMolecule,
	"pagination": model.CategoryMolecule,
	"search":     model.CategoryMolecule,
	"tabs":       model.CategoryMolecule,
	"toast":      model.CategoryMolecule,
	"tooltip":    model.CategoryMolecule,

	"cta":          model.CategoryOrganism,
	"dashboard":    model.CategoryOrganism,
	"features":     model.CategoryOrganism,
	"footer":       model.CategoryOrganism,
	"gallery":      model.CategoryOrganism,
	"header":       model.CategoryOrganism,
	"hero":         model.CategoryOrganism,
	"navbar":       model.CategoryOrganism,
	"pricing":      model.CategoryOrganism,
	"section":      model.CategoryOrganism,
	"sidebar":      model.CategoryOrganism,
	"table":        model.CategoryOrganism,
	"testimonials": model.CategoryOrganism,
}

// InferCategory guesses the atomic-design category of a component type.
// Compound types such as "pricing-card" are classified by their last known
// segment. Unknown types fall back to the size of their markup skeleton.
func InferCategory(componentType string, skeletonTokens int) model.Category {
	componentType = model.NormalizeTerm(componentType)
	if c, ok := knownCategories[componentType]; ok {
		return c
	}

	parts := strings.FieldsFunc(componentType, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '/'
	})
	for i := len(parts) - 1; i >= 0; i-- {
		if c, ok := knownCategories[parts[i]]; ok {
			return c
		}
	}

	switch {
	case skeletonTokens <= 3:
		return model.CategoryAtom
	case skeletonTokens <= 12:
		return model.CategoryMolecule
	default:
		return model.CategoryOrganism
	}
}
