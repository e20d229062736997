package content

// Category is one of the twelve fixed content buckets found in every
// archive document.
type Category string

const (
	CategoryInsight             Category = "insight"
	CategoryReflection          Category = "reflection"
	CategoryContemplation       Category = "contemplation"
	CategoryManifestation       Category = "manifestation"
	CategoryChallenge           Category = "challenge"
	CategoryPhysicalPractice    Category = "physical_practice"
	CategoryShadow              Category = "shadow"
	CategoryArchetype           Category = "archetype"
	CategoryEnergyCheck         Category = "energy_check"
	CategoryNumericalContext    Category = "numerical_context"
	CategoryAstrologicalContext Category = "astrological_context"
	CategoryMentalWellness      Category = "mental_wellness"
)

// Categories lists all buckets in canonical order.
var Categories = []Category{
	CategoryInsight,
	CategoryReflection,
	CategoryContemplation,
	CategoryManifestation,
	CategoryChallenge,
	CategoryPhysicalPractice,
	CategoryShadow,
	CategoryArchetype,
	CategoryEnergyCheck,
	CategoryNumericalContext,
	CategoryAstrologicalContext,
	CategoryMentalWellness,
}

// IsValid reports whether c is one of the twelve known buckets.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategories maps raw strings onto known categories, dropping
// everything it does not recognize. An empty input means all categories.
func ParseCategories(raw []string) []Category {
	if len(raw) == 0 {
		return Categories
	}
	categories := make([]Category, 0, len(raw))
	for _, r := range raw {
		if c := Category(r); c.IsValid() {
			categories = append(categories, c)
		}
	}
	return categories
}
