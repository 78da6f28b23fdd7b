package domain

import (
	"fmt"
	"time"
)

// Closed vocabularies for product tagging. The categorization step and
// product validation both enforce these; anything outside the vocabulary is
// rejected at the ingestion boundary, never at scoring time.
var (
	ProductCategories = []string{
		"tech", "home", "kitchen", "fashion", "beauty",
		"fitness", "outdoors", "hobby", "book", "experiences",
	}
	ProductInterests = []string{
		"coffee", "cooking", "baking", "fitness", "running", "yoga", "gaming",
		"photography", "music", "travel", "reading", "art", "gardening",
		"cycling", "hiking", "camping", "movies", "wine", "cocktails", "tea",
		"fashion", "skincare", "makeup",
	}
	ProductOccasions = []string{
		"birthday", "anniversary", "valentines", "holiday", "christmas",
		"wedding", "engagement", "graduation", "just_because",
	}
	ProductVibes = []string{
		"romantic", "practical", "luxury", "fun", "sentimental",
		"creative", "cozy", "adventurous", "minimalist",
	}
	PersonalityTraits = []string{
		"introverted", "extroverted", "analytical", "creative", "sentimental",
		"adventurous", "organized", "relaxed", "curious",
	}
	RecipientGenders = []string{"male", "female", "unisex"}
	RecipientRelationships = []string{
		"partner", "spouse", "boyfriend", "girlfriend", "friend", "family",
	}
	ExperienceLevels = []string{"beginner", "enthusiast", "expert"}
)

// Per-field limits on how many tags a product may carry.
const (
	MaxCategories             = 2
	MaxInterests              = 5
	MaxOccasions              = 4
	MaxVibes                  = 3
	MaxPersonalityTraits      = 3
	MaxRecipientGenders       = 3
	MaxRecipientRelationships = 6
)

// RecipientInfo describes who a gift is suited for
type RecipientInfo struct {
	Gender       []string `json:"gender"`
	Relationship []string `json:"relationship"`
}

// GiftProduct represents one item in the gift catalog
type GiftProduct struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`

	Categories        []string `json:"categories"`
	Interests         []string `json:"interests"`
	Occasions         []string `json:"occasions"`
	Vibe              []string `json:"vibe"`
	PersonalityTraits []string `json:"personality_traits"`

	Recipient       RecipientInfo `json:"recipient"`
	ExperienceLevel string        `json:"experience_level,omitempty"`

	Brand    string `json:"brand,omitempty"`
	Link     string `json:"link,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Source   string `json:"source"`

	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"review_count"`
	InStock     bool    `json:"in_stock"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ValidateProduct validates a GiftProduct instance
func ValidateProduct(p *GiftProduct) error {
	if p == nil {
		return fmt.Errorf("product cannot be nil")
	}

	if p.Name == "" {
		return fmt.Errorf("product Name is required")
	}

	if p.Price < 0 {
		return fmt.Errorf("product Price must be non-negative")
	}

	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("product Rating must be between 0 and 5")
	}

	if len(p.Categories) > MaxCategories {
		return fmt.Errorf("product cannot have more than %d categories", MaxCategories)
	}
	if len(p.Interests) > MaxInterests {
		return fmt.Errorf("product cannot have more than %d interests", MaxInterests)
	}
	if len(p.Occasions) > MaxOccasions {
		return fmt.Errorf("product cannot have more than %d occasions", MaxOccasions)
	}
	if len(p.Vibe) > MaxVibes {
		return fmt.Errorf("product cannot have more than %d vibe tags", MaxVibes)
	}
	if len(p.PersonalityTraits) > MaxPersonalityTraits {
		return fmt.Errorf("product cannot have more than %d personality traits", MaxPersonalityTraits)
	}

	if p.ExperienceLevel != "" && !contains(ExperienceLevels, p.ExperienceLevel) {
		return fmt.Errorf("product ExperienceLevel is invalid: %s", p.ExperienceLevel)
	}

	return nil
}

// FilterVocabulary keeps only values present in the vocabulary, capped at limit.
func FilterVocabulary(values, vocabulary []string, limit int) []string {
	out := make([]string, 0, limit)
	for _, v := range values {
		if !contains(vocabulary, v) {
			continue
		}
		if contains(out, v) {
			continue
		}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
