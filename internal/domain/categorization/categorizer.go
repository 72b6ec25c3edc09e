// Package categorization maps transaction descriptions to spending categories.
package categorization

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Category labels.
const (
	FoodAndDining  = "Food & Dining"
	Shopping       = "Shopping"
	Transportation = "Transportation"
	Entertainment  = "Entertainment"
	Utilities      = "Utilities"
	Healthcare     = "Healthcare"
	Education      = "Education"
	Other          = "Other"
)

// Bucket is a category and the lowercase keywords that select it.
type Bucket struct {
	Category string
	Keywords []string
}

// DefaultBuckets lists the built-in categories in precedence order.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{FoodAndDining, []string{"swiggy", "zomato", "dominos", "pizza", "restaurant", "cafe", "food", "dining", "hotel"}},
		{Shopping, []string{"amazon", "flipkart", "myntra", "shop", "store", "mall", "retail", "purchase"}},
		{Transportation, []string{"uber", "ola", "metro", "bus", "train", "fuel", "petrol", "diesel", "cab"}},
		{Entertainment, []string{"netflix", "prime", "hotstar", "movie", "cinema", "theatre", "game", "entertainment"}},
		{Utilities, []string{"electricity", "water", "gas", "internet", "mobile", "phone", "bill", "recharge"}},
		{Healthcare, []string{"pharmacy", "medical", "hospital", "doctor", "clinic", "health", "medicine"}},
		{Education, []string{"school", "college", "university", "course", "training", "education", "book"}},
	}
}

// Categorizer finds every keyword of every bucket in one pass over the
// description. The earliest bucket with a hit wins.
type Categorizer struct {
	buckets []Bucket
	matcher *ahocorasick.Matcher
	// bucketOf maps a matcher pattern index to its bucket index.
	bucketOf []int
	mu       sync.Mutex
}

// NewCategorizer builds a matcher over buckets. A keyword repeated in a later
// bucket stays with the first bucket that lists it.
func NewCategorizer(buckets []Bucket) *Categorizer {
	c := &Categorizer{buckets: buckets}

	seen := make(map[string]bool)
	var patterns [][]byte
	for bi, b := range buckets {
		for _, kw := range b.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			patterns = append(patterns, []byte(kw))
			c.bucketOf = append(c.bucketOf, bi)
		}
	}
	if len(patterns) > 0 {
		c.matcher = ahocorasick.NewMatcher(patterns)
	}
	return c
}

// Categorize returns the category for description, or Other.
func (c *Categorizer) Categorize(description string) string {
	if c.matcher == nil {
		return Other
	}
	text := []byte(strings.ToLower(description))

	c.mu.Lock()
	hits := c.matcher.Match(text)
	c.mu.Unlock()

	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(c.bucketOf) {
			continue
		}
		if bi := c.bucketOf[idx]; best < 0 || bi < best {
			best = bi
		}
	}
	if best < 0 {
		return Other
	}
	return c.buckets[best].Category
}

var defaultCategorizer = NewCategorizer(DefaultBuckets())

// Categorize classifies description with the default buckets.
func Categorize(description string) string {
	return defaultCategorizer.Categorize(description)
}
