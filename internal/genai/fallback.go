package genai

import (
	"hash/fnv"
	"path/filepath"
	"regexp"
	"strings"
)

// categories maps filename keywords to canned description pools. Used when
// the generative service cannot describe an image: the filename is the only
// signal left, and an empty description would make the image unsearchable.
var categories = []struct {
	name         string
	keywords     []string
	descriptions []string
}{
	{
		name: "nature",
		keywords: []string{"landscape", "mountain", "forest", "tree", "river", "lake",
			"ocean", "beach", "sky", "sunset", "sunrise", "nature", "outdoor",
			"wilderness", "park", "garden", "flower"},
		descriptions: []string{
			"A beautiful natural landscape with stunning scenery and peaceful atmosphere",
			"A scenic outdoor photograph capturing the beauty of nature",
			"A picturesque view of natural elements and environmental beauty",
			"A captivating nature scene with harmonious colors and composition",
		},
	},
	{
		name: "people",
		keywords: []string{"portrait", "person", "people", "face", "group", "family",
			"friends", "human", "selfie", "man", "woman", "child"},
		descriptions: []string{
			"A portrait photograph showing people with expressive faces and emotions",
			"An image featuring human subjects in a well-composed setting",
			"A photograph capturing people and their interactions or expressions",
			"A portrait with good lighting and focus on human elements",
		},
	},
	{
		name: "animals",
		keywords: []string{"animal", "pet", "dog", "cat", "bird", "wildlife",
			"creature", "puppy", "kitten", "horse", "fish"},
		descriptions: []string{
			"An animal photograph showing wildlife or pets in natural settings",
			"A cute creature captured in a moment of beauty or action",
			"An image featuring animals with focus on their characteristics",
			"A wildlife photograph showcasing animal behavior and environment",
		},
	},
	{
		name: "urban",
		keywords: []string{"city", "building", "street", "architecture", "urban",
			"skyline", "downtown", "cityscape", "bridge", "road"},
		descriptions: []string{
			"An urban landscape with architectural elements and city atmosphere",
			"A city scene featuring buildings, streets, and urban environment",
			"An architectural photograph with structural details and perspective",
			"A cityscape showing urban life and man-made structures",
		},
	},
	{
		name: "food",
		keywords: []string{"food", "meal", "dish", "cooking", "restaurant",
			"culinary", "recipe", "delicious", "dinner", "breakfast"},
		descriptions: []string{
			"A delicious looking food photograph with appealing presentation",
			"A culinary creation showcasing flavors and food aesthetics",
			"A meal or dish prepared beautifully with attention to detail",
			"Food photography highlighting ingredients and preparation",
		},
	},
	{
		name: "travel",
		keywords: []string{"travel", "vacation", "destination", "tourist",
			"landmark", "adventure", "journey", "trip"},
		descriptions: []string{
			"A travel photograph capturing the essence of a destination",
			"An adventure image showing exploration and discovery",
			"A vacation photo with memorable moments and locations",
			"Travel photography highlighting experiences and places",
		},
	},
	{
		name: "abstract",
		keywords: []string{"abstract", "art", "creative", "pattern", "texture",
			"color", "design"},
		descriptions: []string{
			"An abstract artistic composition with interesting patterns and colors",
			"A creative image featuring unique shapes and visual elements",
			"An artistic photograph with abstract forms and textures",
			"A design-focused image with creative composition",
		},
	},
}

var generalDescriptions = []string{
	"An interesting photograph with good composition and visual appeal",
	"A visually appealing image with nice colors and balanced elements",
	"A well-composed picture worth exploring and appreciating",
	"A captivating photograph with artistic qualities and interest",
}

var wordSplit = regexp.MustCompile(`[_\-\s]+`)

// FallbackDescription builds a generic non-empty description from the
// filename. The pool choice is keyed on the name so the same file always gets
// the same description.
func FallbackDescription(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	name := strings.ToLower(base)
	var words []string
	for _, w := range wordSplit.Split(name, -1) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}

	pool := generalDescriptions
	for _, c := range categories {
		matched := false
		for _, kw := range c.keywords {
			if strings.Contains(name, kw) {
				matched = true
				break
			}
		}
		if matched {
			pool = c.descriptions
			break
		}
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	desc := pool[int(h.Sum32())%len(pool)]

	joined := strings.Join(words, " ")
	if len(words) > 1 && len(joined) < 30 {
		return desc + " Context suggests: " + joined + "."
	}
	return desc
}
