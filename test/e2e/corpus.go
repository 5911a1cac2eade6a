// Package e2e provides end-to-end tests with a large image corpus and multiple queries.
package e2e

import (
	"fmt"
	"strings"
)

// E2EImage is one image entry in the E2E corpus. The description is what the
// scripted vision client returns for the image, so it is the only text the
// pipeline ever sees for it.
type E2EImage struct {
	Filename    string
	Description string
}

// QueryTestCase defines a query and the image filename(s) that must appear in
// search results. At least one of ExpectedFilenames must be present.
type QueryTestCase struct {
	Query             string
	ExpectedFilenames []string
	Description       string
}

// Corpus holds images and query test cases for E2E tests.
type Corpus struct {
	Images       []E2EImage
	TestCases    []QueryTestCase
	TotalImages  int
	TotalQueries int
}

// BuildCorpus returns a corpus of 60 images with varied descriptions and
// query test cases. Each description carries a unique signature phrase,
// repeated once, so queries can assert the correct image is returned.
func BuildCorpus() *Corpus {
	images := buildImages(60)
	cases := buildQueryTestCases(images)
	return &Corpus{
		Images:       images,
		TestCases:    cases,
		TotalImages:  len(images),
		TotalQueries: len(cases),
	}
}

func buildImages(n int) []E2EImage {
	scenes := []struct {
		name   string
		phrase string
		rest   string
	}{
		{"dog-park", "golden retriever fetching", "A golden retriever fetching a tennis ball in a grassy park. The golden retriever fetching shot is taken at dog height."},
		{"city-night", "neon skyline reflections", "A city skyline at night with neon skyline reflections on wet pavement. Neon skyline reflections stretch across the whole frame."},
		{"sushi-plate", "salmon sushi rolls", "A wooden plate of salmon sushi rolls with wasabi and ginger. The salmon sushi rolls are garnished with sesame seeds."},
		{"mountain-lake", "alpine lake reflection", "Snow capped peaks above an alpine lake reflection at dawn. The alpine lake reflection mirrors the ridgeline perfectly."},
		{"red-car", "red sports car", "A red sports car parked outside a glass office tower. The red sports car has chrome wheels and tinted windows."},
		{"beach-sunset", "orange beach sunset", "An orange beach sunset with silhouetted palm trees. The orange beach sunset colors the waves amber."},
		{"cat-window", "tabby cat sleeping", "A tabby cat sleeping on a sunlit window sill. The tabby cat sleeping pose covers the whole cushion."},
		{"coffee-art", "latte foam art", "A ceramic cup with latte foam art shaped like a fern. The latte foam art sits on a marble counter."},
		{"autumn-forest", "autumn maple foliage", "A forest trail through autumn maple foliage in red and gold. Autumn maple foliage covers the path completely."},
		{"street-market", "spice market stalls", "Crowded spice market stalls with pyramids of colored powder. The spice market stalls stretch down a narrow alley."},
		{"surfing-wave", "surfer barrel wave", "A surfer barrel wave shot from inside the curl. The surfer barrel wave throws spray over the lens."},
		{"library-hall", "vaulted library shelves", "Vaulted library shelves rising three stories over reading desks. The vaulted library shelves hold leather bound volumes."},
		{"desert-dunes", "rippled sand dunes", "Rippled sand dunes under a cloudless blue sky. The rippled sand dunes cast long morning shadows."},
		{"birthday-cake", "chocolate birthday cake", "A chocolate birthday cake with lit candles and sprinkles. The chocolate birthday cake sits on a striped tablecloth."},
		{"northern-lights", "green aurora curtain", "A green aurora curtain over a frozen lake in winter. The green aurora curtain reflects off the ice."},
		{"old-bridge", "stone arch bridge", "A stone arch bridge crossing a shallow river in fog. The stone arch bridge is covered in ivy."},
		{"hot-air-balloon", "striped hot air balloon", "A striped hot air balloon drifting over vineyard rows. The striped hot air balloon carries a wicker basket."},
		{"rainy-window", "raindrops on glass", "Raindrops on glass with blurred street lights behind. The raindrops on glass form winding trails."},
		{"farmers-field", "wheat field harvest", "A combine working a wheat field harvest at golden hour. The wheat field harvest raises a cloud of dust."},
		{"jazz-club", "saxophone stage spotlight", "A saxophone stage spotlight in a smoky jazz club. The saxophone stage spotlight leaves the crowd in darkness."},
		{"ski-slope", "powder ski turn", "A skier carving a powder ski turn off piste. The powder ski turn sends up a white plume."},
		{"greenhouse", "tomato greenhouse rows", "Tomato greenhouse rows under diffuse plastic light. The tomato greenhouse rows are staked with twine."},
		{"lighthouse", "striped lighthouse cliff", "A striped lighthouse cliff above breaking waves. The striped lighthouse cliff glows in storm light."},
		{"chess-board", "wooden chess pieces", "Wooden chess pieces mid game on a walnut board. The wooden chess pieces cast soft window shadows."},
		{"waterfall", "jungle waterfall pool", "A jungle waterfall pool surrounded by ferns. The jungle waterfall pool is a deep turquoise."},
		{"vintage-train", "steam locomotive platform", "A steam locomotive platform scene with period luggage. The steam locomotive platform is wreathed in vapor."},
		{"flower-macro", "dew covered rose", "A dew covered rose in extreme macro detail. The dew covered rose petals hold dozens of droplets."},
		{"basketball-court", "outdoor basketball dunk", "An outdoor basketball dunk at a chain net hoop. The outdoor basketball dunk is frozen mid flight."},
		{"pottery-wheel", "clay pottery wheel", "Hands shaping a vessel on a clay pottery wheel. The clay pottery wheel splatters the apron."},
		{"aquarium", "jellyfish tank glow", "A jellyfish tank glow in a darkened aquarium hall. The jellyfish tank glow is a pale electric blue."},
		{"campfire", "campfire marshmallow sticks", "Friends holding campfire marshmallow sticks at dusk. The campfire marshmallow sticks glow at the tips."},
		{"windmill", "dutch windmill canal", "A dutch windmill canal scene with moored rowboats. The dutch windmill canal is lined with tulips."},
		{"skyscraper", "glass skyscraper lobby", "A glass skyscraper lobby with a sculptural staircase. The glass skyscraper lobby is flooded with daylight."},
		{"bakery", "fresh sourdough loaves", "Fresh sourdough loaves cooling on a bakery rack. The fresh sourdough loaves are scored in wheat patterns."},
		{"kayak", "river kayak rapids", "A river kayak rapids run through a granite gorge. The river kayak rapids throw whitewater over the bow."},
		{"observatory", "telescope dome stars", "A telescope dome stars exposure with the Milky Way. The telescope dome stars trail slightly at the edges."},
		{"vineyard", "grape harvest crates", "Grape harvest crates stacked between vine rows. The grape harvest crates overflow with dark clusters."},
		{"ice-cream", "strawberry ice cream cone", "A strawberry ice cream cone melting in summer heat. The strawberry ice cream cone drips onto the boardwalk."},
		{"graffiti-wall", "colorful graffiti mural", "A colorful graffiti mural covering a brick underpass. The colorful graffiti mural features a giant koi."},
		{"horse-ranch", "galloping horse pasture", "A galloping horse pasture scene in morning mist. The galloping horse pasture fence leans with age."},
		{"origami", "paper crane folding", "A paper crane folding sequence on black felt. The paper crane folding steps use gold foil sheets."},
		{"submarine", "yellow submarine museum", "A yellow submarine museum exhibit behind rope lines. The yellow submarine museum hull shows rivet seams."},
		{"carnival", "ferris wheel lights", "Ferris wheel lights spinning long exposure at a carnival. The ferris wheel lights draw perfect circles."},
		{"tea-ceremony", "matcha tea whisk", "A matcha tea whisk resting on a stoneware bowl. The matcha tea whisk is carved from a single bamboo culm."},
		{"rock-climbing", "granite crack climber", "A granite crack climber jamming a vertical seam. The granite crack climber trails a rope to a distant belay."},
		{"penguins", "penguin colony iceberg", "A penguin colony iceberg crowded at the waterline. The penguin colony iceberg tilts into green sea."},
		{"violin", "violin luthier workshop", "A violin luthier workshop bench with curls of spruce. The violin luthier workshop smells of varnish."},
		{"night-market", "lantern night market", "A lantern night market street with steaming food stalls. The lantern night market glows red and gold."},
		{"cactus", "flowering desert cactus", "A flowering desert cactus with pink crown blossoms. The flowering desert cactus stands alone on red soil."},
		{"drone-view", "aerial river delta", "An aerial river delta braided in silver channels. The aerial river delta fans into a shallow bay."},
		{"blacksmith", "forge anvil sparks", "Forge anvil sparks flying from a struck billet. The forge anvil sparks light the smith's face."},
		{"ballet", "ballet leap rehearsal", "A ballet leap rehearsal in a mirrored studio. The ballet leap rehearsal is caught at full extension."},
		{"tide-pool", "starfish tide pool", "A starfish tide pool with anemones and kelp. The starfish tide pool reflects passing clouds."},
		{"antique-map", "parchment world map", "A parchment world map with sea monsters in the margins. The parchment world map is lit by a brass lamp."},
		{"wind-farm", "offshore wind turbines", "Offshore wind turbines receding into haze. The offshore wind turbines turn in slow unison."},
		{"treehouse", "oak treehouse ladder", "An oak treehouse ladder climbing to a plank platform. The oak treehouse ladder has rope rails."},
		{"marathon", "marathon finish ribbon", "A marathon finish ribbon breaking across a runner's chest. The marathon finish ribbon moment is mid stride."},
		{"koi-pond", "koi pond lilies", "A koi pond lilies scene with orange and white fish. The koi pond lilies float on still dark water."},
		{"glacier", "blue glacier crevasse", "A blue glacier crevasse splitting the ice field. The blue glacier crevasse deepens to indigo."},
		{"pottery-market", "terracotta pot stall", "A terracotta pot stall stacked with hand thrown ware. The terracotta pot stall spills into the street."},
	}

	out := make([]E2EImage, 0, n)
	for i := 0; i < n && i < len(scenes); i++ {
		s := scenes[i]
		out = append(out, E2EImage{
			Filename:    fmt.Sprintf("%s.jpg", s.name),
			Description: s.rest,
		})
	}
	for len(out) < n {
		i := len(out)
		s := scenes[i%len(scenes)]
		out = append(out, E2EImage{
			Filename:    fmt.Sprintf("%s-%d.jpg", s.name, i+1),
			Description: s.rest,
		})
	}
	return out
}

func buildQueryTestCases(images []E2EImage) []QueryTestCase {
	if len(images) == 0 {
		return nil
	}
	phrases := []string{
		"golden retriever fetching", "neon skyline reflections", "salmon sushi rolls",
		"alpine lake reflection", "red sports car", "orange beach sunset",
		"tabby cat sleeping", "latte foam art", "autumn maple foliage",
		"spice market stalls", "surfer barrel wave", "vaulted library shelves",
		"rippled sand dunes", "chocolate birthday cake", "green aurora curtain",
		"stone arch bridge", "striped hot air balloon", "raindrops on glass",
		"wheat field harvest", "saxophone stage spotlight", "powder ski turn",
		"striped lighthouse cliff", "jungle waterfall pool", "dew covered rose",
		"jellyfish tank glow", "dutch windmill canal", "fresh sourdough loaves",
		"telescope dome stars", "strawberry ice cream cone", "colorful graffiti mural",
		"paper crane folding", "ferris wheel lights", "matcha tea whisk",
		"penguin colony iceberg", "lantern night market", "flowering desert cactus",
		"aerial river delta", "forge anvil sparks", "starfish tide pool",
		"parchment world map", "offshore wind turbines", "marathon finish ribbon",
		"koi pond lilies", "blue glacier crevasse",
	}
	var cases []QueryTestCase
	used := make(map[string]bool)
	for _, p := range phrases {
		for _, img := range images {
			if containsPhrase(img, p) && !used[img.Filename] {
				cases = append(cases, QueryTestCase{
					Query:             p,
					ExpectedFilenames: []string{img.Filename},
					Description:       fmt.Sprintf("query %q should return image %s", p, img.Filename),
				})
				used[img.Filename] = true
				break
			}
		}
	}
	return cases
}

func containsPhrase(img E2EImage, phrase string) bool {
	return strings.Contains(img.Description, phrase)
}
