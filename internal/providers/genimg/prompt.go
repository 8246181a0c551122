package genimg

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func buildBackgroundPrompt(req BackgroundRequest) string {
	var b strings.Builder
	switch req.Kind {
	case BackgroundTransparent:
		b.WriteString("Cut the product out cleanly and place it on a fully transparent background. Preserve every detail and edge of the product.")
	case BackgroundScene:
		scene := strings.TrimSpace(req.ScenePrompt)
		if scene == "" {
			scene = "a tasteful studio environment that flatters the product"
		}
		fmt.Fprintf(&b, "Place the product into this scene: %s. Keep the product unchanged and realistically lit for the scene.", scene)
	default:
		color := strings.TrimSpace(req.Color)
		if color == "" {
			color = "#ffffff"
		}
		fmt.Fprintf(&b, "Replace the background with a smooth, even solid color (%s). Keep the product unchanged with natural soft shadows.", color)
	}
	if aspect := strings.TrimSpace(req.AspectRatio); aspect != "" {
		fmt.Fprintf(&b, "\nOutput aspect ratio: %s", aspect)
	}
	if req.Enhancer {
		b.WriteString("\nRender at professional product-photography quality: crisp focus, balanced exposure, no artifacts.")
	}
	return b.String()
}

func buildModelShotPrompt(req ModelShotRequest) string {
	var b strings.Builder
	if req.Model != nil {
		b.WriteString("Dress the person from the second image in the product from the first image.")
	} else {
		gender := strings.TrimSpace(req.Gender)
		if gender == "" {
			gender = "female"
		}
		fmt.Fprintf(&b, "Generate a photorealistic %s model wearing or presenting the product from the image.", gender)
	}
	if prompt := strings.TrimSpace(req.Prompt); prompt != "" {
		fmt.Fprintf(&b, "\nDirection: %s", prompt)
	}
	for _, pair := range [][2]string{
		{"Style", req.Style},
		{"Composition", req.Composition},
		{"Lighting", req.Lighting},
	} {
		if v := strings.TrimSpace(pair[1]); v != "" {
			fmt.Fprintf(&b, "\n%s: %s", pair[0], v)
		}
	}
	if req.Enhancer {
		b.WriteString("\nRender at editorial fashion-photography quality.")
	}
	return b.String()
}

func buildSuggestPrompt(req SuggestRequest) string {
	if req.Mode == "model-shot" {
		if req.Model != nil {
			return "Look at the product in the first image and the person in the second. Suggest one short photography direction for a shot of this person presenting this product. Reply with the direction only."
		}
		return "Look at this product photo. Suggest one short photography direction for an AI model shot presenting it. Reply with the direction only."
	}
	return "Look at this product photo. Suggest one short scene description that would make a striking background for it. Reply with the scene only."
}

var sceneIdeas = []string{
	"sunlit marble counter with soft morning shadows",
	"weathered oak table in a rustic kitchen",
	"minimal concrete pedestal against a warm gradient",
	"mossy forest floor with shallow depth of field",
	"glossy black acrylic with mirror reflections",
}

var shotIdeas = []string{
	"candid street style pose against a pastel wall",
	"studio portrait with dramatic rim lighting",
	"relaxed lifestyle shot in a bright loft",
	"editorial full body stance on a seamless backdrop",
}

// suggestionFor picks a deterministic idea so the synthetic provider behaves
// reproducibly in tests and offline runs.
func suggestionFor(mode string, seed int) string {
	titler := cases.Title(language.English)
	if mode == "model-shot" {
		return titler.String(shotIdeas[seed%len(shotIdeas)])
	}
	return titler.String(sceneIdeas[seed%len(sceneIdeas)])
}
