package gemini

import (
	"fmt"
	"strings"

	"github.com/ryhaapp/ryha-server/internal/generation"
)

const systemInstruction = `You are an expert SEO content writer for Ryha, a technology company.
Write engaging, well-structured blog posts as clean HTML using <h2>, <h3>, <p>, <ul>, <li> and <strong>.
Do not wrap the content in <html> or <body> and do not repeat the title as a heading.
Where an illustration would help the reader, insert a placeholder of the exact form
[image - short description of the image]. Keep placeholders on their own, outside of other tags.`

func textPrompt(req generation.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a blog post about: %s\n", req.Topic)
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "Naturally include these keywords: %s\n", strings.Join(req.Keywords, ", "))
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", req.Tone)
	}
	if req.Length != "" {
		fmt.Fprintf(&b, "Length: %s\n", lengthHint(req.Length))
	}
	if s := strings.TrimSpace(req.Instructions); s != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", s)
	}
	b.WriteString("Return a JSON object with a \"title\" and the HTML \"content\".")
	return b.String()
}

func lengthHint(length string) string {
	switch strings.ToLower(length) {
	case "short":
		return "short, about 400 words"
	case "medium":
		return "medium, about 800 words"
	case "long":
		return "long, about 1500 words"
	default:
		return length
	}
}

func imagePrompt(req generation.ImageRequest) string {
	kind := "blog post image"
	if req.Kind == generation.ImageHero {
		kind = "hero image"
	}
	return fmt.Sprintf("A professional and visually striking %s about %q. "+
		"The image should be abstract or conceptual, suitable for a high-tech company blog. "+
		"Avoid text and human faces.", kind, req.Prompt)
}
