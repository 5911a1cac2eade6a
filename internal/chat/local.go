package chat

import "strings"

// LocalResponse answers a message without touching the search stack. It is
// the reply path when no search engine is wired, and covers the common
// assistant intents with canned text.
func LocalResponse(message string) string {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "upload") || strings.Contains(lower, "image") || strings.Contains(lower, "picture"):
		return "I can help you upload images! Add images to your collection and each one " +
			"will get a generated description and be stored for future searches."
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi") || strings.Contains(lower, "hey"):
		return "Hello! I'm your image search assistant. I can help you upload images with " +
			"generated descriptions and search through your collection using natural language."
	case strings.Contains(lower, "help") || strings.Contains(lower, "what can you do"):
		return "I'm an image search assistant! Here's what I can do:\n\n" +
			"- Upload images: add images to your collection with generated descriptions\n" +
			"- Vector search: find similar images using natural language queries\n" +
			"- Smart matching: use embeddings to find visually similar images\n\n" +
			"Start by uploading some images, then try searching for them!"
	case strings.Contains(lower, "how") && strings.Contains(lower, "work"):
		return "Here's how I work:\n\n" +
			"1. Upload: you upload an image, I generate a detailed description\n" +
			"2. Store: I create a vector embedding and store everything in the database\n" +
			"3. Search: you describe what you want, I find similar images using vector similarity\n" +
			"4. Results: I show you the best matches with similarity scores"
	}
	return "I'm your image search assistant. I can help you manage and search through your " +
		"image collection. You can upload new images or search for existing ones using " +
		"descriptive language."
}
