package domain

// RedactedPreview is returned instead of a prefix when the secret is too short to reveal any of it.
const RedactedPreview = "***"

// previewLength is the number of leading characters a rotation preview may show.
const previewLength = 8

// Preview returns the first eight characters of secret followed by "...", or RedactedPreview
// when the secret has eight characters or fewer.
func Preview(secret []byte) string {
	runes := []rune(string(secret))
	if len(runes) <= previewLength {
		return RedactedPreview
	}
	return string(runes[:previewLength]) + "..."
}
