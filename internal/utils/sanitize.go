package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.\s]+`)
	extChars    = regexp.MustCompile(`[^a-z0-9.]+`)
)

// SanitizeFilename keeps the base name of an uploaded file and strips
// anything that is not safe in a storage key.
func SanitizeFilename(filename string) string {
	// Browsers on Windows may send the full client path.
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))

	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = Sanitize(base, "upload")
	ext = extChars.ReplaceAllString(ext, "")
	if ext == "." {
		ext = ""
	}
	return base + ext
}

// Sanitize drops unsafe characters and replaces whitespace with underscores.
func Sanitize(text, def string) string {
	clean := unsafeChars.ReplaceAllString(text, "")
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.Join(strings.Fields(clean), "_")
	if clean == "" {
		return def
	}
	return clean
}
