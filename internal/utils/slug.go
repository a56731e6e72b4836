package utils

import (
	"strings"

	"github.com/gosimple/slug"
)

// Slugify transliterates s to ASCII, lower-cases it and joins the remaining words with single
// dashes. Underscores count as word separators.
func Slugify(s string) string {
	return slug.Make(strings.ReplaceAll(s, "_", " "))
}

// IsSlug reports whether s is already in slug form.
func IsSlug(s string) bool {
	return s != "" && Slugify(s) == s
}
