package shared

import "strings"

func ToTitle(s string) string {
	if s == "" {
		return s
	}
	first := strings.ToUpper(s[:1])
	rest := s[1:]
	return first + rest
}

// TitleFromKebab turns "word-cloud" into "Word Cloud".
func TitleFromKebab(s string) string {
	words := strings.Split(s, "-")
	for i, w := range words {
		words[i] = ToTitle(w)
	}
	return strings.Join(words, " ")
}

