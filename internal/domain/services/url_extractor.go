package services

import (
	"regexp"
	"slices"
	"strings"
)

var (
	explicitURLPattern = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\\(\\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
	bareDomainPattern  = regexp.MustCompile(`(?:www\.)?(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}(?:/[^\s]*)?`)
)

// ExtractURLs finds URLs in free text. Explicit http(s) URLs come first, then
// bare domain-like strings that are not part of an already captured URL,
// prefixed with http://.
func ExtractURLs(text string) []string {
	urls := explicitURLPattern.FindAllString(text, -1)

	for _, candidate := range bareDomainPattern.FindAllString(text, -1) {
		if slices.Contains(urls, candidate) || isPartOfAny(candidate, urls) {
			continue
		}
		if !strings.HasPrefix(candidate, "http") {
			candidate = "http://" + candidate
		}
		urls = append(urls, candidate)
	}

	if urls == nil {
		return []string{}
	}
	return urls
}

func isPartOfAny(s string, urls []string) bool {
	for _, u := range urls {
		if strings.Contains(u, s) {
			return true
		}
	}
	return false
}
