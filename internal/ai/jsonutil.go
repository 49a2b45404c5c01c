package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// jsonBlockPattern matches JSON inside markdown code blocks: ```json { ... } ```
	jsonBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	// jsonObjectPattern matches any JSON object (greedy fallback).
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// extractJSON pulls the JSON object out of a model reply. Replies in JSON mode are usually
// bare objects, but models still wrap them in code fences now and then.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	raw := ""
	if m := jsonBlockPattern.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else if m := jsonObjectPattern.FindString(content); m != "" {
		raw = m
	}
	if raw == "" || json.Valid([]byte(raw)) {
		return raw
	}
	// Trailing commas are stripped only from replies that do not parse.
	return trailingCommaPattern.ReplaceAllString(raw, "$1")
}
