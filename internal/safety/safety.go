// Package safety spots self-harm language in journal text so the crisis helplines can be
// offered alongside the response.
package safety

import (
	"strings"
	"unicode"
)

var selfHarmPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"take my life",
	"end it all",
	"self harm",
	"cut myself",
	"hurt myself",
	"harm myself",
	"want to die",
	"wish i was dead",
	"not worth living",
	"better off dead",
	"end myself",
	"unalive",
}

// Obfuscation characters and look-alike Cyrillic letters mapped to Latin letters.
var replacer = strings.NewReplacer(
	"@", "a",
	"4", "a",
	"3", "e",
	"!", "i",
	"1", "i",
	"0", "o",
	"$", "s",
	"5", "s",
	"7", "t",
	"+", "t",
	"а", "a",
	"е", "e",
	"і", "i",
	"о", "o",
	"р", "p",
)

// canonical holds selfHarmPhrases run through Clean, so both sides compare in the same form.
var canonical = func() []string {
	out := make([]string, len(selfHarmPhrases))
	for i, p := range selfHarmPhrases {
		out[i] = Clean(p)
	}
	return out
}()

// Clean normalizes text to its canonical form: lower case, obfuscation undone, letters
// only, repeated letters collapsed and single spaces between words.
func Clean(text string) string {
	cleaned := replacer.Replace(strings.ToLower(text))

	var b strings.Builder
	var last rune
	lastWasLetter := false
	for _, r := range cleaned {
		if !unicode.IsLetter(r) {
			r = ' '
		}
		isLetter := r != ' '
		// rrreally -> realy; "kill kill" keeps its space
		if isLetter && lastWasLetter && r == last {
			continue
		}
		b.WriteRune(r)
		last = r
		lastWasLetter = isLetter
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SelfHarmSignals returns the canonical phrases found in text. Phrases match whole words
// only: "suicideprevention" and "attend my life coaching" do not count.
func SelfHarmSignals(text string) []string {
	cleaned := Clean(text)
	if cleaned == "" {
		return nil
	}
	padded := " " + cleaned + " "

	var matched []string
	for _, phrase := range canonical {
		if strings.Contains(padded, " "+phrase+" ") {
			matched = append(matched, phrase)
		}
	}
	return matched
}

// NeedsSupport reports whether text contains any self-harm signal.
func NeedsSupport(text string) bool {
	return len(SelfHarmSignals(text)) > 0
}
