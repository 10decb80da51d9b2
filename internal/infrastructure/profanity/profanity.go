// Package profanity masks banned words in chat messages before they are
// stored or relayed. Matching is obfuscation-tolerant: leetspeak,
// accented characters, and separators inside a word (f.u.c.k) are
// normalized away before the word list is consulted.
package profanity

import (
	"embed"
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

var (
	// Shared instance; the master regex is expensive to build.
	defaultFilter *Filter
	once          sync.Once
)

//go:embed words.json
var jsonData embed.FS

func loadBannedWords() []string {
	data, err := jsonData.ReadFile("words.json")
	if err != nil {
		log.Fatalf("Failed to read embedded word list: %s", err)
	}

	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		log.Fatalf("Failed to unmarshal word list: %s", err)
	}
	return words
}

type Filter struct {
	regex *regexp.Regexp
}

func New() *Filter {
	once.Do(func() {
		defaultFilter = &Filter{
			regex: buildMasterRegex(loadBannedWords()),
		}
	})

	return defaultFilter
}

// Contains reports whether the text matches any banned word after
// normalization.
func (f *Filter) Contains(text string) bool {
	if text == "" {
		return false
	}
	return f.regex.MatchString(normalize(text))
}

var tokenPattern = regexp.MustCompile(`\S+`)

// Clean replaces every token containing a banned word with asterisks of
// the same length, leaving whitespace untouched.
func (f *Filter) Clean(s string) string {
	if !f.Contains(s) {
		return s
	}

	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		if !f.regex.MatchString(normalize(token)) {
			return token
		}
		return strings.Repeat("*", utf8.RuneCountInString(token))
	})
}

// normalize lowercases, folds accents, and undoes common leetspeak so a
// single pattern per word covers its obfuscations.
func normalize(text string) string {
	s := strings.ToLower(text)
	s = strings.Map(func(r rune) rune {
		switch r {
		case 'á', 'à', 'â', 'ä', 'ã', 'å':
			return 'a'
		case 'é', 'è', 'ê', 'ë':
			return 'e'
		case 'í', 'ì', 'î', 'ï':
			return 'i'
		case 'ó', 'ò', 'ô', 'ö', 'õ':
			return 'o'
		case 'ú', 'ù', 'û', 'ü':
			return 'u'
		case 'ñ':
			return 'n'
		case 'ç':
			return 'c'
		default:
			return r
		}
	}, s)

	s = strings.NewReplacer(
		"@", "a", "4", "a",
		"3", "e", "€", "e",
		"1", "i", "!", "i", "|", "i", "¡", "i",
		"0", "o", "()", "o", "[]", "o",
		"$", "s", "5", "s",
		"7", "t", "+", "t",
	).Replace(s)

	return s
}

// buildMasterRegex compiles all banned words into one alternation.
// Each letter tolerates trailing separators and doubling, so both
// "f.u.c.k" and "fuuck" hit the "fuck" pattern. Guards on both sides
// keep substrings of clean words (class, assess) from matching.
func buildMasterRegex(words []string) *regexp.Regexp {
	patterns := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}

		var b strings.Builder
		for i, r := range word {
			b.WriteString(regexp.QuoteMeta(string(r)))
			b.WriteString("+")
			if i < len(word)-1 {
				b.WriteString(`[^a-z0-9]*`)
			}
		}
		patterns = append(patterns, b.String())
	}

	expression := `(?:^|[^a-z0-9])(?:` + strings.Join(patterns, "|") + `)(?:[^a-z0-9]|$)`
	return regexp.MustCompile(expression)
}
