package answer

import "docinsight/internal/tokenize"

// Category is the kind of question being asked.
type Category string

const (
	Definition Category = "definition"
	Process    Category = "process"
	Causal     Category = "causal"
	Temporal   Category = "temporal"
	Locational Category = "locational"
	General    Category = "general"
)

// Rule classifies a question by keyword and shapes the answer for it.
// Template and FallbackTemplate take the selected sentence text as their only argument.
type Rule struct {
	Category         Category
	Keywords         []string
	Cues             []string
	Template         string
	FallbackTemplate string
	Sentences        int
}

// DefaultRules are checked in order; the first rule whose keyword appears in
// the question wins. The last rule has no keywords and always matches.
var DefaultRules = []Rule{
	{
		Category:         Definition,
		Keywords:         []string{"what", "define", "definition"},
		Cues:             []string{"is", "are", "refers to", "means", "defined as"},
		Template:         "According to the document, %s",
		FallbackTemplate: "The document provides information about this topic: %s",
		Sentences:        1,
	},
	{
		Category:         Process,
		Keywords:         []string{"how", "process", "method"},
		Cues:             []string{"first", "then", "next", "finally", "step", "process", "method"},
		Template:         "The document explains the process: %s",
		FallbackTemplate: "The document provides information about this method: %s",
		Sentences:        2,
	},
	{
		Category:         Causal,
		Keywords:         []string{"why", "reason", "cause"},
		Cues:             []string{"because", "due to", "caused by", "result of", "reason"},
		Template:         "The document explains: %s",
		FallbackTemplate: "Based on the document: %s",
		Sentences:        1,
	},
	{
		Category:         Temporal,
		Keywords:         []string{"when", "time", "date"},
		Cues:             []string{"when", "during", "time", "year", "month", "day", "period"},
		Template:         "The document indicates: %s",
		FallbackTemplate: "The document mentions: %s",
		Sentences:        1,
	},
	{
		Category:         Locational,
		Keywords:         []string{"where", "location", "place"},
		Cues:             []string{"where", "location", "place", "at", "in"},
		Template:         "The document states: %s",
		FallbackTemplate: "The document provides: %s",
		Sentences:        1,
	},
	{
		Category:         General,
		Template:         "Based on the document: %s",
		FallbackTemplate: "Based on the document: %s",
		Sentences:        1,
	},
}

// Classify returns the first rule whose keyword is a word of question.
// rules must end with a keyword-less catch-all.
func Classify(rules []Rule, question string) Rule {
	words := map[string]struct{}{}
	for _, w := range tokenize.Words(question) {
		words[w] = struct{}{}
	}
	for _, r := range rules {
		if len(r.Keywords) == 0 {
			return r
		}
		for _, k := range r.Keywords {
			if _, ok := words[k]; ok {
				return r
			}
		}
	}
	return rules[len(rules)-1]
}

func (r Rule) matchesCue(sentence string) bool {
	for _, c := range r.Cues {
		if tokenize.ContainsPhrase(sentence, c) {
			return true
		}
	}
	return false
}
