// Package challenge generates comprehension questions about a document.
package challenge

import (
	"fmt"
	"strings"

	"docinsight/internal/concept"
	"docinsight/internal/domain"
)

// Count is the number of questions in every generated set.
const Count = 3

const (
	mainPointsTemplate = "What are the main points discussed about %s in the document?"
	relationTemplate   = "How do %s and %s relate to each other according to the document?"

	genericComprehension = "What are the main themes or topics covered in this document?"
	genericEvidence      = "What specific examples or evidence does the document provide to support its main points?"
	criticalThinking     = "What conclusions can be drawn from the information presented in the document?"
)

// genericPool pads a set that still has duplicates after templating.
var genericPool = []string{
	"What are the most important findings or conclusions presented in this document?",
	"What evidence or examples does the document provide to support its main arguments?",
	"How might the information in this document be applied in real-world scenarios?",
}

// ConceptExtractor mines concepts from document text.
type ConceptExtractor interface {
	Extract(text string) []domain.Concept
}

// Generator builds question sets from extracted concepts.
type Generator struct {
	extractor ConceptExtractor
}

func NewGenerator(extractor ConceptExtractor) *Generator {
	if extractor == nil {
		extractor = concept.NewExtractor(concept.MaxConcepts)
	}
	return &Generator{extractor: extractor}
}

// Generate always returns exactly Count distinct questions.
func (g *Generator) Generate(text string) []string {
	var terms []string
	if strings.TrimSpace(text) != "" {
		concepts := g.extractor.Extract(text)
		if !concept.IsFallback(concepts) {
			terms = concept.Terms(concepts)
		}
	}
	return Questions(terms)
}

// Questions fills the question templates from terms, most salient first.
func Questions(terms []string) []string {
	candidates := make([]string, 0, Count+len(genericPool))
	if len(terms) > 0 {
		candidates = append(candidates, fmt.Sprintf(mainPointsTemplate, terms[0]))
	} else {
		candidates = append(candidates, genericComprehension)
	}
	if len(terms) > 1 {
		candidates = append(candidates, fmt.Sprintf(relationTemplate, terms[0], terms[1]))
	} else {
		candidates = append(candidates, genericEvidence)
	}
	candidates = append(candidates, criticalThinking)
	candidates = append(candidates, genericPool...)

	out := make([]string, 0, Count)
	seen := map[string]struct{}{}
	for _, q := range candidates {
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if len(out) == Count {
			break
		}
	}
	return out
}
