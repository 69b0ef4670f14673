// Package intent implements keyword-weighted intent classification for
// user utterances.
package intent

import (
	"regexp"
	"strings"
)

// Known intent names, in scoring priority order.
const (
	ClubCreation  = "club_creation"
	ClubSearch    = "club_search"
	JoinClub      = "join_club"
	Learning      = "learning"
	TechnicalHelp = "technical_help"
	GeneralInfo   = "general_info"
	General       = "general"
)

// Result is the outcome of classifying one utterance.
type Result struct {
	Primary    string
	Confidence float64
	Scores     map[string]float64
}

type pattern struct {
	name     string
	keywords []string
	weight   float64
}

// Classifier scores normalized utterances against keyword patterns.
// Ties go to the earlier-declared pattern.
type Classifier struct {
	patterns []pattern
}

// NewClassifier returns a classifier with the built-in intent table.
func NewClassifier() *Classifier {
	return &Classifier{patterns: []pattern{
		{ClubCreation, []string{"создать", "создай", "хочу создать", "создание", "новый клуб", "создам"}, 0.8},
		{ClubSearch, []string{"найди", "найти", "поиск", "ищу", "какой", "какие есть", "покажи"}, 0.7},
		{JoinClub, []string{"вступить", "вступлю", "как вступить", "хочу вступить", "присоединиться"}, 0.6},
		{Learning, []string{"научиться", "изучить", "обучение", "курс", "развиваться", "навык"}, 0.7},
		{TechnicalHelp, []string{"помощь", "проблема", "не работает", "ошибка", "вопрос", "как"}, 0.6},
		{GeneralInfo, []string{"что такое", "расскажи", "информация", "о платформе", "что это"}, 0.5},
	}}
}

// Classify scores the message against every pattern and returns the
// best intent. A zero best score means no pattern matched and the
// result falls back to the general intent. Classify never fails.
func (c *Classifier) Classify(message string) Result {
	query := Normalize(message)
	words := wordSet(query)

	res := Result{
		Primary: General,
		Scores:  make(map[string]float64, len(c.patterns)),
	}
	for _, p := range c.patterns {
		matched := 0
		for _, kw := range p.keywords {
			if keywordMatches(kw, words, query) {
				matched++
			}
		}
		score := float64(matched) / float64(len(p.keywords)) * p.weight
		res.Scores[p.name] = score
		if score > res.Confidence {
			res.Primary = p.name
			res.Confidence = score
		}
	}
	return res
}

func keywordMatches(kw string, words map[string]bool, query string) bool {
	if strings.ContainsRune(kw, ' ') {
		return strings.Contains(query, kw)
	}
	return words[kw]
}

func wordSet(query string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(query) {
		set[w] = true
	}
	return set
}

// punctPattern strips everything except letters, digits, whitespace and
// the ?! marks that carry intent signal.
var punctPattern = regexp.MustCompile(`[^\p{L}\p{N}\s?!]+`)

// abbreviations expanded token-wise during normalization.
var abbreviations = map[string]string{
	"ит":   "информационные технологии",
	"айти": "информационные технологии",
	"смм":  "маркетинг",
	"pr":   "пиар",
	"hr":   "управление персоналом",
	"сео":  "продвижение сайтов",
}

// Normalize lowercases the query, strips punctuation, expands common
// abbreviations and collapses whitespace.
func Normalize(message string) string {
	q := strings.ToLower(strings.TrimSpace(message))
	q = punctPattern.ReplaceAllString(q, " ")

	tokens := strings.Fields(q)
	for i, tok := range tokens {
		if full, ok := abbreviations[tok]; ok {
			tokens[i] = full
		}
	}
	return strings.Join(tokens, " ")
}
