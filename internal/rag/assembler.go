// Package rag assembles knowledge-base context blocks for completion
// prompts, with a TTL-bounded memo cache.
package rag

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/fanclubkz/consultant/internal/intent"
	"github.com/fanclubkz/consultant/internal/knowledge"
)

const cacheSize = 256

// Profile carries optional per-user enrichment for context assembly.
type Profile struct {
	City      string
	Interests []string
}

// Bundle is an assembled context block and the names of the knowledge
// sections it was built from.
type Bundle struct {
	Text    string
	Sources []string
}

// Assembler selects knowledge fragments for a query deterministically:
// the same query, agent and intent always produce the same bundle.
type Assembler struct {
	kb    *knowledge.Base
	cache *expirable.LRU[string, Bundle]
}

// NewAssembler returns an assembler caching bundles for ttl.
func NewAssembler(kb *knowledge.Base, ttl time.Duration) *Assembler {
	return &Assembler{
		kb:    kb,
		cache: expirable.NewLRU[string, Bundle](cacheSize, nil, ttl),
	}
}

// Assemble builds the context bundle for a query. Profile data is not
// part of the cache key, so profile-enriched calls bypass the cache.
// Any internal failure degrades to the static fallback bundle.
func (a *Assembler) Assemble(query, agentName string, res intent.Result, profile *Profile) (b Bundle) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("context assembly failed, using fallback", "panic", r, "agent", agentName)
			b = Fallback()
		}
	}()

	cacheable := profile == nil
	key := cacheKey(query, agentName)
	if cacheable {
		if cached, ok := a.cache.Get(key); ok {
			return cached
		}
	}

	b = a.build(query, agentName, res, profile)
	if cacheable {
		a.cache.Add(key, b)
	}
	return b
}

func (a *Assembler) build(query, agentName string, res intent.Result, profile *Profile) Bundle {
	if a.kb == nil {
		return Fallback()
	}

	q := intent.Normalize(query)
	var sb strings.Builder
	var sources []string

	section := func(name, header, body string) {
		if body == "" {
			return
		}
		sb.WriteString(header)
		sb.WriteString("\n")
		sb.WriteString(body)
		sb.WriteString("\n\n")
		sources = append(sources, name)
	}

	switch res.Primary {
	case intent.General, intent.GeneralInfo, intent.TechnicalHelp:
		section("platform", "🏢 ПЛАТФОРМА", a.platformBlock())
	}

	if containsAny(q, "спорт", "хобби", "професс", "категор") || res.Primary == intent.ClubSearch {
		section("categories", "🏷️ КАТЕГОРИИ КЛУБОВ", a.categoriesBlock())
	}

	switch res.Primary {
	case intent.ClubCreation:
		section("instructions", "📝 ИНСТРУКЦИЯ", a.instructionBlock("create_club"))
	case intent.JoinClub:
		section("instructions", "📝 ИНСТРУКЦИЯ", a.instructionBlock("join_club"))
	}

	if res.Primary == intent.GeneralInfo || res.Primary == intent.ClubSearch {
		section("values", "✨ ЦЕННОСТИ ПЛАТФОРМЫ", bulletList(a.kb.Values()))
	}

	if res.Primary == intent.GeneralInfo || res.Primary == intent.Learning {
		section("success_stories", "🌟 ИСТОРИИ УСПЕХА", a.storiesBlock(2))
	}

	if res.Primary == intent.TechnicalHelp {
		section("faq", "❓ ЧАСТЫЕ ВОПРОСЫ", a.faqBlock())
	}

	section("tone", "🎭 СТИЛЬ ОБЩЕНИЯ", a.styleBlock(agentName))

	if profile != nil && profile.City != "" {
		section("localization", "📍 ЛОКАЛИЗАЦИЯ", bulletList(a.kb.LocalTips(strings.ToLower(profile.City))))
	}
	if profile != nil && len(profile.Interests) > 0 {
		section("personalization", "🎯 РЕКОМЕНДОВАННЫЕ КАТЕГОРИИ", bulletList(a.kb.CategoriesForInterests(profile.Interests)))
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return Fallback()
	}
	return Bundle{Text: text, Sources: sources}
}

func (a *Assembler) platformBlock() string {
	p := a.kb.Platform()
	return fmt.Sprintf("%s (%s) — %s\nМиссия: %s\nСлоган: %s", p.Name, p.Country, p.Description, p.Mission, p.Slogan)
}

func (a *Assembler) categoriesBlock() string {
	var lines []string
	for _, c := range a.kb.Categories() {
		lines = append(lines, fmt.Sprintf("%s %s — %s (например: %s)", c.Emoji, c.Name, c.Description, strings.Join(c.Examples, ", ")))
	}
	return strings.Join(lines, "\n")
}

func (a *Assembler) instructionBlock(name string) string {
	in, ok := a.kb.Instruction(name)
	if !ok {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(in.Title)
	for i, step := range in.Steps {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, step)
	}
	return sb.String()
}

func (a *Assembler) storiesBlock(limit int) string {
	stories := a.kb.SuccessStories()
	if len(stories) > limit {
		stories = stories[:limit]
	}
	var lines []string
	for _, s := range stories {
		lines = append(lines, fmt.Sprintf("«%s»: %s", s.Title, s.Summary))
	}
	return strings.Join(lines, "\n")
}

func (a *Assembler) faqBlock() string {
	var lines []string
	for _, f := range a.kb.FAQ() {
		lines = append(lines, fmt.Sprintf("В: %s\nО: %s", f.Question, f.Answer))
	}
	return strings.Join(lines, "\n")
}

func (a *Assembler) styleBlock(agentName string) string {
	s := a.kb.StyleFor(agentName)
	return fmt.Sprintf("Тон: %s. Обращение: %s. Подход: %s.", s.Tone, s.Address, s.Approach)
}

// Fallback is the minimal static context used when assembly fails.
func Fallback() Bundle {
	return Bundle{
		Text: "🏢 ПЛАТФОРМА\nЦЕНТР СОБЫТИЙ (Казахстан) — платформа клубов и сообществ по интересам.\n" +
			"Помогите пользователю найти клуб, создать свой или решить вопрос по платформе.",
		Sources: []string{"fallback"},
	}
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var lines []string
	for _, it := range items {
		lines = append(lines, "• "+it)
	}
	return strings.Join(lines, "\n")
}

func containsAny(q string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(q, s) {
			return true
		}
	}
	return false
}

func cacheKey(query, agentName string) string {
	h := fnv.New64a()
	h.Write([]byte(intent.Normalize(query)))
	h.Write([]byte{0})
	h.Write([]byte(agentName))
	return fmt.Sprintf("%x", h.Sum64())
}
