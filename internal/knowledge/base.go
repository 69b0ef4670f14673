// Package knowledge holds the static platform knowledge used for
// context assembly and fallback responses.
package knowledge

// PlatformInfo describes the platform itself.
type PlatformInfo struct {
	Name        string
	URL         string
	Country     string
	Mission     string
	Slogan      string
	Description string
}

// Category is one of the canonical club categories.
type Category struct {
	Key         string
	Emoji       string
	Name        string
	Description string
	Examples    []string
}

// Instruction is a step-by-step how-to for a platform action.
type Instruction struct {
	Name           string
	Title          string
	RequiredFields []string
	Steps          []string
}

// FAQEntry is a canned question/answer pair.
type FAQEntry struct {
	Question string
	Answer   string
}

// SuccessStory is a short community achievement used to motivate users.
type SuccessStory struct {
	Title   string
	Summary string
}

// Style describes how a given agent talks to users.
type Style struct {
	Tone     string
	Address  string
	Approach string
}

// Base is the static knowledge base. All methods are read-only, so a
// single instance is safe for concurrent use.
type Base struct {
	platform     PlatformInfo
	categories   []Category
	instructions map[string]Instruction
	values       []string
	stories      []SuccessStory
	faq          []FAQEntry
	styles       map[string]Style
	keyPhrases   []string
	cityTips     map[string][]string
	interestMap  map[string]string
}

// New returns the populated knowledge base.
func New() *Base {
	return &Base{
		platform: PlatformInfo{
			Name:        "ЦЕНТР СОБЫТИЙ",
			URL:         "https://fan-club.kz",
			Country:     "Казахстан",
			Mission:     "Объединять людей по интересам и помогать им развиваться вместе",
			Slogan:      "Найди своих. Создай своё.",
			Description: "Платформа клубов и сообществ по интересам: поиск клубов, создание своих, события и развитие.",
		},
		categories: []Category{
			{Key: "sport", Emoji: "⚽", Name: "Спорт", Description: "Командные и индивидуальные виды спорта", Examples: []string{"футбол", "бег", "йога", "шахматы"}},
			{Key: "hobby", Emoji: "🎨", Name: "Хобби и творчество", Description: "Творческие и досуговые занятия", Examples: []string{"рисование", "фотография", "настольные игры"}},
			{Key: "professional", Emoji: "💼", Name: "Профессия", Description: "Профессиональные сообщества и нетворкинг", Examples: []string{"IT", "маркетинг", "дизайн", "предпринимательство"}},
			{Key: "education", Emoji: "📚", Name: "Обучение", Description: "Совместное обучение и развитие навыков", Examples: []string{"языки", "публичные выступления", "книжные клубы"}},
			{Key: "culture", Emoji: "🎭", Name: "Культура", Description: "Музыка, кино, театр и искусство", Examples: []string{"кино", "музыка", "театр"}},
		},
		instructions: map[string]Instruction{
			"create_club": {
				Name:           "create_club",
				Title:          "Как создать клуб",
				RequiredFields: []string{"название", "описание", "категория", "город", "email"},
				Steps: []string{
					"Придумайте название клуба",
					"Опишите, чем клуб будет заниматься (минимум 100 символов)",
					"Выберите категорию",
					"Укажите город",
					"Оставьте контактный email",
					"По желанию добавьте телефон и адрес встреч",
				},
			},
			"join_club": {
				Name:           "join_club",
				Title:          "Как вступить в клуб",
				RequiredFields: []string{"клуб"},
				Steps: []string{
					"Найдите клуб через поиск или каталог категорий",
					"Откройте страницу клуба и изучите описание",
					"Нажмите «Вступить» и дождитесь подтверждения организатора",
				},
			},
		},
		values: []string{
			"Живое общение важнее лайков",
			"Каждый может стать организатором",
			"Сообщества растут на доверии",
			"Развитие через совместные события",
		},
		stories: []SuccessStory{
			{Title: "Беговой клуб Алматы", Summary: "Начался с трёх человек в парке, через год — 200 участников и собственные забеги."},
			{Title: "IT-сообщество Астаны", Summary: "Еженедельные митапы выросли в конференцию на 500 человек."},
			{Title: "Книжный клуб «Страница»", Summary: "Онлайн-встречи объединили читателей из пяти городов."},
		},
		faq: []FAQEntry{
			{Question: "Сколько стоит создать клуб?", Answer: "Создание клуба на платформе бесплатно."},
			{Question: "Не приходит письмо подтверждения", Answer: "Проверьте папку «Спам» и правильность email. Если письма нет 10 минут, напишите в поддержку."},
			{Question: "Как изменить данные клуба?", Answer: "Откройте страницу клуба как организатор и нажмите «Редактировать»."},
		},
		styles: map[string]Style{
			"orchestrator":       {Tone: "дружелюбный и тёплый", Address: "на «вы»", Approach: "помогает сориентироваться и направляет к нужному специалисту"},
			"club_specialist":    {Tone: "вдохновляющий и конкретный", Address: "на «вы»", Approach: "ведёт за руку от идеи клуба до его создания"},
			"support_specialist": {Tone: "спокойный и чёткий", Address: "на «вы»", Approach: "решает проблему по шагам, без лишних слов"},
			"mentor_specialist":  {Tone: "поддерживающий", Address: "на «вы»", Approach: "подбирает путь развития через сообщества и события"},
		},
		keyPhrases: []string{
			"Найди своих. Создай своё.",
			"Клуб начинается с одного шага",
		},
		cityTips: map[string][]string{
			"алматы": {"В Алматы активнее всего спортивные и горные клубы", "Популярные места встреч: парки и коворкинги в центре"},
			"астана": {"В Астане быстро растут профессиональные сообщества", "Многие клубы встречаются в библиотеках и коворкингах"},
		},
		interestMap: map[string]string{
			"спорт":     "Спорт",
			"футбол":    "Спорт",
			"бег":       "Спорт",
			"йога":      "Спорт",
			"it":        "Профессия",
			"музыка":    "Культура",
			"кино":      "Культура",
			"книги":     "Обучение",
			"языки":     "Обучение",
			"рисование": "Хобби и творчество",
		},
	}
}

// Platform returns the platform facts.
func (b *Base) Platform() PlatformInfo { return b.platform }

// Categories returns the canonical club categories.
func (b *Base) Categories() []Category { return b.categories }

// Instruction looks up a how-to by name.
func (b *Base) Instruction(name string) (Instruction, bool) {
	in, ok := b.instructions[name]
	return in, ok
}

// Values returns the platform value propositions.
func (b *Base) Values() []string { return b.values }

// SuccessStories returns community success stories.
func (b *Base) SuccessStories() []SuccessStory { return b.stories }

// FAQ returns the canned question/answer pairs.
func (b *Base) FAQ() []FAQEntry { return b.faq }

// StyleFor returns the communication style for an agent, falling back
// to the orchestrator's style for unknown agents.
func (b *Base) StyleFor(agent string) Style {
	if s, ok := b.styles[agent]; ok {
		return s
	}
	return b.styles["orchestrator"]
}

// KeyPhrases returns the platform's signature phrases.
func (b *Base) KeyPhrases() []string { return b.keyPhrases }

// LocalTips returns recommendations for a city, if any are known.
// City matching is case-insensitive on the lowercase key.
func (b *Base) LocalTips(cityLower string) []string {
	return b.cityTips[cityLower]
}

// CategoriesForInterests maps user interests onto category names,
// deduplicated, preserving interest order.
func (b *Base) CategoriesForInterests(interests []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, interest := range interests {
		if cat, ok := b.interestMap[interest]; ok && !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	return out
}
