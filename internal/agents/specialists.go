package agents

// Agent names known to the platform.
const (
	Orchestrator      = "orchestrator"
	ClubSpecialist    = "club_specialist"
	SupportSpecialist = "support_specialist"
	MentorSpecialist  = "mentor_specialist"
)

// DefaultRegistry builds the registry with the platform's four agents.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(Descriptor{
		Name:        Orchestrator,
		Description: "Главный консультант: приветствует, отвечает на общие вопросы и направляет к специалистам",
		SystemPrompt: "Ты — главный консультант платформы «ЦЕНТР СОБЫТИЙ» (fan-club.kz), " +
			"казахстанской платформы клубов и сообществ по интересам. " +
			"Отвечай дружелюбно, по делу и на «вы». Помогай пользователю найти клуб, " +
			"создать свой или решить вопрос по платформе. Если вопрос узкий, отвечай сам, " +
			"опираясь на предоставленный контекст.",
	})

	r.Register(Descriptor{
		Name:        ClubSpecialist,
		Description: "Специалист по созданию клубов и работе организаторов",
		SystemPrompt: "Ты — специалист платформы «ЦЕНТР СОБЫТИЙ» по созданию клубов. " +
			"Помогаешь пользователю пройти путь от идеи до работающего клуба: название, " +
			"описание, категория, город, контакты. Давай конкретные и вдохновляющие советы.",
		Tools: []ToolSpec{
			{
				Name:        "search_clubs",
				Description: "Поиск клубов по запросу, категории и городу",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query":    map[string]any{"type": "string", "description": "Поисковый запрос"},
						"category": map[string]any{"type": "string", "description": "Категория клуба"},
						"city":     map[string]any{"type": "string", "description": "Город"},
					},
				},
			},
			{
				Name:        "create_club",
				Description: "Создание клуба с собранными данными",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"category":    map[string]any{"type": "string"},
						"city":        map[string]any{"type": "string"},
						"email":       map[string]any{"type": "string"},
					},
					"required": []string{"name", "description", "category", "city", "email"},
				},
			},
		},
	})

	r.Register(Descriptor{
		Name:        SupportSpecialist,
		Description: "Специалист поддержки: технические вопросы и проблемы с платформой",
		SystemPrompt: "Ты — специалист поддержки платформы «ЦЕНТР СОБЫТИЙ». " +
			"Решай проблему пользователя по шагам, спокойно и чётко. " +
			"Если проблема не решается, подскажи, как связаться с командой поддержки.",
		Tools: []ToolSpec{
			{
				Name:        "search_knowledge_base",
				Description: "Поиск ответа в базе знаний платформы",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
					},
					"required": []string{"question"},
				},
			},
		},
	})

	r.Register(Descriptor{
		Name:        MentorSpecialist,
		Description: "Ментор по развитию: подбирает клубы и события под цели пользователя",
		SystemPrompt: "Ты — ментор платформы «ЦЕНТР СОБЫТИЙ». Помогаешь пользователю развиваться " +
			"через сообщества: подбираешь клубы, события и направления под его цели и интересы. " +
			"Поддерживай и предлагай конкретные следующие шаги.",
		Tools: []ToolSpec{
			{
				Name:        "search_clubs_for_development",
				Description: "Подбор клубов под цель развития",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"goal": map[string]any{"type": "string", "description": "Цель развития"},
						"city": map[string]any{"type": "string"},
					},
					"required": []string{"goal"},
				},
			},
		},
	})

	return r
}
