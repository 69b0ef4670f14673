package workflow

import (
	"fmt"

	"github.com/fanclubkz/consultant/internal/domain"
)

// minDescriptionLen is the minimum accepted club description length in
// runes.
const minDescriptionLen = 100

var stepPrompts = map[domain.Step]string{
	domain.StepName: "Отлично, создаём клуб! 🎉\n\n" +
		"Вопрос 1 из 7. Как будет называться ваш клуб?",
	domain.StepDescription: "Вопрос 2 из 7. Расскажите, чем будет заниматься клуб. " +
		"Опишите подробно (минимум 100 символов): чем занимаетесь, для кого, как часто встречаетесь.",
	domain.StepCategory: "Вопрос 3 из 7. К какой категории отнесём клуб? " +
		"Например: Спорт, Хобби и творчество, Профессия, Обучение, Культура.",
	domain.StepCity:  "Вопрос 4 из 7. В каком городе будет работать клуб?",
	domain.StepEmail: "Вопрос 5 из 7. Укажите контактный email для связи с организатором.",
	domain.StepPhone: "Вопрос 6 из 7. Укажите контактный телефон. " +
		"Если не хотите указывать, напишите «нет».",
	domain.StepAddress: "Вопрос 7 из 7. Где будут проходить встречи? " +
		"Если адреса пока нет, напишите «нет».",
}

var stepHints = map[domain.Step]string{
	domain.StepName:        "Подойдёт любое название, его можно будет изменить позже.",
	domain.StepDescription: "Нужно минимум 100 символов: расскажите о занятиях, аудитории и формате встреч.",
	domain.StepCategory:    "Назовите категорию словами, например «Спорт» или «Обучение».",
	domain.StepCity:        "Просто напишите город, например «Алматы».",
	domain.StepEmail:       "Нужен действующий адрес с символом @.",
	domain.StepPhone:       "Телефон необязателен: напишите номер или «нет».",
	domain.StepAddress:     "Адрес необязателен: напишите место встреч или «нет».",
}

const (
	textDescriptionTooShort = "Описание пока слишком короткое: нужно минимум 100 символов, сейчас %d. " +
		"Добавьте деталей: чем занимаетесь, для кого клуб, как проходят встречи."
	textEmailInvalid = "Похоже, в адресе опечатка: email должен содержать символ @. Попробуйте ещё раз."
	textEmptyAnswer  = "Я не увидел ответа. %s"
	textCanceled     = "Хорошо, создание клуба отменено. Если захотите вернуться к этому, просто напишите «создать клуб»."
	textPersistError = "К сожалению, не получилось сохранить клуб из-за технической ошибки. " +
		"Попробуйте начать заново чуть позже: напишите «создать клуб»."
)

func successText(club *domain.ClubRecord) string {
	return fmt.Sprintf("Поздравляю, клуб создан! 🎉\n\n"+
		"«%s» (%s, %s)\n"+
		"ID клуба: %s\n"+
		"Контакт: %s\n\n"+
		"Страница клуба: https://fan-club.kz/clubs/%s\n"+
		"Теперь можно приглашать участников и планировать первую встречу!",
		club.Name, club.Category, club.City, club.ID, club.Email, club.ID)
}
