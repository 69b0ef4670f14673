package domain

import "time"

// Defaults applied to a club when the creation flow completes without
// the user supplying these values explicitly.
const (
	DefaultActivities     = "Регулярные встречи и мероприятия"
	DefaultTargetAudience = "Все желающие"
	DefaultTags           = "клуб, сообщество"
	PlaceholderPhone      = "+77010000001"
	PlaceholderAddress    = "Алматы, центр города"
)

// ClubRecord is a club submitted to persistence by the creation flow.
type ClubRecord struct {
	ID             string
	Name           string
	Description    string
	Category       string
	City           string
	Email          string
	Phone          string
	Address        string
	Activities     string
	TargetAudience string
	Tags           string
	OwnerID        string
	CreatedAt      time.Time
}
