// Package store provides club and audit persistence.
package store

import (
	"context"

	"github.com/fanclubkz/consultant/internal/domain"
)

// SearchFilter narrows a club search. Empty fields are ignored.
type SearchFilter struct {
	Query    string
	Category string
	City     string
	Limit    int
}

// Repository is the persistence boundary of the service.
type Repository interface {
	CreateClub(ctx context.Context, club *domain.ClubRecord) (string, error)
	GetClub(ctx context.Context, id string) (*domain.ClubRecord, error)
	SearchClubs(ctx context.Context, filter SearchFilter) ([]*domain.ClubRecord, error)
	AppendTurn(ctx context.Context, turn *domain.ChatTurn) error
	RecentTurns(ctx context.Context, limit int) ([]*domain.ChatTurn, error)
	Ping(ctx context.Context) error
	Close() error
}
