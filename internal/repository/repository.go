package repository

import (
	"github.com/okhomenko/plantkeeper/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User      UserRepository
	Plant     PlantRepository
	CareEvent CareEventRepository
	Token     TokenRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db),
		Plant:     NewPlantRepository(db),
		CareEvent: NewCareEventRepository(db),
		Token:     NewTokenRepository(db),
	}
}
