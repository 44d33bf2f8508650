package repositories

import (
	"github.com/surakshit-dev/surakshit/internal/core"
	"github.com/surakshit-dev/surakshit/internal/database"
	"github.com/surakshit-dev/surakshit/internal/database/models"
)

type gormResponseRepository struct {
	database.Repository[string, models.RemediationResponse, core.DB]
	db core.DB
}

func NewResponseRepository(db core.DB) *gormResponseRepository {
	err := db.AutoMigrate(&models.RemediationResponse{})
	if err != nil {
		panic(err)
	}
	return &gormResponseRepository{
		db:         db,
		Repository: database.NewGormRepository[string, models.RemediationResponse](db),
	}
}

func (g *gormResponseRepository) ReadBySessionID(sessionID string) (models.RemediationResponse, error) {
	var response models.RemediationResponse
	err := g.db.First(&response, "session_id = ?", sessionID).Error
	return response, err
}
