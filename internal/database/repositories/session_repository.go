package repositories

import (
	"github.com/surakshit-dev/surakshit/internal/core"
	"github.com/surakshit-dev/surakshit/internal/database"
	"github.com/surakshit-dev/surakshit/internal/database/models"

	"github.com/surakshit-dev/surakshit/internal/dtos"
)

type gormSessionRepository struct {
	database.Repository[string, models.Session, core.DB]
	db core.DB
}

func NewSessionRepository(db core.DB) *gormSessionRepository {
	err := db.AutoMigrate(&models.Session{})
	if err != nil {
		panic(err)
	}
	return &gormSessionRepository{
		db:         db,
		Repository: database.NewGormRepository[string, models.Session](db),
	}
}

func (g *gormSessionRepository) CountByStatus(status dtos.SessionStatus) (int64, error) {
	var count int64
	err := g.db.Model(&models.Session{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (g *gormSessionRepository) ListByFindingID(findingID string) ([]models.Session, error) {
	var sessions []models.Session
	err := g.db.Where("finding_id = ?", findingID).Find(&sessions).Error
	return sessions, err
}
