package repositories

import (
	"github.com/surakshit-dev/surakshit/internal/core"
	"github.com/surakshit-dev/surakshit/internal/database"
	"github.com/surakshit-dev/surakshit/internal/database/models"
)

type gormApprovalTokenRepository struct {
	database.Repository[string, models.ApprovalToken, core.DB]
	db core.DB
}

func NewApprovalTokenRepository(db core.DB) *gormApprovalTokenRepository {
	err := db.AutoMigrate(&models.ApprovalToken{})
	if err != nil {
		panic(err)
	}
	return &gormApprovalTokenRepository{
		db:         db,
		Repository: database.NewGormRepository[string, models.ApprovalToken](db),
	}
}

func (g *gormApprovalTokenRepository) ReadByTokenHash(hash string) (models.ApprovalToken, error) {
	var token models.ApprovalToken
	err := g.db.First(&token, "token_hash = ?", hash).Error
	return token, err
}
