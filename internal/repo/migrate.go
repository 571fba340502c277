package repo

import (
	"gorm.io/gorm"

	"jobboard/internal/domain"
)

// Migrate creates the three collections, including the (job_id, user_id)
// unique index the application lifecycle depends on.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Account{}, &domain.Job{}, &domain.Application{})
}
