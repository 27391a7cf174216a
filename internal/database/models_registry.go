package database

import "brc/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.List{},
		&models.Submission{},
		&models.ReviewAction{},
	}
}
