package config

import (
	"log"

	"ecofinds_backend/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// Migrate the schema
	err := db.AutoMigrate(models.AllModels()...)
	if err != nil {
		log.Printf("Failed to migrate database schema: %v", err)
		return err
	}

	log.Println("Database Migrations completed succesfully...")

	// Ensure categories are seeded even on normal migration
	return SeedCategories(db)
}

func ResetAndMigrate(db *gorm.DB) error {
	all := models.AllModels()

	// Drop in reverse so dependents go first
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			log.Printf("Failed to drop tables: %v", err)
			return err
		}
	}

	log.Println("All tables dropped successfully.")

	if err := db.AutoMigrate(all...); err != nil {
		log.Printf("Failed to auto migrate: %v", err)
		return err
	}

	if err := SeedAll(db); err != nil {
		return err
	}

	log.Println("Database reset and migration completed successfully.")
	return nil
}
