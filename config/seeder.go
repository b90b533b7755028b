package config

import (
	"errors"
	"log"

	"ecofinds_backend/models"
	"ecofinds_backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func SeedAll(db *gorm.DB) error {
	if err := SeedCategories(db); err != nil {
		return err
	}
	if err := SeedUsers(db); err != nil {
		return err
	}
	return SeedProducts(db)
}

func SeedCategories(db *gorm.DB) error {
	for _, category := range models.DefaultCategories {
		c := category
		if err := db.Where(models.Category{Slug: c.Slug}).FirstOrCreate(&c).Error; err != nil {
			log.Printf("Failed to seed category %s: %v", c.Slug, err)
			return err
		}
	}
	return nil
}

func SeedUsers(db *gorm.DB) error {
	log.Println("🌱 Seeding users...")

	password, err := utils.HashPassword("password123")
	if err != nil {
		return err
	}

	users := []models.User{
		{Email: "seller@ecofinds.dev", Password: password, Name: "Demo Seller", Location: "Pune", Role: models.RoleUser},
		{Email: "buyer@ecofinds.dev", Password: password, Name: "Demo Buyer", Location: "Mumbai", Role: models.RoleUser},
	}

	for _, user := range users {
		var existingUser models.User
		err := db.Where("email = ?", user.Email).First(&existingUser).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&user).Error; err != nil {
				log.Printf("Failed to seed user %s: %v", user.Email, err)
				return err
			}
			log.Printf("User seeded: %s (ID: %d)", user.Email, user.ID)
		case err != nil:
			return err
		default:
			log.Printf("User already exists: %s", user.Email)
		}
	}

	log.Println("✅ Seeding complete.")
	return nil
}

func SeedProducts(db *gorm.DB) error {
	var seller models.User
	if err := db.Where("email = ?", "seller@ecofinds.dev").First(&seller).Error; err != nil {
		log.Printf("Skipping product seed, demo seller missing: %v", err)
		return nil
	}

	var count int64
	db.Model(&models.Product{}).Where("seller_id = ?", seller.ID).Count(&count)
	if count > 0 {
		log.Printf("Products already seeded for %s", seller.Email)
		return nil
	}

	image := "https://res.cloudinary.com/demo/image/upload/sample.jpg"
	products := []models.Product{
		{
			SellerID: seller.ID, Title: "Vintage Wooden Chair", Description: "Solid teak chair, minor scratches on the legs.",
			Price: decimal.NewFromInt(150), Category: "furniture", Condition: "good",
			ImageURL: image, Images: []string{image}, LocalPickup: true, Stock: 1, Status: models.ProductActive,
		},
		{
			SellerID: seller.ID, Title: "Used Paperback Bundle", Description: "Ten assorted novels in readable condition.",
			Price: decimal.NewFromInt(25), Category: "books", Condition: "fair",
			ImageURL: image, Images: []string{image}, Shippable: true, Stock: 3, Status: models.ProductActive,
		},
		{
			SellerID: seller.ID, Title: "Road Bike Helmet", Description: "Barely worn helmet, size M, no impacts.",
			Price: decimal.NewFromFloat(40.5), Category: "sports", Condition: "excellent",
			ImageURL: image, Images: []string{image}, LocalPickup: true, Shippable: true, Stock: 1, Status: models.ProductActive,
		},
	}

	if err := db.Create(&products).Error; err != nil {
		log.Printf("Failed to seed products: %v", err)
		return err
	}
	log.Printf("Seeded %d products", len(products))
	return nil
}
