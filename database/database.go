package database

import (
	"fmt"
	"log"

	config "github.com/expertlink/expert_marketplace/configs"
	"github.com/expertlink/expert_marketplace/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		// Maps driver unique-violation errors onto gorm.ErrDuplicatedKey so
		// the handlers' errors.Is checks can answer 409.
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Expert{},
		&models.Category{},
		&models.Service{},
		&models.AvailabilitySlot{},
		&models.Booking{},
		&models.Payment{},
		&models.Review{},
		&models.Message{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}

var defaultCategories = []string{
	"Career Coaching",
	"Software & Technology",
	"Finance & Investing",
	"Health & Wellness",
	"Legal Advice",
	"Marketing & Growth",
}

func SeedCategories() {
	var count int64
	if err := DB.Model(&models.Category{}).Count(&count).Error; err != nil {
		log.Printf("🔥 Failed to check categories: %v", err)
		return
	}
	if count > 0 {
		return
	}

	for i, name := range defaultCategories {
		category := models.Category{Name: name, SortOrder: i + 1}
		if err := DB.Create(&category).Error; err != nil {
			log.Printf("🔥 Failed to seed category %q: %v", name, err)
		}
	}
	log.Println("✅ Default categories seeded")
}
