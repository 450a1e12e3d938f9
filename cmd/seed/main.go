package main

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pokrew/internal/config"
	"pokrew/internal/db"
	"pokrew/internal/model"
	"pokrew/internal/repository"
)

// SeedUser describes a member to create if missing.
type SeedUser struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

var seedUsers = []SeedUser{
	{Name: "Club Admin", Email: "admin@pokrew.local", Password: "admin123", IsAdmin: true},
	{Name: "Demo Member", Email: "member@pokrew.local", Password: "member123"},
}

var seedProducts = []model.Product{
	{Name: "Poker Chip Set", Price: 500, Description: "300-piece clay chip set", Link: "https://example.com/chip-set", IsActive: true},
	{Name: "Club Hoodie", Price: 750, Description: "Embroidered club hoodie", Link: "https://example.com/hoodie", IsActive: true},
	{Name: "Tournament Entry", Price: 1500, Description: "Entry to the monthly tournament", IsActive: true},
}

func main() {
	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.PointHistory{},
		&model.Request{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)

	created, err := seedMembers(ctx, userRepo, seedUsers)
	if err != nil {
		log.Fatalf("Failed to seed members: %v", err)
	}

	seeded, err := seedCatalog(ctx, productRepo, seedProducts)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New members created: %d", created)
	log.Printf("  - New products created: %d", seeded)
}

// seedMembers creates the listed members if they do not already exist.
// Existing members are left untouched so their balances survive reseeds.
func seedMembers(ctx context.Context, repo repository.UserRepository, users []SeedUser) (int, error) {
	created := 0
	for _, seed := range users {
		existing, err := repo.FindByEmail(ctx, seed.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}
		if existing != nil {
			log.Printf("Member %s already exists, skipping", seed.Email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return created, err
		}

		user := &model.User{
			Name:            seed.Name,
			Email:           seed.Email,
			PasswordHash:    string(hash),
			Points:          model.DefaultStartingPoints,
			AvailablePoints: model.DefaultStartingPoints,
			IsAdmin:         seed.IsAdmin,
		}
		if err := repo.Create(ctx, user); err != nil {
			return created, err
		}
		log.Printf("Created member %s (admin=%v)", seed.Email, seed.IsAdmin)
		created++
	}
	return created, nil
}

// seedCatalog creates the listed products if absent, matched by name.
func seedCatalog(ctx context.Context, repo repository.ProductRepository, products []model.Product) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	byName := make(map[string]bool, len(existing))
	for _, p := range existing {
		byName[p.Name] = true
	}

	seeded := 0
	for _, product := range products {
		if byName[product.Name] {
			log.Printf("Product %q already exists, skipping", product.Name)
			continue
		}
		p := product
		if err := repo.Create(ctx, &p); err != nil {
			return seeded, err
		}
		log.Printf("Created product %q (price %d)", p.Name, p.Price)
		seeded++
	}
	return seeded, nil
}
