package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/resources"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// main seeds a few reference records and prints a development admin token.
// Usage: go run ./cmd/seed [-token-only]
// This is a standalone CLI tool, not part of the main application
func main() {
	tokenOnly := flag.Bool("token-only", false, "only print an admin token")
	flag.Parse()

	fmt.Println("════════════════════════════════════════════════════════════")
	fmt.Println("MODEVA COMMERCE - Development Seeder")
	fmt.Println("════════════════════════════════════════════════════════════")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	admin := models.Principal{
		ID:       primitive.NewObjectID().Hex(),
		Platform: models.PlatformAdmin,
		Role:     "super_admin",
	}

	if !*tokenOnly {
		ctx, cancel := config.WithCustomTimeout(30 * time.Second)
		defer cancel()

		st, err := store.Open(ctx, cfg.Database, logger.NewNop())
		if err != nil {
			log.Fatalf("Failed to open store: %v", err)
		}
		defer func() { _ = st.Close(context.Background()) }()
		log.Println("✓ Connected to document store")

		if err := seed(ctx, st, admin); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	jwt, err := services.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	token, err := jwt.Generate(admin)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println()
	fmt.Println("════════════════════════════════════════════════════════════")
	fmt.Println("✅ Done")
	fmt.Println("════════════════════════════════════════════════════════════")
	fmt.Printf("Admin ID: %s\n", admin.ID)
	fmt.Printf("Expires:  %s\n", cfg.Auth.JWTExpiry)
	fmt.Printf("Token:    %s\n", token)
	fmt.Println()
	fmt.Println("Send it as 'Authorization: Bearer <token>' to /api/v1/admin/...")
}

func seed(ctx context.Context, st store.Store, admin models.Principal) error {
	registry := resources.Default()
	lg := logger.NewNop()
	resolver := services.NewDependentResolver(st, registry, lg)
	svc := func(name string) *services.ResourceService {
		return services.NewResourceService(st, registry.MustGet(name), resolver, lg)
	}

	state, err := svc(resources.State).Create(ctx, admin, map[string]any{"stateName": "Karnataka"})
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	stateID, _ := state.ID()
	log.Printf("✓ State %s", stateID.Hex())

	cities := []any{
		map[string]any{"cityName": "Bengaluru", "stateId": stateID.Hex(), "pincode": "560001"},
		map[string]any{"cityName": "Mysuru", "stateId": stateID.Hex(), "pincode": "570001"},
	}
	n, err := svc(resources.City).CreateMany(ctx, admin, cities)
	if err != nil {
		return fmt.Errorf("cities: %w", err)
	}
	log.Printf("✓ %d cities", n)

	categories := svc(resources.Category)
	parent, err := categories.Create(ctx, admin, map[string]any{"name": "Clothing"})
	if err != nil {
		return fmt.Errorf("category: %w", err)
	}
	parentID, _ := parent.ID()
	n, err = categories.CreateMany(ctx, admin, []any{
		map[string]any{"name": "Shirts", "parentCategoryId": parentID.Hex()},
		map[string]any{"name": "Trousers", "parentCategoryId": parentID.Hex()},
	})
	if err != nil {
		return fmt.Errorf("sub categories: %w", err)
	}
	log.Printf("✓ 1 parent category, %d sub categories", n)
	return nil
}
