package main

import (
	"context"
	"log"
	"os"

	"membership_webapp/internal/db"
	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"
)

func main() {
	// expects DATABASE_URL env var
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewMemberRepository(pool)
	ctx := context.Background()

	username := "testmember"

	existing, err := repo.GetByUsername(ctx, username)
	var m *domain.Member
	if err == nil {
		m = existing
		log.Printf("member already exists id=%d\n", m.ID)
	} else {
		m = &domain.Member{
			Username: username,
			Tier:     domain.TierBasic,
		}

		if err := repo.Create(ctx, m); err != nil {
			log.Fatalf("create member failed: %v", err)
		}

		log.Printf("member created id=%d\n", m.ID)
	}

	// verify read
	m2, err := repo.GetByUsername(ctx, m.Username)
	if err != nil {
		log.Fatalf("get by username failed: %v", err)
	}
	log.Printf("fetched member id=%d username=%s tier=%s created_at=%v\n", m2.ID, m2.Username, m2.Tier, m2.CreatedAt)

	// initialize JWT and print token
	service.InitJWT()
	token, err := service.GenerateJWT(m2.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
