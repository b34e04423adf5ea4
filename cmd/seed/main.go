package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/astimch/go-referrals/config"
	"github.com/astimch/go-referrals/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	codec, err := helpers.NewTokenCodec(cfg.TokenSecret, cfg.TokenAlgorithm)
	if err != nil {
		log.Fatalf("failed to init token codec: %v", err)
	}

	email := "demo@example.com"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id
	`, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%d email=%s password=%s\n", id, email, password)

	// Give the demo user a referral code valid for a day
	code, err := codec.Encode(id, 24*time.Hour)
	if err != nil {
		log.Fatalf("failed to generate referral code: %v", err)
	}
	var codeID int64
	if err := db.QueryRow(`
		INSERT INTO referral_codes (user_id, code)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET code = EXCLUDED.code, updated_at = now()
		RETURNING id
	`, id, code).Scan(&codeID); err != nil {
		log.Fatalf("failed to seed referral code: %v", err)
	}
	fmt.Printf("seeded referral code: id=%d code=%s\n", codeID, code)
}
