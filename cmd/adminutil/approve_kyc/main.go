package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/ayodejiio/vestra/internal/config"
	"github.com/ayodejiio/vestra/internal/db"
)

func main() {
	email := flag.String("email", "", "Email of the user whose KYC to approve")
	flag.Parse()

	if *email == "" {
		log.Fatalf("usage: go run cmd/adminutil/approve_kyc/main.go -email user@example.com")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer pool.Close()

	ct, err := pool.Exec(ctx, `UPDATE users SET kyc_status = 'approved' WHERE email = $1`, *email)
	if err != nil {
		log.Fatalf("failed to approve KYC: %v", err)
	}
	if ct.RowsAffected() == 0 {
		log.Fatalf("no user found with email: %s", *email)
	}

	fmt.Printf("KYC approved for %s.\n", *email)
}
