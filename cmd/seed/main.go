package main

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"openlens/internal/config"
	"openlens/internal/db"
	"openlens/internal/logger"
	"openlens/internal/model"
	"openlens/internal/repository"
)

// seedUser is one local development account.
type seedUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

var seedUsers = []seedUser{
	{Username: "ada", Email: "ada@example.com", Password: "openlens-dev", FirstName: "Ada", LastName: "Lovelace"},
	{Username: "grace", Email: "grace@example.com", Password: "openlens-dev", FirstName: "Grace", LastName: "Hopper"},
	{Username: "linus", Email: "linus@example.com", Password: "openlens-dev"},
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	log.Info().Msg("starting seed script")

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.SearchHistory{}); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	created := 0
	for _, su := range seedUsers {
		if _, err := userRepo.FindByEmail(ctx, su.Email); err == nil {
			log.Info().Str("email", su.Email).Msg("user already exists, skipping")
			continue
		} else if err != gorm.ErrRecordNotFound {
			log.Fatal().Err(err).Str("email", su.Email).Msg("look up user")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("hash password")
		}

		user := &model.User{
			Username:     su.Username,
			Email:        su.Email,
			PasswordHash: string(hash),
			FirstName:    su.FirstName,
			LastName:     su.LastName,
			IsActive:     true,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatal().Err(err).Str("email", su.Email).Msg("create user")
		}
		created++
	}

	log.Info().Int("created", created).Int("total", len(seedUsers)).Msg("seed complete")
}
