package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// SeedFile lists owners and the items each of them offers.
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	Name  string     `yaml:"name"`
	Email string     `yaml:"email"`
	Items []SeedItem `yaml:"items"`
}

type SeedItem struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath = flag.String("seed", "configs/seed.yaml", "path to seed.yaml")
		dbPath   = flag.String("db", "./data/shareit.db", "path to sqlite db")
	)
	flag.Parse()

	f, err := os.Open(*seedPath)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	file, err := parseSeed(f)
	if err != nil {
		return err
	}

	db, err := database.Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: *dbPath}, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, items, err := seed(ctx, db, file, &logger)
	if err != nil {
		return err
	}

	fmt.Printf("done: users=%d items=%d\n", users, items)
	return nil
}

func parseSeed(r io.Reader) (*SeedFile, error) {
	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(file.Users) == 0 {
		return nil, fmt.Errorf("no users in seed file")
	}
	return &file, nil
}

// seed creates missing users and their items. Users already present by
// email are reused and their items are not added again.
func seed(ctx context.Context, repo domain.Repository, file *SeedFile, logger *zerolog.Logger) (users, items int, err error) {
	userSvc := service.NewUserService(repo, logger)
	itemSvc := service.NewItemService(repo, logger)

	for _, u := range file.Users {
		if _, err := repo.GetUserByEmail(ctx, u.Email); err == nil {
			logger.Info().Str("email", u.Email).Msg("user exists, skipping")
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return users, items, fmt.Errorf("get %s: %w", u.Email, err)
		}

		created, err := userSvc.Create(ctx, u.Name, u.Email)
		if err != nil {
			return users, items, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		users++

		for _, it := range u.Items {
			_, err := itemSvc.Create(ctx, created.ID, models.ItemCreate{
				Name:        it.Name,
				Description: it.Description,
				Available:   it.Available,
			})
			if err != nil {
				return users, items, fmt.Errorf("create item %s: %w", it.Name, err)
			}
			items++
		}
	}
	return users, items, nil
}
