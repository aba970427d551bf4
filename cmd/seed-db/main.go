// Command seed-db loads the starter catalog, site content, and an admin
// account into the document store. Safe to re-run: catalog and content
// documents are upserted under fixed IDs, and the admin account is only
// created when the email is not already registered.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/maktabat-alamal/storefront/internal/docstore"
	"github.com/maktabat-alamal/storefront/internal/domain/auth"
	"github.com/maktabat-alamal/storefront/internal/domain/category"
	"github.com/maktabat-alamal/storefront/internal/domain/content"
	"github.com/maktabat-alamal/storefront/internal/domain/product"
	"github.com/maktabat-alamal/storefront/internal/storage/postgres"
)

type catalogJSON struct {
	Categories []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"categories"`
	Products []struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		Stock       int             `json:"stock"`
		Category    string          `json:"category"`
		Images      []string        `json:"images"`
	} `json:"products"`
	AboutUs   content.AboutUs   `json:"aboutUs"`
	ContactUs content.ContactUs `json:"contactUs"`
}

func main() {
	var (
		databaseURL   string
		catalogFile   string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&adminEmail, "admin-email", "", "admin account email (or AMAL_SEED_ADMIN_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or AMAL_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("AMAL_SEED_ADMIN_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("AMAL_SEED_ADMIN_PASSWORD")
	}
	if adminEmail != "" && adminPassword == "" {
		slog.Error("admin password is required when seeding an admin account: set --admin-password or AMAL_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	docs := postgres.NewDocumentStore(pool)

	catalog, err := readCatalog(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog")
	}

	if err := seedCatalog(ctx, docs, catalog); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedContent(ctx, docs, catalog); err != nil {
		return errors.Wrap(err, "seed content")
	}

	if adminEmail != "" {
		if err := seedAdmin(ctx, docs, adminEmail, adminPassword); err != nil {
			return errors.Wrap(err, "seed admin account")
		}
	}

	return nil
}

func readCatalog(path string) (*catalogJSON, error) {
	slog.Info("reading catalog file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog file")
	}

	var catalog catalogJSON
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, errors.Wrap(err, "parse catalog JSON")
	}
	return &catalog, nil
}

func seedCatalog(ctx context.Context, docs docstore.Store, catalog *catalogJSON) error {
	slog.Info("upserting categories", slog.Int("count", len(catalog.Categories)))

	for _, c := range catalog.Categories {
		err := docs.Set(ctx, category.Collection, c.ID, category.Category{
			Name:        c.Name,
			Description: c.Description,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", c.ID)
		}

		slog.Info("upserted category", slog.String("id", c.ID), slog.String("name", c.Name))
	}

	slog.Info("upserting products", slog.Int("count", len(catalog.Products)))

	for _, p := range catalog.Products {
		err := docs.Set(ctx, product.Collection, p.ID, product.Product{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			Category:    p.Category,
			Images:      p.Images,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedContent(ctx context.Context, docs docstore.Store, catalog *catalogJSON) error {
	slog.Info("upserting site content")

	repo := content.NewRepository(docs)
	if err := repo.SaveAboutUs(ctx, catalog.AboutUs); err != nil {
		return errors.Wrap(err, "save about us")
	}
	if err := repo.SaveContactUs(ctx, catalog.ContactUs); err != nil {
		return errors.Wrap(err, "save contact us")
	}
	return nil
}

func seedAdmin(ctx context.Context, docs docstore.Store, email, password string) error {
	accounts := auth.NewAccounts(docs)

	existing, err := accounts.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, auth.ErrAccountNotFound) {
		return errors.Wrap(err, "look up admin account")
	}
	if existing != nil {
		slog.Info("admin account already exists", slog.String("email", email))
		if !existing.Admin {
			if err := accounts.SetAdmin(ctx, existing.ID, true); err != nil {
				return errors.Wrap(err, "grant admin")
			}
			slog.Info("granted admin to existing account", slog.String("email", email))
		}
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	id, err := accounts.Create(ctx, auth.Account{
		Email:        email,
		PasswordHash: string(hash),
		Admin:        true,
	})
	if err != nil {
		return errors.Wrap(err, "create admin account")
	}

	slog.Info("created admin account", slog.String("id", id), slog.String("email", email))
	return nil
}
