// Command seed-db loads demo catalog data, coupons, and a test user with an
// API key into the database. Safe to re-run: everything is upserted.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oakrise/shopcart/internal/storage/postgres"
)

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

type variantJSON struct {
	ID    string          `json:"id"`
	Kind  string          `json:"kind"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type catalogJSON struct {
	Products []productJSON `json:"products"`
	Variants []variantJSON `json:"variants"`
}

func main() {
	var (
		databaseURL  string
		catalogFile  string
		apiKey       string
		apiKeyPepper string
		userEmail    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or SHOP_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SHOP_API_KEY_PEPPER env)")
	flag.StringVar(&userEmail, "user-email", "demo@example.com", "email for the seeded demo user")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SHOP_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or SHOP_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SHOP_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, apiKey, apiKeyPepper, userEmail); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, apiKey, pepper, userEmail string) error {
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

	if err := seedCatalog(ctx, pool, catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedUserWithKey(ctx, pool, userEmail, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed demo user")
	}

	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var cat catalogJSON
	if err := json.Unmarshal(data, &cat); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(cat.Products)))

	const upsertProduct = `
INSERT INTO products (id, name, price, category)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET name = $2, price = $3, category = $4`

	for _, p := range cat.Products {
		if _, err := pool.Exec(ctx, upsertProduct, p.ID, p.Name, p.Price, p.Category); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	slog.Info("upserting variants", slog.Int("count", len(cat.Variants)))

	const upsertVariant = `
INSERT INTO variants (id, kind, name, price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (kind, name) DO UPDATE SET price = $4`

	for _, v := range cat.Variants {
		if _, err := pool.Exec(ctx, upsertVariant, v.ID, v.Kind, v.Name, v.Price); err != nil {
			return errors.Wrapf(err, "upsert variant %s/%s", v.Kind, v.Name)
		}
		slog.Info("upserted variant", slog.String("kind", v.Kind), slog.String("name", v.Name))
	}

	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo coupons")

	coupons := []struct {
		code     string
		discount decimal.Decimal
		minimum  decimal.Decimal
		expired  bool
	}{
		{code: "WELCOME200", discount: decimal.NewFromInt(200), minimum: decimal.NewFromInt(400)},
		{code: "FESTIVE500", discount: decimal.NewFromInt(500), minimum: decimal.NewFromInt(1000)},
		{code: "OLDTIMES50", discount: decimal.NewFromInt(50), expired: true},
	}

	const upsertCoupon = `
INSERT INTO coupons (code, discount_amount, minimum_amount, is_expired)
VALUES ($1, $2, $3, $4)
ON CONFLICT (code) DO UPDATE SET discount_amount = $2, minimum_amount = $3, is_expired = $4`

	for _, c := range coupons {
		if _, err := pool.Exec(ctx, upsertCoupon, c.code, c.discount, c.minimum, c.expired); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.code)
		}
		slog.Info("upserted coupon", slog.String("code", c.code))
	}

	return nil
}

func seedUserWithKey(ctx context.Context, pool *pgxpool.Pool, email, apiKey, pepper string) error {
	slog.Info("seeding demo user", slog.String("email", email))

	const upsertUser = `
INSERT INTO users (id, email, name, is_mail_verified)
VALUES ('demo-user', $1, 'Demo User', TRUE)
ON CONFLICT (email) DO UPDATE SET is_mail_verified = TRUE
RETURNING id`

	var userID string
	if err := pool.QueryRow(ctx, upsertUser, email).Scan(&userID); err != nil {
		return errors.Wrap(err, "upsert demo user")
	}

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	const upsertKey = `
INSERT INTO api_keys (id, key_hash, user_id, name, active)
VALUES ('demo-key', $1, $2, 'Demo test key', TRUE)
ON CONFLICT (id) DO UPDATE SET key_hash = $1, user_id = $2, active = TRUE`

	if _, err := pool.Exec(ctx, upsertKey, keyHash, userID); err != nil {
		return errors.Wrap(err, "upsert demo API key")
	}

	slog.Info("upserted API key", slog.String("id", "demo-key"), slog.String("user_id", userID))
	return nil
}
