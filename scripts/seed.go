// Command seed loads demo fixtures and issues an API key for the known customer.
//
//	go run ./scripts/seed.go -database-url "$DATABASE_URL"
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bilemo/bilemo/internal/auth"
	"github.com/bilemo/bilemo/internal/model"
	"github.com/bilemo/bilemo/internal/repository"
)

const (
	knownEmail = "customer01@email.com"
	knownName  = "Stamm Ltd"
	knownSiret = "12356894100055"

	extraCustomers   = 10
	productCount     = 16
	usersPerCustomer = 5
)

var (
	brands     = []string{"Apple", "Samsung", "Google", "Xiaomi", "OnePlus", "Sony", "Motorola", "Nokia"}
	models     = []string{"Pro", "Max", "Lite", "Ultra", "Mini", "Plus", "Edge", "Neo"}
	firstnames = []string{"Ada", "Grace", "Alan", "Linus", "Margaret", "Ken", "Barbara", "Dennis", "Frances", "Edsger"}
	lastnames  = []string{"Lovelace", "Hopper", "Turing", "Torvalds", "Hamilton", "Thompson", "Liskov", "Ritchie", "Allen", "Dijkstra"}
	companies  = []string{"Ltd", "SARL", "Group", "Telecom", "Mobile", "Distribution"}
)

type output struct {
	CustomerID string `json:"customer_id"`
	Email      string `json:"email"`
	KeyID      string `json:"key_id"`
	Key        string `json:"key"`
	KeyPrefix  string `json:"key_prefix"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		password    = flag.String("password", "password", "Password of every seeded customer")
		tier        = flag.String("tier", model.TierPartner, "Rate limit tier of the issued key (free, partner, unlimited)")
		reset       = flag.Bool("reset", false, "Drop and recreate the schema before seeding")
		format      = flag.String("format", "plain", "Output format: plain or json")
		minPrice    = flag.String("min-price", "199.99", "Lowest generated product price")
		maxPrice    = flag.String("max-price", "1299.99", "Highest generated product price")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if _, ok := model.TierConfigs[*tier]; !ok {
		fmt.Fprintln(os.Stderr, "invalid tier:", *tier)
		os.Exit(1)
	}

	prices, err := parsePriceRange(*minPrice, *maxPrice)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if *reset {
		if err := repo.ResetSchema(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "reset schema:", err)
			os.Exit(1)
		}
	}
	if _, err := repo.Migrate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}

	known, err := repo.GetCustomerByEmail(ctx, knownEmail)
	switch {
	case errors.Is(err, repository.ErrCustomerNotFound):
		known, err = loadFixtures(ctx, repo, *password, prices)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	case err != nil:
		fmt.Fprintln(os.Stderr, "lookup known customer:", err)
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "fixtures already loaded; issuing a new key")
	}

	generated, err := auth.GenerateAPIKey(auth.EnvLive)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate api key:", err)
		os.Exit(1)
	}

	apiKey := &model.APIKey{
		ID:            ulid.Make().String(),
		CustomerID:    known.ID,
		KeyHash:       generated.Hash,
		KeyPrefix:     generated.Prefix,
		RateLimitTier: *tier,
		Name:          "seed",
		CreatedAt:     time.Now().UTC(),
	}
	if err := repo.CreateAPIKey(ctx, apiKey); err != nil {
		fmt.Fprintln(os.Stderr, "create api key:", err)
		os.Exit(1)
	}

	out := output{
		CustomerID: known.ID,
		Email:      known.Email,
		KeyID:      apiKey.ID,
		Key:        generated.Plaintext,
		KeyPrefix:  apiKey.KeyPrefix,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Key)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// loadFixtures creates the catalog, the known customer plus generated ones,
// and their users. It returns the known customer.
func loadFixtures(ctx context.Context, repo *repository.Repository, password string, prices priceRange) (*model.Customer, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()

	for i := range productCount {
		brand := brands[i%len(brands)]
		p := &model.Product{
			ID:          ulid.Make().String(),
			Name:        fmt.Sprintf("%s %s %d", brand, models[rand.IntN(len(models))], 10+i),
			Description: fmt.Sprintf("%s smartphone, %d GB storage, %.1f\" display.", brand, 64<<rand.IntN(4), 5.5+rand.Float64()),
			Quantity:    rand.IntN(500),
			Price:       prices.random(),
			PublishedAt: now.Add(-time.Duration(rand.IntN(365*24)) * time.Hour),
		}
		if err := repo.CreateProduct(ctx, p); err != nil {
			return nil, fmt.Errorf("create product %s: %w", p.Name, err)
		}
	}

	customers := make([]*model.Customer, 0, extraCustomers+1)
	customers = append(customers, &model.Customer{
		ID:           ulid.Make().String(),
		Email:        knownEmail,
		Name:         knownName,
		Siret:        knownSiret,
		PasswordHash: hash,
		CreatedAt:    now,
	})
	for i := range extraCustomers {
		customers = append(customers, &model.Customer{
			ID:           ulid.Make().String(),
			Email:        fmt.Sprintf("customer%02d@email.com", i+2),
			Name:         fmt.Sprintf("%s %s", lastnames[rand.IntN(len(lastnames))], companies[rand.IntN(len(companies))]),
			Siret:        fmt.Sprintf("%014d", rand.Int64N(1e14)),
			PasswordHash: hash,
			CreatedAt:    now,
		})
	}

	for _, c := range customers {
		if err := repo.CreateCustomer(ctx, c); err != nil {
			return nil, fmt.Errorf("create customer %s: %w", c.Email, err)
		}
		for range usersPerCustomer {
			first := firstnames[rand.IntN(len(firstnames))]
			last := lastnames[rand.IntN(len(lastnames))]
			id := ulid.Make().String()
			u := &model.User{
				ID:         id,
				Firstname:  first,
				Lastname:   last,
				Email:      fmt.Sprintf("%s.%s.%s@example.com", strings.ToLower(first), strings.ToLower(last), strings.ToLower(id[len(id)-6:])),
				CustomerID: c.ID,
				CreatedAt:  now,
			}
			if err := repo.CreateUser(ctx, u); err != nil {
				return nil, fmt.Errorf("create user for %s: %w", c.Email, err)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "seeded %d products, %d customers, %d users\n",
		productCount, len(customers), len(customers)*usersPerCustomer)
	return customers[0], nil
}

type priceRange struct{ min, max model.Price }

func parsePriceRange(lo, hi string) (priceRange, error) {
	minP, err := model.ParsePrice(lo)
	if err != nil {
		return priceRange{}, fmt.Errorf("min-price: %w", err)
	}
	maxP, err := model.ParsePrice(hi)
	if err != nil {
		return priceRange{}, fmt.Errorf("max-price: %w", err)
	}
	if minP < 0 || maxP < minP {
		return priceRange{}, fmt.Errorf("invalid price range %s..%s", minP, maxP)
	}
	return priceRange{min: minP, max: maxP}, nil
}

// random returns a price in [min, max] rounded down to .99 when the range allows.
func (r priceRange) random() model.Price {
	p := r.min + model.Price(rand.Int64N(int64(r.max-r.min)+1))
	if rounded := p/100*100 + 99; rounded <= r.max && rounded >= r.min {
		return rounded
	}
	return p
}
