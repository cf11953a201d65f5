package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/internal/config"
	"storefront/internal/db"
	apperrors "storefront/internal/errors"
	"storefront/internal/logging"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// SeedProduct is one catalog entry of the seed file.
type SeedProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Code        string          `json:"code"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Status      *bool           `json:"status"`
}

// seedResult is the outcome for one seed entry.
type seedResult struct {
	Code   string
	Name   string
	Action string
}

func main() {
	source := flag.String("source", "data/products.json", "seed file path or http(s) URL")
	admin := flag.String("admin", "", "email of an existing user to promote to admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		log.WithError(err).Fatal("connect to database")
	}
	if err := db.Migrate(gormDB, false, log); err != nil {
		log.WithError(err).Fatal("migrate")
	}

	ctx := context.Background()

	items, err := loadProducts(*source)
	if err != nil {
		log.WithError(err).WithField("source", *source).Fatal("load seed file")
	}
	log.WithFields(logrus.Fields{"source": *source, "count": len(items)}).Info("seeding products")

	results, err := seedProducts(ctx, repository.NewProductRepository(gormDB), items)
	if err != nil {
		log.WithError(err).Fatal("seed products")
	}
	printResults(os.Stdout, results)

	if *admin != "" {
		users := service.NewUserService(repository.NewUserRepository(gormDB))
		user, err := users.PromoteByEmail(ctx, *admin)
		if err != nil {
			log.WithError(err).WithField("email", *admin).Fatal("promote admin")
		}
		log.WithField("email", user.Email).Info("user promoted to admin")
	}
}

// loadProducts reads the seed list from a local file or an http(s) URL.
func loadProducts(source string) ([]SeedProduct, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()

	var items []SeedProduct
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return items, nil
}

// seedProducts creates new products and updates existing ones, matched by code. Entries
// without a code or name are skipped, and so are codes still held by a deleted product.
func seedProducts(ctx context.Context, repo repository.ProductRepository, items []SeedProduct) ([]seedResult, error) {
	results := make([]seedResult, 0, len(items))
	for _, item := range items {
		code := strings.TrimSpace(item.Code)
		if code == "" || strings.TrimSpace(item.Name) == "" || item.Price.IsNegative() || item.Stock < 0 {
			results = append(results, seedResult{Code: code, Name: item.Name, Action: "skipped"})
			continue
		}
		status := true
		if item.Status != nil {
			status = *item.Status
		}

		existing, err := repo.FindByCode(ctx, code)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return results, fmt.Errorf("check product %s: %w", code, err)
		}

		if existing != nil {
			existing.Name = item.Name
			existing.Description = item.Description
			existing.Price = item.Price
			existing.Stock = item.Stock
			existing.Category = item.Category
			existing.Status = status
			if err := repo.Update(ctx, existing); err != nil {
				return results, fmt.Errorf("update product %s: %w", code, err)
			}
			results = append(results, seedResult{Code: code, Name: item.Name, Action: "updated"})
			continue
		}

		product := &model.Product{
			Name:        item.Name,
			Description: item.Description,
			Code:        code,
			Price:       item.Price,
			Stock:       item.Stock,
			Category:    item.Category,
			Status:      status,
		}
		if err := repo.Create(ctx, product); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				results = append(results, seedResult{Code: code, Name: item.Name, Action: "skipped"})
				continue
			}
			return results, fmt.Errorf("create product %s: %w", code, err)
		}
		results = append(results, seedResult{Code: code, Name: item.Name, Action: "created"})
	}
	return results, nil
}

func printResults(w io.Writer, results []seedResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Code", "Name", "Action"})
	for _, r := range results {
		table.Append([]string{r.Code, r.Name, r.Action})
	}
	table.Render()
}
