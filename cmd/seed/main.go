// Command seed fills an empty store with demo categories, suppliers,
// products and customers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	catalogapp "github.com/retailpos/backend/internal/application/catalog"
	partnerapp "github.com/retailpos/backend/internal/application/partner"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/retailpos/backend/internal/infrastructure/logger"
	"github.com/retailpos/backend/internal/infrastructure/persistence"
)

type seeder struct {
	faker      *gofakeit.Faker
	categories *catalogapp.CategoryService
	suppliers  *catalogapp.SupplierService
	products   *catalogapp.ProductService
	customers  *partnerapp.CustomerService
	log        *zap.Logger
}

func main() {
	var (
		numCategories int
		numSuppliers  int
		numProducts   int
		numCustomers  int
		seed          uint64
	)
	flag.IntVar(&numCategories, "categories", 6, "Categories to create")
	flag.IntVar(&numSuppliers, "suppliers", 4, "Suppliers to create")
	flag.IntVar(&numProducts, "products", 60, "Products to create")
	flag.IntVar(&numCustomers, "customers", 25, "Customers to create")
	flag.Uint64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	s := &seeder{
		faker:      gofakeit.New(seed),
		categories: catalogapp.NewCategoryService(categoryRepo, productRepo),
		suppliers:  catalogapp.NewSupplierService(supplierRepo, productRepo),
		products:   catalogapp.NewProductService(productRepo, categoryRepo, supplierRepo, log),
		customers:  partnerapp.NewCustomerService(persistence.NewGormCustomerRepository(db.DB)),
		log:        log,
	}

	ctx := context.Background()
	categoryIDs, err := s.seedCategories(ctx, numCategories)
	if err != nil {
		log.Fatal("Seeding categories failed", zap.Error(err))
	}
	supplierIDs, err := s.seedSuppliers(ctx, numSuppliers)
	if err != nil {
		log.Fatal("Seeding suppliers failed", zap.Error(err))
	}
	products, err := s.seedProducts(ctx, numProducts, categoryIDs, supplierIDs)
	if err != nil {
		log.Fatal("Seeding products failed", zap.Error(err))
	}
	customers, err := s.seedCustomers(ctx, numCustomers)
	if err != nil {
		log.Fatal("Seeding customers failed", zap.Error(err))
	}

	log.Info("Seed complete",
		zap.Int("categories", len(categoryIDs)),
		zap.Int("suppliers", len(supplierIDs)),
		zap.Int("products", products),
		zap.Int("customers", customers),
	)
}

func (s *seeder) seedCategories(ctx context.Context, n int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, n)
	for attempts := 0; len(ids) < n && attempts < n*5; attempts++ {
		cat, err := s.categories.Create(ctx, catalogapp.CreateCategoryRequest{
			Name:        s.faker.ProductCategory(),
			Description: s.faker.Sentence(8),
		})
		if errors.Is(err, catalog.ErrCategoryExists) {
			continue
		}
		if err != nil {
			return ids, err
		}
		ids = append(ids, cat.ID)
	}
	return ids, nil
}

func (s *seeder) seedSuppliers(ctx context.Context, n int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, n)
	for attempts := 0; len(ids) < n && attempts < n*5; attempts++ {
		sup, err := s.suppliers.Create(ctx, catalogapp.CreateSupplierRequest{
			Name:        s.faker.Company(),
			ContactName: s.faker.Name(),
			Phone:       s.faker.Phone(),
			Email:       s.faker.Email(),
		})
		if errors.Is(err, catalog.ErrSupplierExists) {
			continue
		}
		if err != nil {
			return ids, err
		}
		ids = append(ids, sup.ID)
	}
	return ids, nil
}

func (s *seeder) seedProducts(ctx context.Context, n int, categoryIDs, supplierIDs []uuid.UUID) (int, error) {
	created := 0
	for i := 0; i < n; i++ {
		price := decimal.NewFromFloat(s.faker.Price(0.5, 250)).Round(2)
		cost := price.Mul(decimal.NewFromFloat(s.faker.Float64Range(0.4, 0.8))).Round(2)
		req := catalogapp.CreateProductRequest{
			Name:       s.faker.ProductName(),
			SKU:        s.faker.Numerify("SKU-######"),
			Price:      price,
			Cost:       &cost,
			Stock:      s.faker.IntRange(0, 120),
			CategoryID: pick(s.faker, categoryIDs),
			SupplierID: pick(s.faker, supplierIDs),
		}
		if _, err := s.products.Create(ctx, req); err != nil {
			if errors.Is(err, catalog.ErrSKUExists) {
				s.log.Debug("Skipping duplicate SKU", zap.String("sku", req.SKU))
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *seeder) seedCustomers(ctx context.Context, n int) (int, error) {
	for i := 0; i < n; i++ {
		addr := s.faker.Address()
		if _, err := s.customers.Create(ctx, partnerapp.CustomerRequest{
			Name:    s.faker.Name(),
			TaxID:   s.faker.Numerify("##-#######"),
			Phone:   s.faker.Phone(),
			Email:   s.faker.Email(),
			Address: addr.Address,
		}); err != nil {
			return i, err
		}
	}
	return n, nil
}

// pick returns a random id from ids, or nil roughly one time in five so
// some products stay uncategorised.
func pick(f *gofakeit.Faker, ids []uuid.UUID) *uuid.UUID {
	if len(ids) == 0 || f.IntRange(0, 4) == 0 {
		return nil
	}
	id := ids[f.IntRange(0, len(ids)-1)]
	return &id
}
