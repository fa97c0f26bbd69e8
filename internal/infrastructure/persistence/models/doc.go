// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and AggregateModel
// - catalog.go: Category, Supplier, Product
// - identity.go: User
// - partner.go: Customer
// - drawer.go: CashDrawerSession
// - sales.go: Sale, SaleItem, SaleReturn, SaleReturnItem
//
// The gorm tags mirror migrations/ so that AutoMigrate produces an equivalent
// schema for SQLite-backed tests.
package models
