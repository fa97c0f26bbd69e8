package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate.
type SaleModel struct {
	AggregateModel
	SaleNumber    string              `gorm:"type:varchar(30);not null;uniqueIndex:idx_sales_number"`
	SessionID     *uuid.UUID          `gorm:"column:cash_drawer_session_id;type:uuid;index"`
	CashierID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	CustomerID    *uuid.UUID          `gorm:"type:uuid;index"`
	PaymentMethod sales.PaymentMethod `gorm:"type:varchar(10);not null;default:'cash'"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(12,2);not null"`

	Items    []SaleItemModel         `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Session  *CashDrawerSessionModel `gorm:"foreignKey:SessionID;constraint:OnDelete:RESTRICT"`
	Cashier  *UserModel              `gorm:"foreignKey:CashierID;constraint:OnDelete:RESTRICT"`
	Customer *CustomerModel          `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale aggregate.
// Items are mapped only when they were loaded.
func (m *SaleModel) ToDomain() *sales.Sale {
	s := &sales.Sale{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SaleNumber:        m.SaleNumber,
		SessionID:         m.SessionID,
		CashierID:         m.CashierID,
		CustomerID:        m.CustomerID,
		PaymentMethod:     m.PaymentMethod,
		TotalAmount:       m.TotalAmount,
		Items:             make([]sales.SaleItem, len(m.Items)),
	}
	for i := range m.Items {
		s.Items[i] = m.Items[i].ToDomain()
	}
	return s
}

// FromDomain populates the persistence model from a domain Sale aggregate.
func (m *SaleModel) FromDomain(s *sales.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.SaleNumber = s.SaleNumber
	m.SessionID = s.SessionID
	m.CashierID = s.CashierID
	m.CustomerID = s.CustomerID
	m.PaymentMethod = s.PaymentMethod
	m.TotalAmount = s.TotalAmount
	m.Items = make([]SaleItemModel, len(s.Items))
	for i := range s.Items {
		m.Items[i].FromDomain(s.Items[i])
		m.Items[i].SaleID = s.ID
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale aggregate.
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// SaleItemModel is one line of a sale
type SaleItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	SKU         string          `gorm:"column:sku;type:varchar(50);not null"`
	Quantity    int             `gorm:"not null;check:chk_sale_items_quantity,quantity > 0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`

	Product *ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem.
func (m *SaleItemModel) ToDomain() sales.SaleItem {
	return sales.SaleItem{
		ID:          m.ID,
		SaleID:      m.SaleID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		SKU:         m.SKU,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain SaleItem.
func (m *SaleItemModel) FromDomain(i sales.SaleItem) {
	m.ID = i.ID
	m.SaleID = i.SaleID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.SKU = i.SKU
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.CreatedAt = i.CreatedAt
}

// SaleReturnModel is the persistence model for the SaleReturn aggregate.
type SaleReturnModel struct {
	AggregateModel
	SaleID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	SessionID    *uuid.UUID          `gorm:"column:cash_drawer_session_id;type:uuid;index"`
	ReturnedAt   time.Time           `gorm:"not null;index"`
	Reason       string              `gorm:"type:text"`
	TotalRefund  decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	RefundMethod sales.PaymentMethod `gorm:"type:varchar(10);not null"`
	ProcessedBy  uuid.UUID           `gorm:"type:uuid;not null;index"`

	Items   []SaleReturnItemModel   `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE"`
	Sale    *SaleModel              `gorm:"foreignKey:SaleID;constraint:OnDelete:RESTRICT"`
	Session *CashDrawerSessionModel `gorm:"foreignKey:SessionID;constraint:OnDelete:SET NULL"`
}

// TableName returns the table name for GORM
func (SaleReturnModel) TableName() string {
	return "sale_returns"
}

// ToDomain converts the persistence model to a domain SaleReturn aggregate.
// SaleNumber is filled in when the Sale association was preloaded.
func (m *SaleReturnModel) ToDomain() *sales.SaleReturn {
	r := &sales.SaleReturn{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SaleID:            m.SaleID,
		SessionID:         m.SessionID,
		ReturnedAt:        m.ReturnedAt,
		Reason:            m.Reason,
		TotalRefund:       m.TotalRefund,
		RefundMethod:      m.RefundMethod,
		ProcessedBy:       m.ProcessedBy,
		Items:             make([]sales.SaleReturnItem, len(m.Items)),
	}
	if m.Sale != nil {
		r.SaleNumber = m.Sale.SaleNumber
	}
	for i := range m.Items {
		r.Items[i] = m.Items[i].ToDomain()
	}
	return r
}

// FromDomain populates the persistence model from a domain SaleReturn aggregate.
func (m *SaleReturnModel) FromDomain(r *sales.SaleReturn) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.SaleID = r.SaleID
	m.SessionID = r.SessionID
	m.ReturnedAt = r.ReturnedAt
	m.Reason = r.Reason
	m.TotalRefund = r.TotalRefund
	m.RefundMethod = r.RefundMethod
	m.ProcessedBy = r.ProcessedBy
	m.Items = make([]SaleReturnItemModel, len(r.Items))
	for i := range r.Items {
		m.Items[i].FromDomain(r.Items[i])
		m.Items[i].ReturnID = r.ID
	}
}

// SaleReturnModelFromDomain creates a new persistence model from a domain SaleReturn aggregate.
func SaleReturnModelFromDomain(r *sales.SaleReturn) *SaleReturnModel {
	m := &SaleReturnModel{}
	m.FromDomain(r)
	return m
}

// SaleReturnItemModel is one returned line
type SaleReturnItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReturnID    uuid.UUID       `gorm:"column:sale_return_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null;check:chk_sale_return_items_quantity,quantity > 0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (SaleReturnItemModel) TableName() string {
	return "sale_return_items"
}

// ToDomain converts the persistence model to a domain SaleReturnItem.
func (m *SaleReturnItemModel) ToDomain() sales.SaleReturnItem {
	return sales.SaleReturnItem{
		ID:          m.ID,
		ReturnID:    m.ReturnID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
	}
}

// FromDomain populates the persistence model from a domain SaleReturnItem.
func (m *SaleReturnItemModel) FromDomain(i sales.SaleReturnItem) {
	m.ID = i.ID
	m.ReturnID = i.ReturnID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
}

// All returns every model in dependency order, for AutoMigrate in tests and tooling
func All() []any {
	return []any{
		&UserModel{},
		&CategoryModel{},
		&SupplierModel{},
		&ProductModel{},
		&CustomerModel{},
		&CashDrawerSessionModel{},
		&SaleModel{},
		&SaleItemModel{},
		&SaleReturnModel{},
		&SaleReturnItemModel{},
	}
}
