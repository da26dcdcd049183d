package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role struct {
	ID   uint   `gorm:"primaryKey" json:"roleId"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"roleName"`
}

type Account struct {
	ID          uint      `gorm:"primaryKey" json:"accountId"`
	AccountName string    `gorm:"size:50;uniqueIndex;not null" json:"accountName"`
	Email       string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	RoleID      uint      `gorm:"index;not null" json:"roleId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"categoryId"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"categoryName"`
}

type Orchid struct {
	ID          uint            `gorm:"primaryKey" json:"orchidId"`
	Name        string          `gorm:"size:100;uniqueIndex;not null" json:"orchidName"`
	Description string          `gorm:"size:500" json:"orchidDescription"`
	URL         string          `gorm:"size:255" json:"orchidUrl"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	IsNatural   bool            `gorm:"not null;default:false" json:"isNatural"`
	CategoryID  uint            `gorm:"index;not null" json:"categoryId"`
}

type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderDate   time.Time       `gorm:"index;not null" json:"orderDate"`
	Status      OrderStatus     `gorm:"size:32;index;not null" json:"orderStatus"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	AccountID   uint            `gorm:"index;not null" json:"accountId"`
}

type OrderDetail struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"` // snapshot at time of adding
	Quantity int             `gorm:"not null" json:"quantity"`
	OrderID  uint            `gorm:"index;not null" json:"orderId"`
	OrchidID uint            `gorm:"index;not null" json:"orchidId"`
}

// PaymentEvent records a handled gateway callback, keyed by the gateway's order id.
type PaymentEvent struct {
	GatewayOrderID string `gorm:"primaryKey;size:128;not null"`
	OrderID        uint   `gorm:"index;not null"`
	ResultMessage  string `gorm:"size:255"`
	ProcessedAt    time.Time
	CreatedAt      time.Time
}

// All lists every table the application migrates.
func All() []any {
	return []any{
		&Role{},
		&Account{},
		&Category{},
		&Orchid{},
		&Order{},
		&OrderDetail{},
		&PaymentEvent{},
	}
}
