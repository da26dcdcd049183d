package dto

import (
	"orchid-shop/internal/model"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	AccountName string `json:"accountName" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,email,max=100"`
	Password    string `json:"password" validate:"required,max=72"`
}

type LoginRequest struct {
	AccountName string `json:"accountName" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	Message   string `json:"message"`
	ExpiresIn int64  `json:"expiresIn"` // seconds
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type RoleRequest struct {
	Name string `json:"roleName" validate:"required,max=50"`
}

type ChangeRoleRequest struct {
	RoleID uint `json:"roleId" validate:"required"`
}

type CategoryRequest struct {
	Name string `json:"categoryName" validate:"required,max=100"`
}

type OrchidRequest struct {
	Name        string          `json:"orchidName" validate:"required,max=100"`
	Description string          `json:"orchidDescription" validate:"max=500"`
	URL         string          `json:"orchidUrl" validate:"omitempty,url,max=255"`
	Price       decimal.Decimal `json:"price"`
	IsNatural   bool            `json:"isNatural"`
	CategoryID  uint            `json:"categoryId" validate:"required"`
}

type AddOrderItemRequest struct {
	OrchidID uint `json:"orchidId" validate:"required"`
	Quantity int  `json:"quantity" validate:"gt=0"`
}

type AddOrderItemResponse struct {
	Message string       `json:"message"`
	Order   *model.Order `json:"order"`
}

type OrderDetailResponse struct {
	ID         uint            `json:"id"`
	OrderID    uint            `json:"orderId"`
	OrchidID   uint            `json:"orchidId"`
	OrchidName string          `json:"orchidName"`
	OrchidURL  string          `json:"orchidUrl"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

type PaymentURLRequest struct {
	OrderID uint `json:"orderId"`
}

type PaymentURLResponse struct {
	URL string `json:"url"`
}

// PaymentCallback carries the gateway notification fields the shop acts on.
type PaymentCallback struct {
	OrderID    string // gateway order id
	OrderInfo  string // domain order id
	Message    string
	ResultCode string
	TransID    string
}
