package domain

import "time"

// Seller — магазин, принадлежащий пользователю с ролью Seller.
type Seller struct {
	ID          int64
	UserID      int64
	ShopName    string
	Description string
	Rating      float64
	CreatedAt   time.Time
}

func NewSeller(userID int64, shopName string, description string) *Seller {
	return &Seller{
		UserID:      userID,
		ShopName:    shopName,
		Description: description,
	}
}
