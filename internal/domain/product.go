package domain

import "time"

// Product описывает товар каталога
type Product struct {
	ID           int64
	Name         string
	Description  string
	Price        int64 // Цена хранится в копейках
	Discount     int64 // Скидка в копейках, не больше цены
	Quantity     int   // Остаток на складе
	ImagePath    string
	CategoryID   int64
	SellerID     int64
	Rating       float64
	ReviewsCount int
	IsApproved   bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func NewProduct(name string, description string, price int64, discount int64, quantity int, categoryID int64, sellerID int64) *Product {
	return &Product{
		Name:        name,
		Description: description,
		Price:       price,
		Discount:    discount,
		Quantity:    quantity,
		CategoryID:  categoryID,
		SellerID:    sellerID,
	}
}

// FinalPrice возвращает цену с учётом скидки.
func (p *Product) FinalPrice() int64 {
	if p.Discount <= 0 || p.Discount > p.Price {
		return p.Price
	}
	return p.Price - p.Discount
}

// ProductDetails — товар вместе с названием категории и магазина.
type ProductDetails struct {
	Product
	CategoryName string
	ShopName     string
}
