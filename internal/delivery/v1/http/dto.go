package http

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
)

// REQUESTS

type AddToCartReq struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  *int  `json:"quantity,omitempty" validate:"omitempty,min=1,max=10000"`
}

type ToggleFavoriteReq struct {
	ProductID int64 `json:"productId" validate:"required"`
}

type RegisterReq struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
	FullName string `json:"fullName" validate:"max=200"`
}

type LoginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type BecomeSellerReq struct {
	ShopName    string `json:"shopName" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// RESPONSES

type ProductRes struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        string  `json:"price"`
	Discount     string  `json:"discount"`
	FinalPrice   string  `json:"finalPrice"`
	PriceCents   int64   `json:"priceCents"`
	Quantity     int     `json:"quantity"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	CategoryID   int64   `json:"categoryId"`
	SellerID     int64   `json:"sellerId"`
	Rating       float64 `json:"rating"`
	ReviewsCount int     `json:"reviewsCount"`
	IsApproved   bool    `json:"isApproved"`
}

type ProductDetailsRes struct {
	ProductRes
	CategoryName string `json:"categoryName"`
	ShopName     string `json:"shopName"`
}

type CategoryRes struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CatalogRes struct {
	Products   []ProductRes  `json:"products"`
	Categories []CategoryRes `json:"categories"`
	Query      string        `json:"query,omitempty"`
	CategoryID *int64        `json:"categoryId,omitempty"`
}

type CartLineRes struct {
	Product   ProductRes `json:"product"`
	Quantity  int        `json:"quantity"`
	LineTotal string     `json:"lineTotal"`
}

type CartRes struct {
	Items     []CartLineRes `json:"items"`
	ItemCount int           `json:"itemCount"`
	Total     string        `json:"total"`
}

type CartCountRes struct {
	CartCount int `json:"cartCount"`
}

type ToggleFavoriteRes struct {
	Added    bool `json:"added"`
	FavCount int  `json:"favCount"`
}

type UserRes struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Roles    []string `json:"roles"`
}

type AuthRes struct {
	Token string  `json:"token"`
	User  UserRes `json:"user"`
}

type DBStatusRes struct {
	Status     string `json:"status"`
	Categories int64  `json:"categories"`
	Products   int64  `json:"products"`
}

// CONVERTERS

// imageURLFunc строит публичную ссылку на изображение товара.
type imageURLFunc func(path string) string

func toProductRes(p *domain.Product, imageURL imageURLFunc) ProductRes {
	res := ProductRes{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        formatCents(p.Price),
		Discount:     formatCents(p.Discount),
		FinalPrice:   formatCents(p.FinalPrice()),
		PriceCents:   p.Price,
		Quantity:     p.Quantity,
		CategoryID:   p.CategoryID,
		SellerID:     p.SellerID,
		Rating:       p.Rating,
		ReviewsCount: p.ReviewsCount,
		IsApproved:   p.IsApproved,
	}
	if p.ImagePath != "" {
		res.ImageURL = imageURL(p.ImagePath)
	}
	return res
}

func toArrProductRes(products []domain.Product, imageURL imageURLFunc) []ProductRes {
	res := make([]ProductRes, len(products))
	for i := range products {
		res[i] = toProductRes(&products[i], imageURL)
	}
	return res
}

func toArrCategoryRes(categories []domain.Category) []CategoryRes {
	res := make([]CategoryRes, len(categories))
	for i, c := range categories {
		res[i] = CategoryRes{ID: c.ID, Name: c.Name}
	}
	return res
}

func toCartRes(lines []domain.CartLine, imageURL imageURLFunc) CartRes {
	res := CartRes{Items: make([]CartLineRes, len(lines))}

	var total int64
	for i := range lines {
		line := lines[i]
		lineTotal := line.Product.FinalPrice() * int64(line.Quantity)
		total += lineTotal
		res.ItemCount += line.Quantity
		res.Items[i] = CartLineRes{
			Product:   toProductRes(&line.Product, imageURL),
			Quantity:  line.Quantity,
			LineTotal: formatCents(lineTotal),
		}
	}
	res.Total = formatCents(total)

	return res
}

func toAuthRes(res *usecase.AuthRes) AuthRes {
	roles := make([]string, len(res.User.Roles))
	for i, r := range res.User.Roles {
		roles[i] = string(r)
	}

	return AuthRes{
		Token: res.Token,
		User: UserRes{
			ID:       res.User.ID,
			Email:    res.User.Email,
			FullName: res.User.FullName,
			Roles:    roles,
		},
	}
}
