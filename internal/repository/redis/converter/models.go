package converter

import "time"

// ProductRedisModel — товар в кэше Redis.
type ProductRedisModel struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Price        int64      `json:"price"`
	Discount     int64      `json:"discount"`
	Quantity     int        `json:"quantity"`
	ImagePath    string     `json:"image_path"`
	CategoryID   int64      `json:"category_id"`
	SellerID     int64      `json:"seller_id"`
	Rating       float64    `json:"rating"`
	ReviewsCount int        `json:"reviews_count"`
	IsApproved   bool       `json:"is_approved"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}
