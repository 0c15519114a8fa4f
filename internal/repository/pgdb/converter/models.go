package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID           int64      `db:"id"`
	Name         string     `db:"name"`
	Description  string     `db:"description"`
	Price        int64      `db:"price"`
	Discount     int64      `db:"discount"`
	Quantity     int        `db:"quantity"`
	ImagePath    string     `db:"image_path"`
	CategoryID   int64      `db:"category_id"`
	SellerID     int64      `db:"seller_id"`
	Rating       float64    `db:"rating"`
	ReviewsCount int        `db:"reviews_count"`
	IsApproved   bool       `db:"is_approved"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID               int64     `db:"id"`
	Name             string    `db:"name"`
	ParentCategoryID *int64    `db:"parent_category_id"`
	CreatedAt        time.Time `db:"created_at"`
}

// SellerModel представляет запись таблицы sellers в PostgreSQL.
type SellerModel struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	ShopName    string    `db:"shop_name"`
	Description string    `db:"description"`
	Rating      float64   `db:"rating"`
	CreatedAt   time.Time `db:"created_at"`
}

// UserModel представляет запись таблицы users вместе с ролями из user_roles.
type UserModel struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	FullName     string    `db:"full_name"`
	PasswordHash string    `db:"password_hash"`
	Roles        []string  `db:"roles"`
	CreatedAt    time.Time `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	ProductID   int64      `db:"product_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
