package domain

const (
	// SessionCartKey — ключ сессии со списком позиций корзины.
	SessionCartKey = "CartItems"
	// SessionFavoritesKey — ключ сессии со списком избранных товаров.
	SessionFavoritesKey = "Favorites"
)

// SessionCartItem — позиция корзины в сессии. На один товар в сессии приходится не больше одной позиции.
type SessionCartItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CartLine — позиция корзины, сопоставленная с товаром каталога.
type CartLine struct {
	Product  Product
	Quantity int
}

// SessionStatus — счётчики для шапки сайта.
type SessionStatus struct {
	CartCount int `json:"cartCount"`
	FavCount  int `json:"favCount"`
}
