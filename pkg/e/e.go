package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки инфраструктуры
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrSessionUnavailable   = fmt.Errorf("session store unavailable")
	ErrMalformedSession     = fmt.Errorf("malformed session payload")
	ErrInternalServerError  = fmt.Errorf("internal server error")

	// 400 Bad Request
	ErrStatusBadRequest       = fmt.Errorf("bad request")
	ErrInvalidProductID       = fmt.Errorf("product id must be positive")
	ErrInvalidQuantity        = fmt.Errorf("quantity must be positive")
	ErrInvalidCategoryID      = fmt.Errorf("category id must be positive")
	ErrProductNameRequired    = fmt.Errorf("product name is required")
	ErrPriceMustBePositive    = fmt.Errorf("price must be positive")
	ErrInvalidPrice           = fmt.Errorf("invalid price")
	ErrPricePrecision         = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidDiscount        = fmt.Errorf("discount must be between zero and price")
	ErrNegativeStock          = fmt.Errorf("stock quantity must not be negative")
	ErrCategoryNotFound       = fmt.Errorf("category not found")
	ErrMissingFields          = fmt.Errorf("missing required fields")
	ErrExpectedMultipart      = fmt.Errorf("expected multipart/form-data")
	ErrTooManyImages          = fmt.Errorf("too many images")
	ErrFileTooLarge           = fmt.Errorf("file too large")
	ErrUnsupportedMediaType   = fmt.Errorf("unsupported media type")
	ErrInvalidEmail           = fmt.Errorf("invalid email")
	ErrWeakPassword           = fmt.Errorf("password must be at least 6 characters and contain upper, lower, digit and symbol")
	ErrShopNameRequired       = fmt.Errorf("shop name is required")
	ErrProductRequestMismatch = fmt.Errorf("product id mismatch")

	// 401 Unauthorized
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrInvalidCredentials = fmt.Errorf("invalid login or password")
	ErrInvalidToken       = fmt.Errorf("invalid token")

	// 403 Forbidden
	ErrForbidden = fmt.Errorf("forbidden")
	ErrNotSeller = fmt.Errorf("you are not registered as a seller")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrSellerNotFound  = fmt.Errorf("seller not found")

	// 409 Conflict
	ErrEmailTaken = fmt.Errorf("email is already registered")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
