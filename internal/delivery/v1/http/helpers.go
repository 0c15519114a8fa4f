package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

var statusBySentinel = []struct {
	err  error
	code int
}{
	{e.ErrStatusBadRequest, http.StatusBadRequest},
	{e.ErrInvalidProductID, http.StatusBadRequest},
	{e.ErrInvalidQuantity, http.StatusBadRequest},
	{e.ErrInvalidCategoryID, http.StatusBadRequest},
	{e.ErrProductNameRequired, http.StatusBadRequest},
	{e.ErrPriceMustBePositive, http.StatusBadRequest},
	{e.ErrInvalidPrice, http.StatusBadRequest},
	{e.ErrPricePrecision, http.StatusBadRequest},
	{e.ErrInvalidDiscount, http.StatusBadRequest},
	{e.ErrNegativeStock, http.StatusBadRequest},
	{e.ErrCategoryNotFound, http.StatusBadRequest},
	{e.ErrMissingFields, http.StatusBadRequest},
	{e.ErrExpectedMultipart, http.StatusBadRequest},
	{e.ErrTooManyImages, http.StatusBadRequest},
	{e.ErrInvalidEmail, http.StatusBadRequest},
	{e.ErrWeakPassword, http.StatusBadRequest},
	{e.ErrShopNameRequired, http.StatusBadRequest},
	{e.ErrProductRequestMismatch, http.StatusBadRequest},
	{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{e.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
	{e.ErrUnauthorized, http.StatusUnauthorized},
	{e.ErrInvalidCredentials, http.StatusUnauthorized},
	{e.ErrInvalidToken, http.StatusUnauthorized},
	{e.ErrForbidden, http.StatusForbidden},
	{e.ErrNotSeller, http.StatusForbidden},
	{e.ErrProductNotFound, http.StatusNotFound},
	{e.ErrUserNotFound, http.StatusNotFound},
	{e.ErrSellerNotFound, http.StatusNotFound},
	{e.ErrEmailTaken, http.StatusConflict},
}

// ToHTTPResponse сопоставляет ошибку со статусом и сообщением для клиента.
// Неизвестные ошибки не раскрываются и превращаются в 500.
func ToHTTPResponse(err error) (int, string) {
	var vErr *validationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, vErr.Error()
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.code, s.err.Error()
		}
	}

	return http.StatusInternalServerError, e.ErrInternalServerError.Error()
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// validationError — ошибка проверки тела запроса с перечнем полей.
type validationError struct {
	fields []string
}

func (v *validationError) Error() string {
	return "invalid fields: " + strings.Join(v.fields, ", ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON читает тело запроса в dst и проверяет теги validate.
func decodeJSON(r *http.Request, dst any) error {
	const maxBodySize = 1 << 20

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %v", e.ErrStatusBadRequest, err))
	}

	return validateStruct(dst)
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %v", e.ErrStatusBadRequest, err))
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return &validationError{fields: fields}
}

// parsePriceToCents переводит строку вида "599.99" или "600" в копейки.
// Допускается не больше двух знаков после запятой, отрицательные значения запрещены.
func parsePriceToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, e.ErrMissingFields
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	if d.IsNegative() {
		return 0, e.ErrInvalidPrice
	}

	// 1 млрд рублей
	maxPrice := decimal.NewFromInt(1_000_000_000)
	if d.GreaterThan(maxPrice) {
		return 0, e.ErrInvalidPrice
	}

	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, e.ErrPricePrecision
	}

	return d.Shift(2).Round(0).IntPart(), nil
}

// formatCents возвращает цену в рублях с двумя знаками после запятой.
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %v", e.ErrStatusBadRequest, err))
	}
	return nil
}

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// parseImage читает необязательное изображение товара из поля "image".
func parseImage(form *multipart.Form) (*usecase.ProductImage, error) {
	const maxFileSize = 15 << 20

	files := form.File["image"]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, e.ErrTooManyImages
	}

	fh := files[0]
	data, mimeType, err := readFile(fh, maxFileSize)
	if err != nil {
		return nil, err
	}

	if _, ok := allowedImageTypes[mimeType]; !ok {
		return nil, e.Wrap(fh.Filename, e.ErrUnsupportedMediaType)
	}

	return &usecase.ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Name:     fh.Filename,
	}, nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}
