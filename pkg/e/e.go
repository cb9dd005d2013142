package e

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrOrderNotFound   = fmt.Errorf("order not found")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrValidation           = fmt.Errorf("validation failed")
	ErrInsufficientStock    = fmt.Errorf("insufficient stock")
	ErrInvalidJSON          = fmt.Errorf("malformed JSON body")
	ErrInvalidID            = fmt.Errorf("invalid id")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrNoImages             = fmt.Errorf("no image provided")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// 409 Conflict
	ErrProductAlreadyExists = fmt.Errorf("product with the same sku or slug already exists")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")

	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// InsufficientStockError описывает нехватку остатка по конкретному товару.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func NewInsufficientStockError(productID int64, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

func (i *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"Insufficient stock for product %d: requested %d, available %d",
		i.ProductID, i.Requested, i.Available,
	)
}

func (i *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NotFoundError: отсутствующая сущность с конкретным id.
type NotFoundError struct {
	Resource string
	ID       any
	sentinel error
}

func NewProductNotFound(id int64) *NotFoundError {
	return &NotFoundError{Resource: "Product", ID: id, sentinel: ErrProductNotFound}
}

func NewOrderNotFound(id int64) *NotFoundError {
	return &NotFoundError{Resource: "Order", ID: id, sentinel: ErrOrderNotFound}
}

func (n *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %v", n.Resource, n.ID)
}

func (n *NotFoundError) Is(target error) bool {
	return target == n.sentinel
}

// ValidationError содержит ошибки валидации по полям запроса (поле -> сообщение).
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add запоминает первую ошибку для поля.
func (v *ValidationError) Add(field, message string) {
	if _, ok := v.Fields[field]; ok {
		return
	}
	v.Fields[field] = message
}

func (v *ValidationError) Empty() bool {
	return len(v.Fields) == 0
}

// OrNil возвращает nil, если ошибок нет. Удобно в конце функции валидации.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}

	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AsValidation достаёт ValidationError из цепочки ошибок.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// AsNotFound достаёт NotFoundError из цепочки ошибок.
func AsNotFound(err error) (*NotFoundError, bool) {
	var n *NotFoundError
	if errors.As(err, &n) {
		return n, true
	}
	return nil, false
}

// AsInsufficientStock достаёт InsufficientStockError из цепочки ошибок.
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var s *InsufficientStockError
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}
