package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// Границы денежных колонок: products.price NUMERIC(12,2), orders.total_amount NUMERIC(14,2).
var (
	maxPrice      = decimal.RequireFromString("9999999999.99")
	maxOrderTotal = decimal.RequireFromString("999999999999.99")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В ошибках поля называются так же, как в JSON запроса
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "dgte", decimalRule(func(d, bound decimal.Decimal) bool { return d.GreaterThanOrEqual(bound) }))
	mustRegister(v, "dlte", decimalRule(func(d, bound decimal.Decimal) bool { return d.LessThanOrEqual(bound) }))
	mustRegister(v, "dscale", decimalScale)

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// decimalRule сравнивает десятичное поле (после RegisterCustomTypeFunc это строка) с параметром тега.
func decimalRule(ok func(d, bound decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return ok(d, bound)
	}
}

// decimalScale: не больше знаков после точки, чем в параметре. Незначащие нули не считаются.
func decimalScale(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	scale, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	places := int32(scale.IntPart())
	return d.Exponent() >= -places || d.Equal(d.Round(places))
}

// messages: поле.тег -> текст ошибки для клиента.
var messages = map[string]string{
	"customerEmail.notblank": "Customer email is required",
	"customerEmail.email":    "Invalid email format",
	"customerName.notblank":  "Customer name is required",
	"items.required":         "Order must have at least one item",
	"items.min":              "Order must have at least one item",
	"productId.gt":           "Product ID is required",
	"quantity.min":           "Quantity must be at least 1",

	"name.notblank":          "Product name is required",
	"price.required":         "Price is required",
	"price.dgte":             "Price cannot be negative",
	"price.dscale":           "Price must have at most 2 decimal places",
	"price.dlte":             "Price must not exceed " + maxPrice.StringFixed(2),
	"stockQuantity.required": "Stock quantity is required",
	"stockQuantity.min":      "Stock quantity cannot be negative",
	"stockQuantity.max":      "Stock quantity is too large",
	"sku.notblank":           "SKU cannot be blank",
}

// Validate проверяет структуру по тегам validate. Нарушения возвращаются как *e.ValidationError,
// где ключ: путь поля в JSON (items[1].quantity), значение: сообщение из messages.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	v := e.NewValidationError()
	for _, fe := range fieldErrs {
		v.Add(fieldPath(fe), fieldMessage(fe))
	}

	return v.OrNil()
}

func fieldPath(fe validator.FieldError) string {
	// Namespace начинается с имени типа: CreateOrderReq.items[0].quantity
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("Failed on the '%s' rule", fe.Tag())
}

// validateCreateOrder проверяет запрос до обращения к каталогу.
func validateCreateOrder(req *CreateOrderReq) error {
	return Validate(req)
}

func validateCreateProduct(req *CreateProductReq) error {
	return Validate(req)
}

// validateOrderTotal не пускает в БД сумму, которая не поместится в NUMERIC(14,2).
func validateOrderTotal(total decimal.Decimal) error {
	if total.LessThanOrEqual(maxOrderTotal) {
		return nil
	}

	v := e.NewValidationError()
	v.Add("items", "Order total must not exceed "+maxOrderTotal.StringFixed(2))
	return v
}
