package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable identifier carried by every application error.
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeNetwork            Code = "NETWORK_ERROR"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAuthentication     Code = "AUTHENTICATION_ERROR"
	CodeAuthorization      Code = "AUTHORIZATION_ERROR"
	CodeConflict           Code = "CONFLICT"
	CodeCrossRestaurant    Code = "CROSS_RESTAURANT"
	CodeCannotCancel       Code = "CANNOT_CANCEL"
	CodeAlreadyCancelled   Code = "ALREADY_CANCELLED"
	CodeInvalidTransition  Code = "INVALID_TRANSITION"
	CodeItemNotAvailable   Code = "ITEM_NOT_AVAILABLE"
	CodeRestaurantClosed   Code = "RESTAURANT_CLOSED"
	CodeMinimumOrderNotMet Code = "MINIMUM_ORDER_NOT_MET"
	CodeKitchenBusy        Code = "KITCHEN_BUSY"
	CodeDriverNotAvailable Code = "DRIVER_NOT_AVAILABLE"
)

// Error is the single error type surfaced to clients. MessageEN/MessageAR are
// user-facing; Field is set on validation errors, CurrentStatus on lifecycle
// errors.
type Error struct {
	Code          Code   `json:"code"`
	HTTPStatus    int    `json:"-"`
	MessageEN     string `json:"message"`
	MessageAR     string `json:"message_ar"`
	Field         string `json:"field,omitempty"`
	CurrentStatus string `json:"current_status,omitempty"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Field, e.MessageEN)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.MessageEN)
}

// Localized returns the user-facing text for the given language tag ("ar" or
// anything else for English).
func (e *Error) Localized(lang string) string {
	if lang == "ar" && e.MessageAR != "" {
		return e.MessageAR
	}
	return e.MessageEN
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code Code) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// Validation reports bad or missing user input. field names the offending
// request field.
func Validation(field, en, ar string) *Error {
	return &Error{
		Code:       CodeValidation,
		HTTPStatus: http.StatusBadRequest,
		MessageEN:  en,
		MessageAR:  ar,
		Field:      field,
	}
}

// NotFound reports an absent order, item or restaurant.
func NotFound(en, ar string) *Error {
	return &Error{
		Code:       CodeNotFound,
		HTTPStatus: http.StatusNotFound,
		MessageEN:  en,
		MessageAR:  ar,
	}
}

// Authentication covers missing or bad credentials.
func Authentication(en, ar string) *Error {
	return &Error{
		Code:       CodeAuthentication,
		HTTPStatus: http.StatusUnauthorized,
		MessageEN:  en,
		MessageAR:  ar,
	}
}

// Authorization covers a valid caller attempting an action its role does not
// permit.
func Authorization(en, ar string) *Error {
	return &Error{
		Code:       CodeAuthorization,
		HTTPStatus: http.StatusForbidden,
		MessageEN:  en,
		MessageAR:  ar,
	}
}

// Conflict reports a stale write rejected by the version check, or a resource
// claimed by another actor first.
func Conflict(en, ar string) *Error {
	return &Error{
		Code:       CodeConflict,
		HTTPStatus: http.StatusConflict,
		MessageEN:  en,
		MessageAR:  ar,
	}
}

// Network wraps a store or transport failure. Retryable by the caller.
func Network(cause error) *Error {
	return &Error{
		Code:       CodeNetwork,
		HTTPStatus: http.StatusServiceUnavailable,
		MessageEN:  "A temporary problem occurred, please try again: " + cause.Error(),
		MessageAR:  "حدثت مشكلة مؤقتة، يرجى المحاولة مرة أخرى",
	}
}

func CrossRestaurant() *Error {
	return &Error{
		Code:       CodeCrossRestaurant,
		HTTPStatus: http.StatusUnprocessableEntity,
		MessageEN:  "Your cart contains items from another restaurant. Clear it before ordering from a new one.",
		MessageAR:  "سلتك تحتوي على أصناف من مطعم آخر. أفرغ السلة قبل الطلب من مطعم جديد.",
	}
}

func CannotCancel(currentStatus string) *Error {
	return &Error{
		Code:          CodeCannotCancel,
		HTTPStatus:    http.StatusUnprocessableEntity,
		MessageEN:     "The order can no longer be cancelled (current status: " + currentStatus + ").",
		MessageAR:     "لم يعد بالإمكان إلغاء الطلب (الحالة الحالية: " + currentStatus + ").",
		CurrentStatus: currentStatus,
	}
}

func AlreadyCancelled() *Error {
	return &Error{
		Code:          CodeAlreadyCancelled,
		HTTPStatus:    http.StatusUnprocessableEntity,
		MessageEN:     "The order has already been cancelled.",
		MessageAR:     "تم إلغاء الطلب مسبقاً.",
		CurrentStatus: "cancelled",
	}
}

func InvalidTransition(currentStatus string) *Error {
	return &Error{
		Code:          CodeInvalidTransition,
		HTTPStatus:    http.StatusUnprocessableEntity,
		MessageEN:     "No further status change is possible from '" + currentStatus + "'.",
		MessageAR:     "لا يمكن تغيير حالة الطلب من '" + currentStatus + "'.",
		CurrentStatus: currentStatus,
	}
}

func ItemNotAvailable(name string) *Error {
	return &Error{
		Code:       CodeItemNotAvailable,
		HTTPStatus: http.StatusUnprocessableEntity,
		MessageEN:  "'" + name + "' is currently not available.",
		MessageAR:  "'" + name + "' غير متوفر حالياً.",
	}
}

func RestaurantClosed() *Error {
	return &Error{
		Code:       CodeRestaurantClosed,
		HTTPStatus: http.StatusUnprocessableEntity,
		MessageEN:  "The restaurant is currently closed.",
		MessageAR:  "المطعم مغلق حالياً.",
	}
}

func MinimumOrderNotMet(minimum float64) *Error {
	return &Error{
		Code:       CodeMinimumOrderNotMet,
		HTTPStatus: http.StatusUnprocessableEntity,
		MessageEN:  fmt.Sprintf("The order total is below the restaurant minimum of %.2f.", minimum),
		MessageAR:  fmt.Sprintf("إجمالي الطلب أقل من الحد الأدنى للمطعم وهو %.2f.", minimum),
	}
}

func KitchenBusy() *Error {
	return &Error{
		Code:       CodeKitchenBusy,
		HTTPStatus: http.StatusUnprocessableEntity,
		MessageEN:  "The kitchen is at capacity right now. Please try again shortly.",
		MessageAR:  "المطبخ مشغول بكامل طاقته حالياً. يرجى المحاولة بعد قليل.",
	}
}

func DriverNotAvailable() *Error {
	return &Error{
		Code:       CodeDriverNotAvailable,
		HTTPStatus: http.StatusConflict,
		MessageEN:  "You already have an active delivery. Complete it before picking up another order.",
		MessageAR:  "لديك توصيلة نشطة بالفعل. أكملها قبل استلام طلب آخر.",
	}
}
