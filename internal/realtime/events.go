package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	apperrors "storefront/internal/errors"
	"storefront/internal/service"
)

// Inbound events.
const (
	EventDeleteProduct = "deleteProd"
	EventAddProduct    = "addProd"
	EventNewMessage    = "newMessage"
)

// Outbound events.
const (
	EventProducts    = "products"
	EventEmitMessage = "emitMessage"
	EventError       = "error"
	EventResult      = "result"
)

// Frame is the envelope of every message on the channel.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ErrorDetail is the payload of an error frame.
type ErrorDetail struct {
	Detail string `json:"detail"`
}

type productPayload struct {
	Name        *string          `json:"name" validate:"required,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Code        *string          `json:"code" validate:"required,min=1,max=64"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Status      *bool            `json:"status"`
}

func (p productPayload) input() service.ProductInput {
	return service.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Code:        p.Code,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Status:      p.Status,
	}
}

func encodeFrame(event string, data interface{}) ([]byte, error) {
	return json.Marshal(Frame{Event: event, Data: data})
}

// decodeFrame peeks at the event name without decoding the payload.
func decodeFrame(raw []byte) (string, gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return "", gjson.Result{}, fmt.Errorf("%w: malformed frame", apperrors.ErrChannel)
	}
	frame := gjson.ParseBytes(raw)
	event := frame.Get("event")
	if event.Type != gjson.String || event.Str == "" {
		return "", gjson.Result{}, fmt.Errorf("%w: missing event name", apperrors.ErrChannel)
	}
	return event.Str, frame.Get("data"), nil
}

// unwrap accepts a payload sent either as a JSON value or as a string holding JSON.
func unwrap(data gjson.Result) gjson.Result {
	if data.Type == gjson.String && gjson.Valid(data.Str) {
		return gjson.Parse(data.Str)
	}
	return data
}

// productID accepts {"prodId": "..."} or a bare id string.
func productID(data gjson.Result) string {
	if data.Type == gjson.String {
		return data.Str
	}
	return data.Get("prodId").String()
}

// sender reads the author from "user", or from "email" which may itself be {"value": ...}.
func sender(data gjson.Result) string {
	if u := data.Get("user"); u.Type == gjson.String && u.Str != "" {
		return u.Str
	}
	email := data.Get("email")
	if email.IsObject() {
		return email.Get("value").String()
	}
	return email.String()
}
