package types

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodePayload unmarshals an inbound payload into dst and validates it
// against the struct's validation tags. dst must be a pointer to one of the
// inbound payload structs. A nil or empty raw payload is treated as an empty
// JSON object so that payloads without required fields still decode.
func DecodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}
