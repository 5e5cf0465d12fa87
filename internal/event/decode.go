package event

import (
	"encoding/json"
	"fmt"
)

// DecodePayload returns an event payload as T. Events published in process
// carry the struct itself, by value or pointer. Payloads that crossed a JSON
// boundary arrive as raw bytes or generic maps and are decoded again.
func DecodePayload[T any](input interface{}) (T, error) {
	var result T
	switch v := input.(type) {
	case T:
		return v, nil
	case *T:
		if v == nil {
			return result, fmt.Errorf("decode payload: nil %T", v)
		}
		return *v, nil
	case json.RawMessage:
		return result, json.Unmarshal(v, &result)
	case []byte:
		return result, json.Unmarshal(v, &result)
	}

	data, err := json.Marshal(input)
	if err != nil {
		return result, fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("decode payload into %T: %w", result, err)
	}
	return result, nil
}
