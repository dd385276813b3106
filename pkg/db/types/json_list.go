package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONList stores a slice as a JSON array in a TEXT column. NULL and empty
// strings scan to an empty list.
type JSONList[T any] []T

func (l *JSONList[T]) Scan(src any) error {
	if src == nil {
		*l = JSONList[T]{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return l.parse([]byte(v))
	case []byte:
		return l.parse(v)
	default:
		return fmt.Errorf("JSONList: unsupported Scan type %T", src)
	}
}

func (l JSONList[T]) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]T(l))
	if err != nil {
		return nil, fmt.Errorf("JSONList: marshal: %w", err)
	}
	return string(b), nil
}

func (l *JSONList[T]) parse(raw []byte) error {
	if len(raw) == 0 {
		*l = JSONList[T]{}
		return nil
	}
	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("JSONList: parse: %w", err)
	}
	*l = out
	return nil
}
