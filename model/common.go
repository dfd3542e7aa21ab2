package model

import (
	"database/sql/driver"
	"errors"

	jsoniter "github.com/json-iterator/go"
)

type PagingMeta struct {
	Page   int                    `json:"page"`
	Count  int64                  `json:"count"`
	Limit  int                    `json:"limit"`
	Order  string                 `json:"order"`
	Filter map[string]interface{} `json:"filter"`
}

type GeneratedFile struct {
	Type     string `json:"filetype"`
	DataType string `json:"datatype"`
	Data     []byte `json:"data"`
}

// JSONMap is a jsonb column decoded into a flat map
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	var json = jsoniter.ConfigCompatibleWithStandardLibrary
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("jsonmap: unsupported type")
	}
	var json = jsoniter.ConfigCompatibleWithStandardLibrary
	out := JSONMap{}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// Bool returns the boolean stored under key or the given default
func (m JSONMap) Bool(key string, def bool) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}
