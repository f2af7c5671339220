package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type (
	MetadataJSON map[string]interface{}
	ToolsJSON    []ToolDefinition
)

// ToolDefinition is a function the client exposes to the generation backend.
type ToolDefinition struct {
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

func (m MetadataJSON) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *MetadataJSON) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, err := toBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, m)
}

func (t ToolsJSON) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *ToolsJSON) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	bytes, err := toBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, t)
}

func toBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type for JSON column: %T", value)
	}
}
