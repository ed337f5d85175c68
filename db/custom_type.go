package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap stores an arbitrary key-value document in a jsonb column. Used for
// ticket form answers, which we persist verbatim without interpreting.
type JSONMap map[string]any

// Implement driver.Valuer so gorm can write the map as jsonb
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Implement sql.Scanner so gorm can read jsonb back into the map
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}

	return json.Unmarshal(data, m)
}
