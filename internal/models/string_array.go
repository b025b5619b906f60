package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringArray is a list column such as a signal's features or requirements.
// It is stored as a JSON array of trimmed, non-blank entries. Rows edited by
// hand with one entry per line are read back as a list too.
type StringArray []string

// Compact trims every entry and drops the blank ones.
func (a StringArray) Compact() StringArray {
	out := make(StringArray, 0, len(a))
	for _, s := range a {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (a StringArray) Value() (driver.Value, error) {
	b, err := json.Marshal([]string(a.Compact()))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *StringArray) Scan(value interface{}) error {
	if a == nil {
		return fmt.Errorf("models.StringArray: Scan on nil pointer")
	}

	var raw string
	switch v := value.(type) {
	case nil:
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.StringArray: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*a = StringArray{}
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var arr StringArray
		if err := json.Unmarshal([]byte(raw), &arr); err != nil {
			return fmt.Errorf("models.StringArray: %w", err)
		}
		*a = arr.Compact()
		return nil
	}
	*a = StringArray(strings.Split(raw, "\n")).Compact()
	return nil
}
