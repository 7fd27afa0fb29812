package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// The types in this file are stored as JSONB columns.

func scanJSON(dst interface{}, src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// StringList is a JSONB-backed list of strings.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return jsonValue([]string(l))
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON((*[]string)(l), src)
}

// CountMap is a JSONB-backed string -> count aggregate.
type CountMap map[string]int

func (m CountMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return jsonValue(map[string]int(m))
}

func (m *CountMap) Scan(src interface{}) error {
	return scanJSON((*map[string]int)(m), src)
}

func (c Classification) Value() (driver.Value, error) { return jsonValue(c) }

func (c *Classification) Scan(src interface{}) error { return scanJSON(c, src) }

func (p AIPrediction) Value() (driver.Value, error) { return jsonValue(p) }

func (p *AIPrediction) Scan(src interface{}) error { return scanJSON(p, src) }

func (u UserCorrection) Value() (driver.Value, error) { return jsonValue(u) }

func (u *UserCorrection) Scan(src interface{}) error { return scanJSON(u, src) }

func (c ExportCriteria) Value() (driver.Value, error) { return jsonValue(c) }

func (c *ExportCriteria) Scan(src interface{}) error { return scanJSON(c, src) }

func (s ExportStats) Value() (driver.Value, error) { return jsonValue(s) }

func (s *ExportStats) Scan(src interface{}) error { return scanJSON(s, src) }

func (f CorrectedFieldList) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return jsonValue([]CorrectableField(f))
}

func (f *CorrectedFieldList) Scan(src interface{}) error {
	return scanJSON((*[]CorrectableField)(f), src)
}

func (f IntelligenceFields) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return jsonValue([]IntelligenceField(f))
}

func (f *IntelligenceFields) Scan(src interface{}) error {
	return scanJSON((*[]IntelligenceField)(f), src)
}
