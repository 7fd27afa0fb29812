package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"filewise/internal/domain"
)

// rawField is the loosely typed shape the classification service returns for
// an extracted field. Any member it does not list is dropped on decode.
type rawField struct {
	Key        string          `json:"key"`
	Label      string          `json:"label"`
	ValueType  string          `json:"valueType"`
	Value      json.RawMessage `json:"value"`
	Confidence *float64        `json:"confidence"`
	Category   string          `json:"category"`
}

// SanitizeFields converts the service's intelligence fields into tagged
// variants. It accepts either an array of fields or an object keyed by field
// key. Unknown value types become text, a missing confidence becomes 0 and
// values that do not fit their declared type fall back to text. Malformed
// input yields no fields rather than an error.
func SanitizeFields(raw json.RawMessage) []domain.IntelligenceField {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var fields []rawField
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil
		}
	case '{':
		var byKey map[string]rawField
		if err := json.Unmarshal(raw, &byKey); err != nil {
			return nil
		}
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			f := byKey[k]
			if f.Key == "" {
				f.Key = k
			}
			fields = append(fields, f)
		}
	default:
		return nil
	}

	out := make([]domain.IntelligenceField, 0, len(fields))
	for _, f := range fields {
		key := strings.TrimSpace(f.Key)
		if key == "" {
			continue
		}
		label := strings.TrimSpace(f.Label)
		if label == "" {
			label = key
		}
		vt, val := sanitizeValue(domain.NormalizeValueType(f.ValueType), f.Value)
		out = append(out, domain.IntelligenceField{
			Key:        key,
			Label:      label,
			ValueType:  vt,
			Value:      val,
			Confidence: clampConfidence(f.Confidence),
			Category:   strings.TrimSpace(f.Category),
		})
	}
	return out
}

func clampConfidence(c *float64) float64 {
	if c == nil || math.IsNaN(*c) {
		return 0
	}
	return math.Max(0, math.Min(1, *c))
}

// sanitizeValue decodes raw into the member its value type calls for.
func sanitizeValue(vt domain.ValueType, raw json.RawMessage) (domain.ValueType, domain.FieldValue) {
	var v interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			v = nil
		}
	}

	switch vt {
	case domain.ValueTypeNumber, domain.ValueTypeCurrency, domain.ValueTypePercentage:
		if n, ok := toNumber(v); ok {
			return vt, domain.FieldValue{Number: &n}
		}
		return domain.ValueTypeText, domain.FieldValue{Text: toText(v)}
	case domain.ValueTypeBoolean:
		if b, ok := toBool(v); ok {
			return vt, domain.FieldValue{Bool: &b}
		}
		return domain.ValueTypeText, domain.FieldValue{Text: toText(v)}
	case domain.ValueTypeArray:
		return vt, domain.FieldValue{Items: toItems(v)}
	default:
		return vt, domain.FieldValue{Text: toText(v)}
	}
}

func toNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case string:
		s := strings.NewReplacer(",", "", "$", "", "%", "", " ", "").Replace(t)
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func toBool(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y":
			return true, true
		case "false", "no", "n":
			return false, true
		}
	}
	return false, false
}

func toItems(v interface{}) []string {
	switch t := v.(type) {
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, e := range t {
			if s := toText(e); s != "" {
				items = append(items, s)
			}
		}
		return items
	case nil:
		return nil
	default:
		if s := toText(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

func toText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
