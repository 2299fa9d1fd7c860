package ml

import "encoding/json"

// FeatureRecord is a sparse named-value input record. Missing or
// wrongly-typed fields fall back to the per-call default; no further
// validation is applied.
type FeatureRecord map[string]interface{}

func (r FeatureRecord) Float(key string, def float64) float64 {
	v, ok := r[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
		return def
	default:
		return def
	}
}

func (r FeatureRecord) String(key, def string) string {
	v, ok := r[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func (r FeatureRecord) Int(key string, def int) int {
	return int(r.Float(key, float64(def)))
}
