package listapi

import (
	"fmt"
	"strings"
	"time"
)

// Item is one row of a collection. The store is schemaless from the client's
// point of view; accessors are lenient about the types it returns.
type Item map[string]interface{}

func (i Item) String(key string) string {
	v, ok := i[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// Bool returns the value of key as a flag. Missing keys default to def: the
// store omits fields that were never set, and callers need to distinguish
// "explicitly inactive" from "not filled in".
func (i Item) Bool(key string, def bool) bool {
	v, ok := i[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(t) {
		case "true", "yes", "1":
			return true
		case "false", "no", "0":
			return false
		}
		return def
	case float64:
		return t != 0
	default:
		return def
	}
}

func (i Item) Float(key string) float64 {
	v, ok := i[key]
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		var f float64
		if _, err := fmt.Sscanf(t, "%f", &f); err == nil {
			return f
		}
	}
	return 0
}

var timeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (i Item) Time(key string) (time.Time, bool) {
	s := i.String(key)
	if s == "" {
		return time.Time{}, false
	}
	for _, f := range timeFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
