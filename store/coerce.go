// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/danielhkuo/fieldbook/apperr"
	"github.com/danielhkuo/fieldbook/models"
)

// DateLayout is the format of entry dates.
const DateLayout = "2006-01-02"

// Coerce converts a raw input value to the tagged value for field f.
// Enum values must be one of the field's options.
func Coerce(f models.Field, raw interface{}) (models.Value, error) {
	if raw == nil {
		return nil, apperr.New(apperr.KindCoercion, "value for field %q is required", f.Name)
	}

	switch f.ValueType {
	case models.TypeNumber:
		n, ok := toNumber(raw)
		if !ok {
			return nil, apperr.New(apperr.KindCoercion, "field %q expects a number, got %v", f.Name, raw)
		}
		return models.NumberValue(n), nil

	case models.TypeBoolean:
		b, ok := toBool(raw)
		if !ok {
			return nil, errors.WithHint(
				apperr.New(apperr.KindCoercion, "field %q expects a boolean, got %v", f.Name, raw),
				"use true, false, 1 or 0",
			)
		}
		return models.BoolValue(b), nil

	case models.TypeText:
		s, ok := toText(raw)
		if !ok {
			return nil, apperr.New(apperr.KindCoercion, "field %q expects text, got %T", f.Name, raw)
		}
		return models.TextValue(s), nil

	case models.TypeEnum:
		s, ok := toText(raw)
		if ok {
			s = strings.TrimSpace(s)
			for _, o := range f.EnumOptions {
				if o == s {
					return models.TextValue(s), nil
				}
			}
		}
		return nil, errors.WithHintf(
			apperr.New(apperr.KindInvalidEnumValue, "%v is not an option of field %q", raw, f.Name),
			"allowed: %s", strings.Join(f.EnumOptions, ", "),
		)
	}
	return nil, apperr.New(apperr.KindInvalidType, "field %q has unknown value type %q", f.Name, f.ValueType)
}

// ParseDate validates a YYYY-MM-DD date. An empty date is today.
func ParseDate(date string, now func() time.Time) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return now().Format(DateLayout), nil
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", apperr.New(apperr.KindCoercion, "invalid date %q, expected YYYY-MM-DD", date)
	}
	return t.Format(DateLayout), nil
}

func toNumber(raw interface{}) (float64, bool) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func toBool(raw interface{}) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
		return false, false
	}
	if n, ok := toNumber(raw); ok {
		switch n {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return false, false
}

func toText(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	}
	if n, ok := toNumber(raw); ok {
		return models.NumberValue(n).String(), true
	}
	return "", false
}
