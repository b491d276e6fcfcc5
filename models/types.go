// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ValueType is the fixed set of field types.
type ValueType string

const (
	TypeNumber  ValueType = "Number"
	TypeText    ValueType = "Text"
	TypeBoolean ValueType = "Boolean"
	TypeEnum    ValueType = "Enum"
)

// ParseValueType accepts the canonical names and the legacy Double/String
// spellings, case-insensitively.
func ParseValueType(s string) (ValueType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "number", "double":
		return TypeNumber, true
	case "text", "string":
		return TypeText, true
	case "boolean", "bool":
		return TypeBoolean, true
	case "enum":
		return TypeEnum, true
	}
	return "", false
}

// DeleteResult distinguishes a real delete from a no-op. Both are success.
type DeleteResult string

const (
	Deleted       DeleteResult = "deleted"
	AlreadyAbsent DeleteResult = "already_absent"
)

// Value is one recorded attribute value: NumberValue, BoolValue or TextValue.
type Value interface {
	Type() ValueType
	String() string
}

type NumberValue float64

func (NumberValue) Type() ValueType { return TypeNumber }

// String renders the shortest exact decimal form: 100 -> "100",
// 2.50 -> "2.5", 1e-7 -> "0.0000001".
func (v NumberValue) String() string { return strconv.FormatFloat(float64(v), 'f', -1, 64) }

type BoolValue bool

func (BoolValue) Type() ValueType  { return TypeBoolean }
func (v BoolValue) String() string { return strconv.FormatBool(bool(v)) }

// TextValue holds both Text and Enum values.
type TextValue string

func (TextValue) Type() ValueType  { return TypeText }
func (v TextValue) String() string { return string(v) }

// DecodeValue rebuilds a tagged value from its JSON form using the field
// type it was recorded under.
func DecodeValue(vt ValueType, raw json.RawMessage) (Value, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch vt {
	case TypeNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, errors.Wrap(err, "invalid number value")
		}
		return NumberValue(n), nil
	case TypeBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, errors.Wrap(err, "invalid boolean value")
		}
		return BoolValue(b), nil
	case TypeText, TypeEnum:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.Wrap(err, "invalid text value")
		}
		return TextValue(s), nil
	}
	return nil, errors.Newf("unknown value type %q", vt)
}

// Domain types

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Group struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
}

type Field struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	Name        string    `json:"name"`
	ValueType   ValueType `json:"value_type"`
	Units       *string   `json:"units,omitempty"`
	EnumOptions []string  `json:"enum_options,omitempty"`
}

type Entity struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`
}

type Entry struct {
	ID       string    `json:"id"`
	EntityID string    `json:"entity_id"`
	FieldID  string    `json:"field_id"`
	Type     ValueType `json:"type"`
	Value    Value     `json:"value"`
	Date     string    `json:"date"`
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var aux struct {
		plain
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v, err := DecodeValue(aux.Type, aux.Value)
	if err != nil {
		return err
	}
	*e = Entry(aux.plain)
	e.Value = v
	return nil
}

// Attribute is one field of a consolidated entity view.
type Attribute struct {
	Value   Value     `json:"value"`
	Type    ValueType `json:"type"`
	Date    string    `json:"date"`
	EntryID string    `json:"entry_id"`
}

func (a *Attribute) UnmarshalJSON(data []byte) error {
	type plain Attribute
	var aux struct {
		plain
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v, err := DecodeValue(aux.Type, aux.Value)
	if err != nil {
		return err
	}
	*a = Attribute(aux.plain)
	a.Value = v
	return nil
}

// EntityAttributes is an entity with its attributes keyed by field name.
type EntityAttributes struct {
	EntityID   string               `json:"entity_id"`
	GroupID    string               `json:"group_id"`
	Attributes map[string]Attribute `json:"attributes"`
}

// Request types

type NameRequest struct {
	Name string `json:"name"`
}

type CreateGroupRequest struct {
	CategoryName string `json:"category_name"`
	Name         string `json:"name"`
}

type CreateFieldRequest struct {
	GroupName   string   `json:"group_name"`
	Name        string   `json:"name"`
	ValueType   string   `json:"value_type"`
	Units       *string  `json:"units,omitempty"`
	EnumOptions []string `json:"enum_options,omitempty"`
}

type UpdateFieldRequest struct {
	Name        string   `json:"name"`
	ValueType   string   `json:"value_type"`
	Units       *string  `json:"units,omitempty"`
	EnumOptions []string `json:"enum_options,omitempty"`
}

// EntryInput is one value to record; Value may be a JSON number, bool or string.
type EntryInput struct {
	FieldID string      `json:"field_id"`
	Value   interface{} `json:"value"`
	Date    string      `json:"date,omitempty"`
}

type CreateEntityRequest struct {
	GroupName string       `json:"group_name"`
	Entries   []EntryInput `json:"entries"`
}

type WriteEntryRequest struct {
	Value interface{} `json:"value"`
	Date  string      `json:"date,omitempty"`
}

// Response types

// EntryFailure is one rejected item of a batch write.
type EntryFailure struct {
	FieldID string `json:"field_id"`
	Kind    string `json:"kind"`
	Error   string `json:"error"`
}

type CreateEntityResponse struct {
	EntityID          string         `json:"entity_id"`
	GroupID           string         `json:"group_id"`
	GroupName         string         `json:"group_name"`
	SuccessfulEntries []Entry        `json:"successful_entries"`
	FailedEntries     []EntryFailure `json:"failed_entries,omitempty"`
}

type DeleteResponse struct {
	ID     string       `json:"id"`
	Result DeleteResult `json:"result"`
}

// QueryResponse is returned by the DSL and natural-language endpoints.
// DSL always holds the text that was executed.
type QueryResponse struct {
	DSL       string             `json:"dsl"`
	GroupID   string             `json:"group_id"`
	GroupName string             `json:"group_name"`
	Entities  []EntityAttributes `json:"entities"`
}

// Error response

type ErrorResponse struct {
	Error   string      `json:"error"`
	Kind    string      `json:"kind,omitempty"`
	Message string      `json:"message,omitempty"`
	Hint    string      `json:"hint,omitempty"`
	DSL     string      `json:"dsl,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
