// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/danielhkuo/fieldbook/cliparse"
	"github.com/danielhkuo/fieldbook/db"
	"github.com/google/uuid"
)

// SetupTestDB opens a private in-memory SQLite database with the full
// schema. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, db.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             cliparse.DefaultPort,
		DatabaseURL:      ":memory:",
		DatabaseType:     "sqlite",
		OpenAIBaseURL:    cliparse.DefaultOpenAIBaseURL,
		OpenAIModel:      cliparse.DefaultOpenAIModel,
		TranslateTimeout: time.Second,
		TranslateRPS:     100,
		TranslateBurst:   100,
	}
}

// CreateTestCategory inserts a category and returns its ID
func CreateTestCategory(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO category (id, name, name_key, created_at)
		VALUES ($1, $2, $3, $4)
	`, id, name, key(name), time.Now())
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return id
}

// CreateTestGroup inserts a group under categoryID and returns its ID
func CreateTestGroup(t *testing.T, conn *sql.DB, categoryID, name string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO asset_group (id, category_id, name, name_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, categoryID, name, key(name), time.Now())
	if err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}
	return id
}

// CreateTestField inserts a field and, for Enum fields, its options.
// valueType is one of "Number", "Text", "Boolean" or "Enum".
func CreateTestField(t *testing.T, conn *sql.DB, groupID, name, valueType string, options ...string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO field (id, group_id, name, name_key, value_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, groupID, name, key(name), valueType, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test field: %v", err)
	}

	for i, o := range options {
		_, err := conn.Exec(`
			INSERT INTO enum_option (field_id, option_value, position)
			VALUES ($1, $2, $3)
		`, id, o, i)
		if err != nil {
			t.Fatalf("Failed to create test enum option: %v", err)
		}
	}
	return id
}

// CreateTestEntity inserts an empty entity and returns its ID
func CreateTestEntity(t *testing.T, conn *sql.DB, groupID string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO entity (id, group_id, created_at) VALUES ($1, $2, $3)
	`, id, groupID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test entity: %v", err)
	}
	return id
}

// AddTestEntry records one value directly in the pivot table matching its
// Go type: float64 → entry_number, bool → entry_bool, string → entry_text.
func AddTestEntry(t *testing.T, conn *sql.DB, entityID, fieldID string, value interface{}, date string) string {
	t.Helper()

	var table string
	switch value.(type) {
	case float64:
		table = "entry_number"
	case bool:
		table = "entry_bool"
	case string:
		table = "entry_text"
	default:
		t.Fatalf("Unsupported test entry value %T", value)
	}

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO `+table+` (id, entity_id, field_id, value, entry_date)
		VALUES ($1, $2, $3, $4, $5)
	`, id, entityID, fieldID, value, date)
	if err != nil {
		t.Fatalf("Failed to create test entry: %v", err)
	}
	return id
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// key mirrors catalog.NormalizeName for seeded rows; catalog's own tests
// import this package, so it cannot import catalog.
func key(name string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return unicode.IsSpace(r) || r == '_'
	}), " ")
}
