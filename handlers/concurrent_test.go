// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/fieldbook/models"
	"github.com/danielhkuo/fieldbook/testutil"
)

// TestConcurrentEntryWrites verifies that simultaneous writes to the same
// (entity, field) leave exactly one stored value
func TestConcurrentEntryWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewEntityHandler(db, testutil.GetTestConfig())

	catID := testutil.CreateTestCategory(t, db, "Produce")
	groupID := testutil.CreateTestGroup(t, db, catID, "Lettuce")
	fieldID := testutil.CreateTestField(t, db, groupID, "Weight", "Number")
	entityID := testutil.CreateTestEntity(t, db, groupID)

	numWriters := 10
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func(weight int) {
			defer wg.Done()

			req := testutil.MakeRequest("PUT", "/entities/"+entityID+"/entries/"+fieldID,
				models.WriteEntryRequest{Value: weight}, nil)
			req.SetPathValue("id", entityID)
			req.SetPathValue("field_id", fieldID)
			w := httptest.NewRecorder()

			h.WriteEntry(w, req)

			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(100 + i)
	}

	wg.Wait()

	if int(successCount.Load()) != numWriters {
		t.Errorf("Expected %d successful writes, got %d", numWriters, successCount.Load())
	}

	if n := testutil.CountRows(t, db, "entry_number"); n != 1 {
		t.Errorf("Expected exactly 1 stored entry, got %d", n)
	}
}

// TestConcurrentCategoryCreates verifies that when several goroutines create
// the same category, exactly one succeeds
func TestConcurrentCategoryCreates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewCatalogHandler(db, testutil.GetTestConfig())

	numAttempts := 5
	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := httptest.NewRecorder()
			h.CreateCategory(w, testutil.MakeRequest("POST", "/categories", models.NameRequest{Name: "Livestock"}, nil))

			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}()
	}

	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 created, got %d", created.Load())
	}
	if conflicts.Load() != int32(numAttempts-1) {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflicts.Load())
	}
	if n := testutil.CountRows(t, db, "category"); n != 1 {
		t.Errorf("Expected 1 category row, got %d", n)
	}
}
