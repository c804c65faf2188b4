package vectorstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
	"github.com/sqlscribe/sqlscribe/pkg/testhelpers"
	"github.com/sqlscribe/sqlscribe/pkg/vectorstore"
)

// axisVector returns a 768-dimension unit vector along the given axis,
// matching the vector(768) column width.
func axisVector(axis int) []float32 {
	v := make([]float32, 768)
	v[axis] = 1
	return v
}

func TestStoreIntegration_UpsertReplacesDocument(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()
	store := vectorstore.NewStore(db.Pool)

	collection, err := store.EnsureCollection(ctx, "upsert_replace_test", nil)
	if err != nil {
		t.Fatalf("ensure collection: %v", err)
	}

	if err := store.Upsert(ctx, collection, "gen-1", axisVector(0), "first question",
		map[string]any{"feedback": "accepted"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.Upsert(ctx, collection, "gen-1", axisVector(1), "revised question",
		map[string]any{"feedback": "rejected"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	doc, err := store.Get(ctx, collection, "gen-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Document != "revised question" {
		t.Errorf("expected replaced document text, got %q", doc.Document)
	}
	if doc.Metadata["feedback"] != "rejected" {
		t.Errorf("expected replaced metadata, got %v", doc.Metadata)
	}
	if doc.Embedding[1] != 1 || doc.Embedding[0] != 0 {
		t.Error("expected the replacement embedding, got the original")
	}

	exists, err := store.Exists(ctx, collection, "gen-1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("document should exist after upsert")
	}
}

func TestStoreIntegration_GetNotFound(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()
	store := vectorstore.NewStore(db.Pool)

	collection, err := store.EnsureCollection(ctx, "get_missing_test", nil)
	if err != nil {
		t.Fatalf("ensure collection: %v", err)
	}

	_, err = store.Get(ctx, collection, "no-such-doc")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreIntegration_NearestOrdering(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()
	store := vectorstore.NewStore(db.Pool)

	collection, err := store.EnsureCollection(ctx, "nearest_order_test", nil)
	if err != nil {
		t.Fatalf("ensure collection: %v", err)
	}

	// exact has cosine distance 0 to the query, diagonal ~0.29, orthogonal 1.
	diagonal := make([]float32, 768)
	diagonal[0] = 0.7071
	diagonal[1] = 0.7071

	docs := map[string][]float32{
		"exact":      axisVector(0),
		"diagonal":   diagonal,
		"orthogonal": axisVector(1),
	}
	for id, embedding := range docs {
		if err := store.Upsert(ctx, collection, id, embedding, "q "+id,
			map[string]any{"query_id": id}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	neighbors, err := store.Nearest(ctx, collection, axisVector(0), 3)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if len(neighbors) != 3 {
		t.Fatalf("expected 3 neighbors, got %d", len(neighbors))
	}

	wantOrder := []string{"exact", "diagonal", "orthogonal"}
	for i, want := range wantOrder {
		if neighbors[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, neighbors[i].ID)
		}
	}
	if neighbors[0].Distance > 0.001 {
		t.Errorf("exact match should have near-zero distance, got %v", neighbors[0].Distance)
	}
	if neighbors[2].Distance < 0.9 {
		t.Errorf("orthogonal vector should have distance near 1, got %v", neighbors[2].Distance)
	}
}
