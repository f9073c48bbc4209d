package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/model"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "pathlink.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sample(name string) *model.RawDocument {
	return &model.RawDocument{
		Name: name,
		Elements: []model.RawElement{
			{ID: "A", Kind: model.KindDataNode, X: 10, Y: 10, Width: 40, Height: 20},
			{ID: "L", Kind: model.KindLine, Topology: model.TopologyCurved, Points: []model.RawPoint{
				{X: 30, Y: 10, GraphRef: "A", RelX: 1},
				{X: 80, Y: 40},
				{X: 120, Y: 10, ArrowHead: model.ArrowTBar},
			}},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	var diags diag.List
	diags.Add("L", diag.KindDanglingReference, "point %d demoted", 1)
	diags.Add("A", diag.KindInvalidParameter, "bad size")
	require.NoError(t, db.SaveDocument(ctx, sample("p1"), diags))

	got, err := db.LoadDocument(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, sample("p1"), got)

	stored, err := db.Diagnostics(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, diags, stored)
}

func TestSaveReplaces(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	var diags diag.List
	diags.Add("L", diag.KindStructuralViolation, "x")
	require.NoError(t, db.SaveDocument(ctx, sample("p1"), diags))

	doc := sample("p1")
	doc.Elements = doc.Elements[:1]
	require.NoError(t, db.SaveDocument(ctx, doc, nil))

	got, err := db.LoadDocument(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, got.Elements, 1)

	stored, err := db.Diagnostics(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestListAndDelete(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	require.NoError(t, db.SaveDocument(ctx, sample("b"), nil))
	require.NoError(t, db.SaveDocument(ctx, sample("a"), nil))

	infos, err := db.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Name)
	assert.Equal(t, 2, infos[0].Elements)
	assert.False(t, infos[0].UpdatedAt.IsZero())

	require.NoError(t, db.DeleteDocument(ctx, "a"))
	assert.ErrorIs(t, db.DeleteDocument(ctx, "a"), ErrDocumentNotFound)

	_, err = db.LoadDocument(ctx, "a")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, err, diag.ErrNotFound)
}

func TestDeleteCascadesDiagnostics(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	var diags diag.List
	diags.Add("L", diag.KindStructuralViolation, "x")
	require.NoError(t, db.SaveDocument(ctx, sample("p"), diags))
	require.NoError(t, db.DeleteDocument(ctx, "p"))

	stored, err := db.Diagnostics(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestUnnamedDocument(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	err := db.SaveDocument(ctx, &model.RawDocument{}, nil)
	assert.ErrorIs(t, err, diag.ErrInvalidParameter)
}
