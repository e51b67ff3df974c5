package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/schemasync/internal/models"
)

func seededRegistry() *Registry {
	r := New()
	r.Seed(&models.Snapshot{
		Models: []models.Entity{{
			APIID:       "Author",
			APIIDPlural: "Authors",
			DisplayName: "Author",
			Fields: []models.Field{
				{APIID: "name", ParentAPIID: "Author", Shape: models.SimpleShape{Type: "STRING"}},
			},
		}},
		Components: []models.Entity{{APIID: "Seo", DisplayName: "Seo"}},
		Enumerations: []models.Enumeration{{
			APIID:  "Genre",
			Values: []models.EnumValue{{APIID: "news", DisplayName: "News"}},
		}},
	})
	return r
}

func TestSeed(t *testing.T) {
	r := seededRegistry()

	assert.True(t, r.Has(KindModel, "Author"))
	assert.True(t, r.Has(KindComponent, "Seo"))
	assert.False(t, r.Has(KindModel, "Seo"), "namespaces must not leak into each other")
	assert.True(t, r.HasEnumeration("Genre"))

	rec, ok := r.Lookup(KindModel, "Author")
	require.True(t, ok)
	assert.True(t, rec.HasField("name"))
}

func TestSeedDoesNotAliasSnapshot(t *testing.T) {
	target := &models.Snapshot{
		Models: []models.Entity{{APIID: "Page", Fields: []models.Field{{APIID: "title"}}}},
	}
	r := New()
	r.Seed(target)

	require.True(t, r.RecordField(KindModel, "Page", models.Field{APIID: "slug"}))
	assert.Len(t, target.Models[0].Fields, 1)
}

func TestRegisterIfMissing(t *testing.T) {
	r := seededRegistry()

	rec, wasNew := r.RegisterIfMissing(KindModel, "Author", Record{DisplayName: "ignored"})
	assert.False(t, wasNew)
	assert.Equal(t, "Author", rec.DisplayName)
	assert.Len(t, rec.Fields, 1)

	rec, wasNew = r.RegisterIfMissing(KindModel, "Post", Record{
		APIIDPlural: "Posts",
		DisplayName: "Post",
		Fields:      []models.Field{{APIID: "dropped"}},
	})
	assert.True(t, wasNew)
	assert.Equal(t, "Post", rec.APIID)
	assert.Empty(t, rec.Fields, "new records start without fields")

	again, wasNew := r.RegisterIfMissing(KindModel, "Post", Record{})
	assert.False(t, wasNew)
	assert.Same(t, rec, again)
}

func TestRecordField(t *testing.T) {
	r := seededRegistry()

	assert.True(t, r.RecordField(KindModel, "Author", models.Field{APIID: "bio"}))
	assert.False(t, r.RecordField(KindModel, "Author", models.Field{APIID: "bio"}))
	assert.False(t, r.RecordField(KindModel, "Missing", models.Field{APIID: "bio"}))

	rec, _ := r.Lookup(KindModel, "Author")
	assert.Len(t, rec.Fields, 2)
}

func TestRegisterEnumerationIfMissing(t *testing.T) {
	r := seededRegistry()

	assert.False(t, r.RegisterEnumerationIfMissing(models.Enumeration{APIID: "Genre"}))
	assert.True(t, r.RegisterEnumerationIfMissing(models.Enumeration{APIID: "Mood"}))

	e, ok := r.Enumeration("Genre")
	require.True(t, ok)
	assert.Len(t, e.Values, 1, "existing enumeration must keep its values")
}

func TestAcquire(t *testing.T) {
	r := New()

	release, ok := r.Acquire("Post")
	require.True(t, ok)
	assert.True(t, r.InFlight("Post"))

	_, again := r.Acquire("Post")
	assert.False(t, again)

	release()
	assert.False(t, r.InFlight("Post"))

	release()
	assert.False(t, r.InFlight("Post"))

	_, ok = r.Acquire("Post")
	assert.True(t, ok)
}

func TestAcquireReleasedOnPanic(t *testing.T) {
	r := New()

	func() {
		defer func() { _ = recover() }()
		release, _ := r.Acquire("Post")
		defer release()
		panic("boom")
	}()

	assert.False(t, r.InFlight("Post"))
}

func TestSnapshotProjection(t *testing.T) {
	r := seededRegistry()
	r.RegisterIfMissing(KindModel, "Post", Record{DisplayName: "Post"})
	r.RecordField(KindModel, "Post", models.Field{APIID: "title"})
	r.RegisterEnumerationIfMissing(models.Enumeration{APIID: "Mood"})

	s := r.Snapshot()
	require.Len(t, s.Models, 2)
	assert.Equal(t, "Author", s.Models[0].APIID)
	assert.Equal(t, "Post", s.Models[1].APIID)
	assert.Len(t, s.Models[1].Fields, 1)
	assert.Len(t, s.Components, 1)
	assert.Len(t, s.Enumerations, 2)

	// Mutating the projection leaves the registry untouched.
	s.Models[1].Fields = append(s.Models[1].Fields, models.Field{APIID: "extra"})
	rec, _ := r.Lookup(KindModel, "Post")
	assert.Len(t, rec.Fields, 1)
}
