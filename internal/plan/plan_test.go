package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/schemasync/internal/models"
)

func samplePlan() *Plan {
	p := New()
	p.Append(EnumerationInput{
		APIID:       "Genre",
		DisplayName: "Genre",
		Values:      []models.EnumValue{{APIID: "news", DisplayName: "News"}},
	})
	p.Append(ModelInput{APIID: "Article", APIIDPlural: "Articles", DisplayName: "Article"})
	p.Append(SimpleFieldInput{APIID: "title", ParentAPIID: "Article", Type: "STRING", DisplayName: "Title"})
	p.Append(EnumerableFieldInput{APIID: "category", ParentAPIID: "Article", EnumerationAPIID: "Genre", DisplayName: "Category"})
	p.Append(RelationalFieldInput{
		APIID:       "author",
		ParentAPIID: "Article",
		Type:        "RELATION",
		DisplayName: "Author",
		ReverseField: ReverseFieldInput{
			ModelAPIID:  "Author",
			APIID:       "articles",
			DisplayName: "Articles",
			IsList:      true,
		},
	})
	return p
}

func TestAppendAndCount(t *testing.T) {
	p := samplePlan()

	assert.Equal(t, 5, p.Len())
	assert.False(t, p.IsEmpty())
	assert.Equal(t, 1, p.Count(CreateModel))
	assert.Equal(t, 0, p.Count(CreateUnionField))
	assert.Equal(t, 1, p.Counts()[CreateRelationalField])

	ops := p.Operations()
	ops[0].Name = CreateUnionField
	assert.Equal(t, CreateEnumeration, p.Operations()[0].Name, "Operations must return a copy")
}

func TestJSONShape(t *testing.T) {
	p := New()
	p.Append(ModelInput{APIID: "Article", APIIDPlural: "Articles", DisplayName: "Article"})

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"operationName":"createModel","data":{"apiId":"Article","apiIdPlural":"Articles","displayName":"Article"}}]`,
		string(out))

	empty, err := json.Marshal(New())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestJSONDecodeRestoresTypedPayloads(t *testing.T) {
	original := samplePlan()
	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Plan
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original.Operations(), decoded.Operations())

	rel, ok := decoded.Operations()[4].Data.(RelationalFieldInput)
	require.True(t, ok, "payload should decode to a value type")
	assert.Equal(t, "Author", rel.ReverseField.ModelAPIID)
}

func TestJSONDecodeUnknownOperation(t *testing.T) {
	var p Plan
	err := json.Unmarshal([]byte(`[{"operationName":"deleteModel","data":{}}]`), &p)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestValidate(t *testing.T) {
	require.NoError(t, samplePlan().Validate())

	dup := samplePlan()
	dup.Append(ModelInput{APIID: "Article", DisplayName: "Article again"})
	err := dup.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `model "Article" already created`)

	missing := New()
	missing.Append(ComponentFieldInput{APIID: "seo", ParentAPIID: "Article"})
	err = missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty component reference")
}

func TestEncodeFormats(t *testing.T) {
	p := samplePlan()

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, p.Encode(&buf, FormatText))
		out := buf.String()
		assert.Contains(t, out, "Plan: 5 operation(s)")
		assert.Contains(t, out, "Article.category -> enum Genre")
		assert.Contains(t, out, "Article.author <-> Author.articles")
	})

	t.Run("text empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New().Encode(&buf, FormatText))
		assert.Contains(t, buf.String(), "in sync")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, p.Encode(&buf, FormatJSON))
		var decoded Plan
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, p.Len(), decoded.Len())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, p.Encode(&buf, FormatYAML))
		out := buf.String()
		assert.Contains(t, out, "operationName: createEnumeration")
		assert.Contains(t, out, "enumerationApiId: Genre")
	})

	t.Run("toon", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, p.Encode(&buf, FormatToon))
		assert.True(t, strings.Contains(buf.String(), "createModel"))
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

type recordingMutator struct {
	calls []Name
}

func (r *recordingMutator) CreateModel(ModelInput)             { r.calls = append(r.calls, CreateModel) }
func (r *recordingMutator) CreateComponent(ComponentInput)     { r.calls = append(r.calls, CreateComponent) }
func (r *recordingMutator) CreateEnumeration(EnumerationInput) { r.calls = append(r.calls, CreateEnumeration) }
func (r *recordingMutator) CreateSimpleField(SimpleFieldInput) { r.calls = append(r.calls, CreateSimpleField) }
func (r *recordingMutator) CreateEnumerableField(EnumerableFieldInput) {
	r.calls = append(r.calls, CreateEnumerableField)
}
func (r *recordingMutator) CreateComponentField(ComponentFieldInput) {
	r.calls = append(r.calls, CreateComponentField)
}
func (r *recordingMutator) CreateComponentUnionField(ComponentUnionFieldInput) {
	r.calls = append(r.calls, CreateComponentUnionField)
}
func (r *recordingMutator) CreateRelationalField(RelationalFieldInput) {
	r.calls = append(r.calls, CreateRelationalField)
}
func (r *recordingMutator) CreateUnionField(UnionFieldInput) { r.calls = append(r.calls, CreateUnionField) }

type bogusPayload struct{}

func (bogusPayload) OperationName() Name { return "bogus" }
func (bogusPayload) Refs() []Ref         { return nil }

func TestApply(t *testing.T) {
	m := &recordingMutator{}
	require.NoError(t, Apply(m, samplePlan()))
	assert.Equal(t, []Name{
		CreateEnumeration,
		CreateModel,
		CreateSimpleField,
		CreateEnumerableField,
		CreateRelationalField,
	}, m.calls)

	bad := New()
	bad.Append(bogusPayload{})
	err := Apply(&recordingMutator{}, bad)
	assert.True(t, errors.Is(err, ErrUnknownOperation))
}
