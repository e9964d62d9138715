package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_String(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want string
	}{
		{name: "root", path: nil, want: "$"},
		{name: "single key", path: Path{Key("items")}, want: "items"},
		{
			name: "mixed",
			path: Path{Key("items"), Index(3), Key("content"), Key("parameters"), Index(0)},
			want: "items[3].content.parameters[0]",
		},
		{name: "index at root", path: Path{Index(1), Key("name")}, want: "[1].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.path.String())
		})
	}
}

func TestPath_Pointer(t *testing.T) {
	p := Path{Key("items"), Index(2), Key("a/b~c")}
	assert.Equal(t, "/items/2/a~1b~0c", p.Pointer())
	assert.Equal(t, "", Path(nil).Pointer())
}

func TestPath_ChildDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = Key("items")

	a := base.Child(Index(0))
	b := base.Child(Index(1))

	assert.Equal(t, "items[0]", a.String())
	assert.Equal(t, "items[1]", b.String())
	assert.Equal(t, "items", base.String())
}

func TestPath_Resolve(t *testing.T) {
	doc := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"name": "first"},
			map[string]interface{}{"name": "second"},
		},
	}

	node, err := Path{Key("items"), Index(1)}.ResolveNode(doc)
	require.NoError(t, err)
	assert.Equal(t, "second", node["name"])

	_, err = Path{Key("items"), Index(5)}.Resolve(doc)
	assert.ErrorContains(t, err, "index out of range")

	_, err = Path{Key("missing")}.Resolve(doc)
	assert.ErrorContains(t, err, "key not found")

	_, err = Path{Key("items"), Key("name")}.Resolve(doc)
	assert.ErrorContains(t, err, "expected object")

	_, err = Path{Key("items"), Index(0), Key("name")}.ResolveNode(doc)
	assert.ErrorContains(t, err, "not an object")
}

func TestFieldPath_GetSet(t *testing.T) {
	node := map[string]interface{}{
		"armActionContext": map[string]interface{}{"path": "{FunctionApp}/functions/x"},
	}
	f := ParseFieldPath("armActionContext.path")

	got, ok := f.Get(node)
	require.True(t, ok)
	assert.Equal(t, "{FunctionApp}/functions/x", got)
	assert.Equal(t, "/armActionContext/path", f.Pointer())

	require.NoError(t, f.Set(node, "rewritten"))
	got, _ = f.Get(node)
	assert.Equal(t, "rewritten", got)

	_, ok = ParseFieldPath("armActionContext.missing").Get(node)
	assert.False(t, ok)

	assert.Error(t, ParseFieldPath("url.inner").Set(node, "x"))
	assert.Error(t, FieldPath(nil).Set(node, "x"))
}

func TestFieldPath_Delete(t *testing.T) {
	node := map[string]interface{}{
		"criteriaData": []interface{}{},
		"ctx":          map[string]interface{}{"path": "x"},
	}

	ParseFieldPath("criteriaData").Delete(node)
	ParseFieldPath("ctx.path").Delete(node)
	ParseFieldPath("missing.deep").Delete(node)

	assert.NotContains(t, node, "criteriaData")
	assert.Empty(t, node["ctx"])
}
