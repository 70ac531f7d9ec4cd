package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_States(t *testing.T) {
	var unset Field[string]
	assert.False(t, unset.IsSet())
	_, ok := unset.Any()
	assert.False(t, ok)

	set := Set("x")
	v, ok := set.Value()
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	assert.False(t, set.IsNull())

	null := Null[string]()
	assert.True(t, null.IsSet())
	assert.True(t, null.IsNull())
	_, ok = null.Value()
	assert.False(t, ok)
	got, ok := null.Any()
	assert.True(t, ok)
	assert.Nil(t, got)

	assert.False(t, FromPtr[int](nil).IsSet())
	n := 3
	assert.Equal(t, Set(3), FromPtr(&n))
}

func TestField_UnmarshalJSON(t *testing.T) {
	type body struct {
		Name Field[string] `json:"name"`
		Age  Field[int]    `json:"age"`
	}

	var b body
	require.NoError(t, json.Unmarshal([]byte(`{"name": null}`), &b))
	assert.True(t, b.Name.IsNull())
	assert.False(t, b.Age.IsSet())

	b = body{}
	require.NoError(t, json.Unmarshal([]byte(`{"name": "ada", "age": 36}`), &b))
	name, ok := b.Name.Value()
	assert.True(t, ok)
	assert.Equal(t, "ada", name)
	age, ok := b.Age.Value()
	assert.True(t, ok)
	assert.Equal(t, 36, age)

	assert.Error(t, json.Unmarshal([]byte(`{"age": "old"}`), &b))
}
