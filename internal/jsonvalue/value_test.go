package jsonvalue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("preserves member order and number text", func(t *testing.T) {
		input := `{"z":1,"a":[1.50,true,null,"x"],"m":{"b":2,"a":1e3}}`

		v, err := Parse([]byte(input))
		require.NoError(t, err)

		out, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, input, string(out))
	})

	t.Run("reports kinds", func(t *testing.T) {
		v, err := Parse([]byte(`{"s":"x","n":3,"b":false,"z":null,"a":[],"o":{}}`))
		require.NoError(t, err)

		kinds := map[string]Kind{}
		for _, m := range v.Members() {
			kinds[m.Key] = m.Value.Kind()
		}
		assert.Equal(t, map[string]Kind{
			"s": String, "n": Number, "b": Bool, "z": Null, "a": Array, "o": Object,
		}, kinds)
	})

	t.Run("duplicate keys keep first position and last value", func(t *testing.T) {
		v, err := Parse([]byte(`{"a":1,"b":2,"a":3}`))
		require.NoError(t, err)

		out, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, `{"a":3,"b":2}`, string(out))
	})

	t.Run("rejects invalid documents", func(t *testing.T) {
		for _, input := range []string{``, `{`, `{"a":}`, `[1,2`, `{"a":1} {"b":2}`, `nope`} {
			_, err := Parse([]byte(input))
			assert.Error(t, err, "input %q", input)
		}
	})

	t.Run("scalar documents", func(t *testing.T) {
		v, err := Parse([]byte(` "hello" `))
		require.NoError(t, err)
		s, ok := v.AsString()
		assert.True(t, ok)
		assert.Equal(t, "hello", s)
	})
}

func TestValueAccessors(t *testing.T) {
	v, err := Parse([]byte(`{"providers":{"kiwi":{"episodes":{"sub":[{"id":"x","number":1}]}}}}`))
	require.NoError(t, err)

	id, ok := v.Lookup("providers", "kiwi", "episodes", "sub", 0, "id")
	require.True(t, ok)
	s, _ := id.AsString()
	assert.Equal(t, "x", s)

	n, ok := v.Lookup("providers", "kiwi", "episodes", "sub", 0, "number")
	require.True(t, ok)
	num, _ := n.AsNumber()
	assert.Equal(t, json.Number("1"), num)

	_, ok = v.Lookup("providers", "arc")
	assert.False(t, ok)
	_, ok = v.Lookup("providers", "kiwi", "episodes", "sub", 5)
	assert.False(t, ok)

	id.SetString("y")
	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"providers":{"kiwi":{"episodes":{"sub":[{"id":"y","number":1}]}}}}`, string(out))
}

func TestObjectSet(t *testing.T) {
	obj := NewObject(Member{Key: "a", Value: NewInt(1)})
	obj.Set("b", NewString("two"))
	obj.Set("a", NewBool(true))
	obj.Set("c", nil)

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":true,"b":"two","c":null}`, string(out))
	assert.Equal(t, 3, obj.Len())
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{"list": []int{1, 2}, "name": "kiwi"})
	require.NoError(t, err)

	assert.Equal(t, Object, v.Kind())
	list, ok := v.Get("list")
	require.True(t, ok)
	assert.Equal(t, 2, list.Len())
}

func TestUnmarshalJSON(t *testing.T) {
	var holder struct {
		Data *Value `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"b":1,"a":2}}`), &holder))

	out, err := json.Marshal(holder.Data)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":2}`, string(out))
}

func TestWalk(t *testing.T) {
	v, err := Parse([]byte(`{"id":"root","list":[{"id":"a"},["nested",{"id":"b"}],"scalar"],"obj":{"title":"t"}}`))
	require.NoError(t, err)

	var keys []string
	Walk(v, func(key string, child *Value) {
		keys = append(keys, key+":"+child.Kind().String())
	})

	assert.Equal(t, []string{
		"id:string",
		"list:array",
		":object",
		"id:string",
		":array",
		":string",
		":object",
		"id:string",
		":string",
		"obj:object",
		"title:string",
	}, keys)
}

func TestWalkScalarRoot(t *testing.T) {
	called := false
	Walk(NewString("x"), func(string, *Value) { called = true })
	assert.False(t, called)
}
