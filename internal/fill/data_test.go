package fill

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataFromJSONPreservesDocumentOrder(t *testing.T) {
	d, err := DataFromJSON([]byte(`{"zeta": "1", "alpha": "2", "mid": "3"}`))
	require.NoError(t, err)
	require.Equal(t, []string{"zeta", "alpha", "mid"}, d.Keys())

	v, ok := d.Get("alpha")
	require.True(t, ok)
	require.Equal(t, "2", v)
}

func TestDataFromJSONScalarCoercion(t *testing.T) {
	d, err := DataFromJSON([]byte(`{"age": 30, "subscribed": true, "score": 4.5}`))
	require.NoError(t, err)

	v, _ := d.Get("age")
	require.Equal(t, "30", v)
	v, _ = d.Get("subscribed")
	require.Equal(t, "true", v)
	v, _ = d.Get("score")
	require.Equal(t, "4.5", v)
}

func TestDataFromJSONRejectsNonScalar(t *testing.T) {
	_, err := DataFromJSON([]byte(`{"tags": ["a", "b"]}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be scalar")

	_, err = DataFromJSON([]byte(`["not", "an", "object"]`))
	require.Error(t, err)
}

func TestDataFromMapSortsKeys(t *testing.T) {
	d := DataFromMap(map[string]string{"b": "2", "a": "1", "c": "3"})
	require.Equal(t, []string{"a", "b", "c"}, d.Keys())
}

func TestDataSetKeepsFirstPosition(t *testing.T) {
	d := NewData()
	d.Set("one", "1")
	d.Set("two", "2")
	d.Set("one", "updated")
	require.Equal(t, []string{"one", "two"}, d.Keys())

	v, _ := d.Get("one")
	require.Equal(t, "updated", v)
	require.Equal(t, 2, d.Len())
}
