package internal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_UnmarshalDefaultsVisible(t *testing.T) {
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","type":"food","name":"Eggs","calories":300}`), &e))
	assert.True(t, e.Visible)
	assert.Equal(t, 300, e.Calories)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"b","calories":100,"visible":false}`), &e))
	assert.False(t, e.Visible)
	assert.Equal(t, "b", e.ID)
}

func TestEntry_UnmarshalSliceDefaultsVisible(t *testing.T) {
	var list []Entry
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a"},{"id":"b","visible":false},{"id":"c","visible":true}]`), &list))
	require.Len(t, list, 3)
	assert.True(t, list[0].Visible)
	assert.False(t, list[1].Visible)
	assert.True(t, list[2].Visible)
}
