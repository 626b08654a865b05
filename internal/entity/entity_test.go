package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_OverwritesAndAddsKeys(t *testing.T) {
	orig := Entity{
		Kind:  KindLight,
		ID:    5,
		State: Attributes{"on": false, "bri": float64(10)},
		Extra: Attributes{"type": "Extended color light"},
	}

	merged := Merge(orig, Attributes{"on": true, "custom": "x"})

	assert.Equal(t, true, merged.State["on"])
	assert.Equal(t, float64(10), merged.State["bri"])
	assert.Equal(t, "x", merged.State["custom"])
	assert.Equal(t, []string{"custom", "on"}, merged.Changed)

	// original untouched
	assert.Equal(t, false, orig.State["on"])
	assert.NotContains(t, orig.State, "custom")
	assert.Nil(t, orig.Changed)
}

func TestMerge_NilState(t *testing.T) {
	merged := Merge(Entity{Kind: KindGroup, ID: 1}, Attributes{"on": true})
	assert.Equal(t, Attributes{"on": true}, merged.State)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"bool", true, true, true},
		{"bool_differs", true, false, false},
		{"number", float64(254), float64(254), true},
		{"number_type_differs", float64(1), 1, false},
		{"string", "none", "none", true},
		{"xy", []any{0.3, 0.4}, []any{0.3, 0.4}, true},
		{"xy_differs", []any{0.3, 0.4}, []any{0.3, 0.5}, false},
		{"missing", nil, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestPayload_StampsTimeAndOverlaysExtra(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	e := Entity{
		Kind:  KindLight,
		ID:    5,
		State: Attributes{"on": true, "name": "state-name"},
		Extra: Attributes{"name": "Desk", "modelid": "LCT015"},
	}

	raw, err := e.Payload(now)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, true, got["on"])
	assert.Equal(t, "Desk", got["name"])
	assert.Equal(t, "LCT015", got["modelid"])
	assert.Equal(t, float64(1700000000123), got[TimeKey])
	assert.NotContains(t, e.State, TimeKey)
}
