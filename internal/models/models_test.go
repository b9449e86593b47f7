package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		parsed, err := ParseTimeOfDay("08:30")
		require.NoError(t, err)
		assert.Equal(t, TimeOfDay{Hour: 8, Minute: 30}, parsed)
		assert.Equal(t, "08:30", parsed.String())
		assert.Equal(t, 510, parsed.Minutes())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseTimeOfDay("noon")
		assert.Error(t, err)
	})

	t.Run("rejects out of range", func(t *testing.T) {
		for _, s := range []string{"24:00", "12:60", "-1:30"} {
			_, err := ParseTimeOfDay(s)
			assert.Error(t, err, s)
		}
	})
}

func TestTimeOfDayJSON(t *testing.T) {
	raw, err := json.Marshal(TimeOfDay{Hour: 22, Minute: 5})
	require.NoError(t, err)
	assert.Equal(t, `"22:05"`, string(raw))

	var window TimeWindow
	require.NoError(t, json.Unmarshal([]byte(`{"from":"22:00","to":"06:00"}`), &window))
	assert.Equal(t, TimeOfDay{Hour: 22}, window.From)
	assert.Equal(t, TimeOfDay{Hour: 6}, window.To)

	var bad TimeOfDay
	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &bad))
}
