package computer

import (
	"testing"

	"github.com/go-rod/rod/lib/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapKey(t *testing.T) {
	t.Run("should map X11 names case-insensitively", func(t *testing.T) {
		key, err := mapKey("Return")

		require.NoError(t, err)
		assert.Equal(t, input.Enter, key)
	})

	t.Run("should map super to the meta key", func(t *testing.T) {
		key, err := mapKey("super")

		require.NoError(t, err)
		assert.Equal(t, input.MetaLeft, key)
	})

	t.Run("should reject unknown keys", func(t *testing.T) {
		_, err := mapKey("hyper")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unrecognized key")
	})
}

func TestParseCombo(t *testing.T) {
	t.Run("should split a combo preserving order", func(t *testing.T) {
		keys, err := parseCombo("ctrl+shift+t")

		require.NoError(t, err)
		assert.Equal(t, []input.Key{input.ControlLeft, input.ShiftLeft, input.KeyT}, keys)
	})

	t.Run("should handle a single key", func(t *testing.T) {
		keys, err := parseCombo("Page_Down")

		require.NoError(t, err)
		assert.Equal(t, []input.Key{input.PageDown}, keys)
	})

	t.Run("should fail when any part is unknown", func(t *testing.T) {
		_, err := parseCombo("ctrl+banana")

		assert.Error(t, err)
	})
}
