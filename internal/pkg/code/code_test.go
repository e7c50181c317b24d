package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		c, err := Generate()
		require.NoError(t, err)
		assert.Len(t, c, Length)
		for _, r := range c {
			assert.True(t, r >= '0' && r <= '9', "code %q contains non-digit", c)
		}
		seen[c] = struct{}{}
	}
	// 200 draws from 10000 values collide sometimes, but not all of them.
	assert.Greater(t, len(seen), 100)
}
