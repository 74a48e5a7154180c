package respconn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecPool_GetPutReuse(t *testing.T) {
	p, err := NewCodecPool(MaxIdle(2))
	require.NoError(t, err)

	pair := p.Get()
	require.NotNil(t, pair.dec)
	require.NotNil(t, pair.agg)

	require.NoError(t, p.Put(pair))

	again := p.Get()
	assert.Same(t, pair, again)
}

func TestNewCodecPool_RejectsNonPositiveMaxIdle(t *testing.T) {
	_, err := NewCodecPool(MaxIdle(0))
	assert.Error(t, err)
}
