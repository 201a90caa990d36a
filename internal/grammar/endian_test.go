package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEndian(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw  string
		want Endian
	}{
		{"little", Little},
		{"Little", Little},
		{"  BIG  ", Big},
		{"big", Big},
	}
	for _, c := range cases {
		got, err := normalizeEndian(c.raw)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestNormalizeEndianRejectsUnknown(t *testing.T) {
	t.Parallel()
	_, err := normalizeEndian("middle")
	assert.Error(t, err)
}

func TestResolveEndianPriorityChain(t *testing.T) {
	t.Parallel()
	little, big := Little, Big

	e, src := ResolveEndian(&big, &little, &little, Little)
	assert.Equal(t, Big, e)
	assert.Equal(t, SourceField, src)

	e, src = ResolveEndian(nil, &big, &little, Little)
	assert.Equal(t, Big, e)
	assert.Equal(t, SourceType, src)

	e, src = ResolveEndian(nil, nil, &big, Little)
	assert.Equal(t, Big, e)
	assert.Equal(t, SourceParent, src)

	e, src = ResolveEndian(nil, nil, nil, Big)
	assert.Equal(t, Big, e)
	assert.Equal(t, SourceRoot, src)

	e, src = ResolveEndian(nil, nil, nil, "")
	assert.Equal(t, Little, e)
	assert.Equal(t, SourceDefault, src)
}
