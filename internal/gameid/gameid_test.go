package gameid

import (
	"bytes"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	id := Generate()

	assert.Len(t, id, 26)
	require.NoError(t, Validate(id))
}

func TestGenerateUnique(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := Generate()
		require.False(t, ids[id], "duplicate ID generated: %s", id)
		ids[id] = true
	}
}

func TestGenerateTimeSorted(t *testing.T) {
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, Generate())
		time.Sleep(2 * time.Millisecond)
	}

	assert.True(t, sort.StringsAreSorted(ids), "ids should sort by creation time: %v", ids)
}

func TestGeneratorWithEntropy(t *testing.T) {
	g := NewGenerator(bytes.NewReader(bytes.Repeat([]byte{0xab}, 64)))
	id := g.Generate()

	require.NoError(t, Validate(id))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"too short", "abc", true},
		{"too long", "0123456789abcdefghjkmnpqrstv", true},
		{"invalid character", "0123456789abcdefghjkmnpqru", true},
		{"uppercase rejected", "0123456789ABCDEFGHJKMNPQRS", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc", Short("abc"))
	assert.Equal(t, "stvwxyz0", Short("0123456789abcdefghstvwxyz0"))
}
