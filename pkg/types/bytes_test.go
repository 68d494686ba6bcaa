package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes_Humanized_Boundaries(t *testing.T) {
	cases := []struct {
		in   Bytes
		want string
	}{
		{Bytes(0), "0 B"},
		{Bytes(1023), "1023 B"},         // just below 1 KiB
		{Bytes(1024), "1.00 KB"},        // exactly 1 KiB
		{Bytes(1024 * 1024), "1.00 MB"}, // exactly 1 MiB
		{Bytes(1536 * 1024 * 1024), "1.50 GB"},
		{Bytes(1 << 40), "1.00 TB"},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("case_%d_%d", i, uint64(tc.in)), func(t *testing.T) {
			require.Equal(t, tc.want, tc.in.Humanized())
		})
	}
}

func TestBytes_String(t *testing.T) {
	assert.Equal(t, "0", Bytes(0).String())
	assert.Equal(t, "4096", Bytes(4096).String())
	assert.Equal(t, "18446744073709551615", Bytes(^uint64(0)).String())
}

func TestToBytes(t *testing.T) {
	assert.Equal(t, Bytes(12), ToBytes(12))
	assert.Equal(t, Bytes(12), ToBytes(int64(12)))
	assert.Equal(t, Bytes(12), ToBytes(uint64(12)))
	// negative sizes (e.g. from a signed stat field) clamp to zero
	assert.Equal(t, Bytes(0), ToBytes(-1))
}
