package lin

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPID(t *testing.T) {
	testCases := []struct {
		id  byte
		pid byte
	}{
		{0x00, 0x80},
		{0x01, 0xc1},
		{0x02, 0x42},
		{0x03, 0x03},
		{0x05, 0x85},
		{0x3c, 0x3c},
		{0x3d, 0x7d},
		{0x3f, 0xbf},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%02x", tc.id), func(t *testing.T) {
			pid := NewPID(tc.id)
			require.Equal(t, PID(tc.pid), pid)
			require.Equal(t, tc.id, pid.ID())
			require.True(t, pid.IsValid())
		})
	}
}

func TestPIDRoundTrip(t *testing.T) {
	for id := byte(0); id <= MaxFrameID; id++ {
		pid, err := ParsePID(byte(NewPID(id)))
		require.NoError(t, err)
		require.Equal(t, id, pid.ID())
	}
}

func TestParsePID(t *testing.T) {
	bit := func(b byte, n uint) int { return int(b>>n) & 1 }
	for n := 0; n < 256; n++ {
		b := byte(n)
		p0 := (bit(b, 0) + bit(b, 1) + bit(b, 2) + bit(b, 4)) % 2
		p1 := 1 - (bit(b, 1)+bit(b, 3)+bit(b, 4)+bit(b, 5))%2
		valid := bit(b, 6) == p0 && bit(b, 7) == p1
		pid, err := ParsePID(b)
		if valid {
			require.NoErrorf(t, err, "%02x", b)
			require.Equal(t, PID(b), pid)
		} else {
			require.Equalf(t, ErrInvalidPID, err, "%02x", b)
		}
	}
}
