package printing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_FramesJobAndTranscodes(t *testing.T) {
	out, err := Encode("AÇÃO ✓", true)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte{esc, '@', esc, 't', codePage850}))
	assert.True(t, bytes.HasSuffix(out, []byte{gs, 'V', 66, 0}))
	// Ç = 0x80, Ã = 0xC7 in CP850; the check mark has no mapping and
	// collapses into a single substitute byte.
	assert.True(t, bytes.Contains(out, []byte{'A', 0x80, 0xC7, 'O', ' '}))
	assert.Len(t, out, 5+6+4+4)
}

func TestEncode_NoCut(t *testing.T) {
	out, err := Encode("ok", false)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(out, []byte{gs, 'V'}))
}

func TestParseSystemPrinters(t *testing.T) {
	list, addrs, err := ParseSystemPrinters("Epson=192.168.0.10:9100,default; Bematech=/dev/usb/lp0")
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, SystemPrinter{Name: "Epson", IsDefault: true}, list[0])
	assert.Equal(t, "Bematech", list[1].Name)
	assert.Equal(t, "/dev/usb/lp0", addrs["Bematech"])
	assert.True(t, endpoint{address: addrs["Bematech"]}.isDevice())
}

func TestParseSystemPrinters_Invalid(t *testing.T) {
	_, _, err := ParseSystemPrinters("Epson")
	assert.Error(t, err)
}
