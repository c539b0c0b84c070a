package printing

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ESC/POS command bytes
const (
	esc = 0x1B
	gs  = 0x1D
	dle = 0x10
	eot = 0x04
	lf  = 0x0A
)

// codePage850 is the ESC t index of PC850 on Epson-compatible printers.
const codePage850 = 2

// paperEndMask flags "paper end detected" in the DLE EOT 4 status byte.
const paperEndMask = 0x60

var statusRequest = []byte{dle, eot, 4}

// Encode turns rendered text into an ESC/POS job: init, code page 850,
// the text transcoded to CP850, a short feed and an optional partial cut.
// Runes missing from CP850 print as the code page's substitute byte.
func Encode(text string, cut bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{esc, '@'})
	buf.Write([]byte{esc, 't', codePage850})

	enc := encoding.ReplaceUnsupported(charmap.CodePage850.NewEncoder())
	body, err := enc.Bytes([]byte(text))
	if err != nil {
		return nil, err
	}
	buf.Write(body)

	buf.Write([]byte{lf, lf, lf, lf})
	if cut {
		buf.Write([]byte{gs, 'V', 66, 0})
	}
	return buf.Bytes(), nil
}
