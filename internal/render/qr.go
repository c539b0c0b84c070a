package render

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const qrPlaceholder = "[QR CODE INDISPONÍVEL]"

// QRCode turns url into block-character art, two modules per text row, each
// line centered at width. A QR failure degrades to a placeholder plus the
// beginning of the URL; it is never returned as an error.
func QRCode(url string, width int) []string {
	if url == "" {
		return []string{CenterText(qrPlaceholder, width)}
	}
	q, err := qrcode.New(url, qrcode.Low)
	if err != nil {
		return qrFallback(url, width)
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()

	lines := make([]string, 0, (len(bitmap)+1)/2)
	for y := 0; y < len(bitmap); y += 2 {
		var b strings.Builder
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bottom := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteByte(' ')
			}
		}
		lines = append(lines, CenterText(b.String(), width))
	}
	return lines
}

func qrFallback(url string, width int) []string {
	shown := url
	if len([]rune(shown)) > width {
		shown = truncate(shown, width-3) + "..."
	}
	return []string{CenterText(qrPlaceholder, width), CenterText(shown, width)}
}
