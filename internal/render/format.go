// Package render lays out receipts, fiscal facsimiles, budgets and cash
// closure reports as fixed-width text for thermal printers.
//
// Every function here is pure: the same input always yields the same string.
package render

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	_ "time/tzdata" // America/Sao_Paulo must resolve on minimal images
)

const (
	DefaultTimeZone = "America/Sao_Paulo"
	DefaultLocale   = "pt-BR"
)

// TimeInfo is the client's presentation preference for dates.
type TimeInfo struct {
	TimeZone string
	Locale   string
}

var (
	supportedLocales = []language.Tag{
		language.BrazilianPortuguese,
		language.AmericanEnglish,
		language.Spanish,
	}
	localeMatcher = language.NewMatcher(supportedLocales)
	dateLayouts   = []string{
		"02/01/2006 15:04:05",
		"01/02/2006 03:04:05 PM",
		"02/01/2006 15:04:05",
	}
)

// CenterText left-pads s with floor((width-len)/2) spaces. Longer text is
// returned unchanged.
func CenterText(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", (width-n)/2) + s
}

// FormatCurrency renders v as "R$ 1234,56".
func FormatCurrency(v decimal.Decimal) string {
	return "R$ " + strings.Replace(v.StringFixed(2), ".", ",", 1)
}

// FormatDate formats t for ti. An unknown zone or locale falls back to the
// defaults; it never fails.
func FormatDate(t time.Time, ti *TimeInfo) string {
	zone, locale := DefaultTimeZone, DefaultLocale
	if ti != nil {
		if ti.TimeZone != "" {
			zone = ti.TimeZone
		}
		if ti.Locale != "" {
			locale = ti.Locale
		}
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc, err = time.LoadLocation(DefaultTimeZone)
		if err != nil {
			loc = time.UTC
		}
	}

	layout := dateLayouts[0]
	if tag, err := language.Parse(locale); err == nil {
		_, idx, conf := localeMatcher.Match(tag)
		if conf != language.No {
			layout = dateLayouts[idx]
		}
	}
	return t.In(loc).Format(layout)
}

// FormatDay renders only the calendar date, in ti's zone like FormatDate.
func FormatDay(t time.Time, ti *TimeInfo) string {
	full := FormatDate(t, ti)
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}

// WrapText greedily wraps s at width and centers every produced line.
// Words longer than width are split.
func WrapText(s string, width int) []string {
	var lines []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, CenterText(string(cur), width))
			cur = cur[:0]
		}
	}
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > width {
			flush()
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		if len(w) == 0 {
			continue
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, w...)
		case len(cur)+1+len(w) <= width:
			cur = append(cur, ' ')
			cur = append(cur, w...)
		default:
			flush()
			cur = append(cur, w...)
		}
	}
	flush()
	return lines
}

// FormatCNPJ renders 14 digits as 00.000.000/0000-00.
func FormatCNPJ(s string) string {
	d := digitsOnly(s)
	if d != s || len(d) != 14 {
		return s
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

// FormatCPFCNPJ picks the CPF (11 digits) or CNPJ (14 digits) pattern.
func FormatCPFCNPJ(s string) string {
	d := digitsOnly(s)
	if d != s {
		return s
	}
	switch len(d) {
	case 11:
		return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
	case 14:
		return FormatCNPJ(d)
	}
	return s
}

// FormatAccessKey groups the 44-digit NFC-e key in blocks of four.
func FormatAccessKey(s string) string {
	d := digitsOnly(s)
	if d != s || d == "" {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(d); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(d) {
			end = len(d)
		}
		b.WriteString(d[i:end])
	}
	return b.String()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
