package middleware

import (
	"vendapos/internal/render"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	TimeZoneHeader = "X-Time-Zone"
	LocaleHeader   = "Accept-Language"
)

// ClientTimeInfo reads the caller's zone and locale for document rendering.
// Query parameters tz and locale override the headers. Returns nil when the
// caller sent neither, so the renderer uses its defaults.
func ClientTimeInfo(c *gin.Context) *render.TimeInfo {
	tz := c.Query("tz")
	if tz == "" {
		tz = c.GetHeader(TimeZoneHeader)
	}
	loc := c.Query("locale")
	if loc == "" {
		loc = preferredLocale(c.GetHeader(LocaleHeader))
	}
	if tz == "" && loc == "" {
		return nil
	}
	return &render.TimeInfo{TimeZone: tz, Locale: loc}
}

// preferredLocale picks the highest weighted tag of an Accept-Language value.
func preferredLocale(header string) string {
	if header == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}
