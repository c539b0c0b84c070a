package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"vendapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// requestLog carries the tenant and request identifiers on every line.
func requestLog(ev *zerolog.Event, c *gin.Context) *zerolog.Event {
	ev = ev.
		Str("request_id", c.GetString(RequestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
	if claims, ok := c.Get(ClaimsKey); ok {
		if jc, ok := claims.(*JWTClaims); ok {
			ev = ev.Str("company_id", jc.CompanyID).Str("seller_id", jc.SellerID)
		}
	}
	return ev
}

// ErrorHandler answers errors a handler attached with c.Error but did not
// write. Domain errors keep their status and code; anything else is a 500
// carrying only the request id.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := apierror.FromError(err)
		if status >= http.StatusInternalServerError {
			body.RequestID = c.GetString(RequestIDKey)
			requestLog(log.Error(), c).Err(err).Msg("unhandled error")
		} else {
			requestLog(log.Debug(), c).Err(err).Int("status", status).Msg("error attached by handler")
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// Recovery turns a panic into a 500 and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestLog(log.Error(), c).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				body := apierror.New("Erro interno do servidor")
				body.RequestID = c.GetString(RequestIDKey)
				c.AbortWithStatusJSON(http.StatusInternalServerError, body)
			}
		}()
		c.Next()
	}
}

// Logger writes one access line per request; 5xx responses log at error.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		requestLog(ev, c).
			Int("status", c.Writer.Status()).
			Int("bytes", c.Writer.Size()).
			Str("client_ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
