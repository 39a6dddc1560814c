// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller identity used to scope rate-limit buckets
// and Idempotency-Key records. The API has no authentication, so a client
// may name itself with X-Client-ID; otherwise its IP address is used.
package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderClientID lets a caller supply a stable identity (e.g. a till or
// integration name) instead of being keyed by IP address.
const HeaderClientID = "X-Client-ID"

const maxClientIDLen = 64

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// ClientID returns "client:<X-Client-ID>" when the header is present and
// well-formed, and "ip:<client ip>" otherwise. Prefixes keep the two
// namespaces from colliding.
func ClientID(c *gin.Context) string {
	if c.Request != nil {
		if v := strings.TrimSpace(c.GetHeader(HeaderClientID)); v != "" && len(v) <= maxClientIDLen && clientIDPattern.MatchString(v) {
			return "client:" + v
		}
	}
	return "ip:" + c.ClientIP()
}
