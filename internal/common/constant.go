// Package common contains constants and sentinel errors shared by the
// eventfeed client and server.
package common

// AccessTokenHeaderName is the gRPC metadata key carrying the bearer
// credential on outbound write calls.
const AccessTokenHeaderName = "authorization"

// BearerPrefix precedes the token in AccessTokenHeaderName.
const BearerPrefix = "Bearer "

// DateLayout is the calendar date format of SocialEvent.Date.
const DateLayout = "2006-01-02"

// Page size bounds applied by the server to list requests.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)
