package internal

const (
	HeaderContentTypeKey   = "Content-Type"
	HeaderContentTypeValue = "application/json"
	HeaderUserAgentKey     = "User-Agent"
	HeaderForwardedProto   = "X-Forwarded-Proto"
	HeaderForwardedHost    = "X-Forwarded-Host"
	HeaderReferer          = "Referer"
)

type contextKey string

const (
	RequestKey contextKey = "request"
)
