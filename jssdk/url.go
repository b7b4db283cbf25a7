package jssdk

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kardolus/jssdk/internal"
)

const errNoRequest = "no http request in context"

//go:generate mockgen -destination=resolvermocks_test.go -package=jssdk_test github.com/kardolus/jssdk/jssdk URLResolver
type URLResolver interface {
	CurrentURL(ctx context.Context) (string, error)
}

// StaticURL always resolves to itself.
type StaticURL string

func (s StaticURL) CurrentURL(context.Context) (string, error) {
	if s == "" {
		return "", errors.New(errNoPageURL)
	}
	return string(s), nil
}

// RequestResolver resolves to the url of the request stored by WithRequest,
// which is the page url when the page itself is being rendered.
type RequestResolver struct{}

func (RequestResolver) CurrentURL(ctx context.Context) (string, error) {
	r, ok := ctx.Value(internal.RequestKey).(*http.Request)
	if !ok || r == nil {
		return "", errors.New(errNoRequest)
	}
	return RequestURL(r), nil
}

// WithRequest stores r in ctx for RequestResolver.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, internal.RequestKey, r)
}

// RequestURL rebuilds the absolute url the client asked for, honouring the
// forwarding headers set by a reverse proxy.
func RequestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get(internal.HeaderForwardedProto); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}

	host := r.Host
	if forwarded := r.Header.Get(internal.HeaderForwardedHost); forwarded != "" {
		host = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	return scheme + "://" + host + r.URL.RequestURI()
}
