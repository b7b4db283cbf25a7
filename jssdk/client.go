package jssdk

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/kardolus/jssdk/api"
	"github.com/kardolus/jssdk/config"
	"github.com/kardolus/jssdk/internal"
	"github.com/kardolus/jssdk/metrics"
	"github.com/kardolus/jssdk/ticket"
)

const (
	errNoPageURL         = "no page url: set page_url or pass one explicitly"
	errFailedToGetTicket = "failed to get jsapi ticket: %w"
)

// CanonicalString is the exact string that gets signed. Values are used
// verbatim, without any escaping.
func CanonicalString(ticket, nonce string, timestamp int64, url string) string {
	return "jsapi_ticket=" + ticket +
		"&noncestr=" + nonce +
		"&timestamp=" + strconv.FormatInt(timestamp, 10) +
		"&url=" + url
}

// Sign returns the lowercase hex SHA-1 digest of the canonical string.
func Sign(ticket, nonce string, timestamp int64, url string) string {
	sum := sha1.Sum([]byte(CanonicalString(ticket, nonce, timestamp, url)))
	return hex.EncodeToString(sum[:])
}

type signatureRequest struct {
	url       *string
	nonce     *string
	timestamp *int64
}

// SignatureOption supplies one of the optional inputs of a signature. Inputs
// that are not supplied are resolved by the Client.
type SignatureOption func(*signatureRequest)

func WithURL(url string) SignatureOption {
	return func(r *signatureRequest) { r.url = &url }
}

func WithNonce(nonce string) SignatureOption {
	return func(r *signatureRequest) { r.nonce = &nonce }
}

func WithTimestamp(timestamp int64) SignatureOption {
	return func(r *signatureRequest) { r.timestamp = &timestamp }
}

type Client struct {
	cfg      config.Config
	provider ticket.Provider
	timer    internal.Timer
	resolver URLResolver
	nonce    func() string
	recorder metrics.Recorder
	pageURL  string
}

func New(provider ticket.Provider, t internal.Timer, cfg config.Config) *Client {
	return &Client{
		cfg:      cfg,
		provider: provider,
		timer:    t,
		pageURL:  cfg.PageURL,
		nonce: func() string {
			return internal.GenerateNonce(internal.NonceLength)
		},
		recorder: metrics.Noop(),
	}
}

// WithPageURL sets the url used when a signature is requested without one.
func (c *Client) WithPageURL(url string) *Client {
	c.pageURL = url
	return c
}

// WithURLResolver sets the fallback for when no page url is set.
func (c *Client) WithURLResolver(resolver URLResolver) *Client {
	c.resolver = resolver
	return c
}

func (c *Client) WithRecorder(recorder metrics.Recorder) *Client {
	c.recorder = recorder
	return c
}

// URL returns the page url signatures default to: the one set on the client,
// or else the one the resolver reports for ctx.
func (c *Client) URL(ctx context.Context) (string, error) {
	if c.pageURL != "" {
		return c.pageURL, nil
	}

	if c.resolver == nil {
		return "", errors.New(errNoPageURL)
	}

	return c.resolver.CurrentURL(ctx)
}

// Signature signs the page url for the configured app. The url defaults to
// URL(ctx), the nonce to a random 10 character string and the timestamp to
// the current unix time. Supplied values are not validated.
func (c *Client) Signature(ctx context.Context, opts ...SignatureOption) (api.Signature, error) {
	var req signatureRequest
	for _, opt := range opts {
		opt(&req)
	}

	var (
		url       string
		nonce     string
		timestamp int64
	)

	if req.url != nil {
		url = *req.url
	} else {
		resolved, err := c.URL(ctx)
		if err != nil {
			return api.Signature{}, err
		}
		url = resolved
	}

	if req.nonce != nil {
		nonce = *req.nonce
	} else {
		nonce = c.nonce()
	}

	if req.timestamp != nil {
		timestamp = *req.timestamp
	} else {
		timestamp = c.timer.Now().Unix()
	}

	jsapiTicket, err := c.provider.Ticket(ctx, false)
	if err != nil {
		return api.Signature{}, fmt.Errorf(errFailedToGetTicket, err)
	}

	c.recorder.SignatureIssued(ctx)

	return api.Signature{
		AppID:     c.cfg.AppID,
		NonceStr:  nonce,
		Timestamp: timestamp,
		URL:       url,
		Signature: Sign(jsapiTicket, nonce, timestamp, url),
	}, nil
}

// Config returns the wx.config payload: debug, beta and apis are passed
// through unchanged next to a fresh signature.
func (c *Client) Config(ctx context.Context, apis []string, debug, beta bool, opts ...SignatureOption) (api.JSConfig, error) {
	signature, err := c.Signature(ctx, opts...)
	if err != nil {
		return api.JSConfig{}, err
	}

	if apis == nil {
		apis = []string{}
	}

	return api.JSConfig{
		Debug:     debug,
		Beta:      beta,
		JSAPIList: apis,
		Signature: signature,
	}, nil
}

// ConfigJSON is Config serialized for embedding in a page.
func (c *Client) ConfigJSON(ctx context.Context, apis []string, debug, beta bool, opts ...SignatureOption) (string, error) {
	cfg, err := c.Config(ctx, apis, debug, beta, opts...)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
