package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kardolus/jssdk/api"
	"github.com/kardolus/jssdk/api/http"
	"github.com/kardolus/jssdk/cache"
	"github.com/kardolus/jssdk/config"
	"github.com/kardolus/jssdk/metrics"
	"go.uber.org/zap"
)

const (
	// TicketCachePrefix namespaces cached tickets; the app id completes the key.
	TicketCachePrefix = "jssdk.jsapi_ticket."
	// ExpiryMargin is subtracted from the declared lifetime before caching.
	ExpiryMargin = 500 * time.Second

	ticketType = "jsapi"

	ErrEmptyResponse    = "empty response"
	errDecodeResponse   = "failed to decode ticket response: %w"
	errTicketRejected   = "ticket request rejected: %w"
	errMissingTicket    = "ticket response carries no ticket"
	errReadCache        = "failed to read cached ticket: %w"
	errWriteCache       = "failed to cache ticket: %w"
	errInvalidTicketURL = "invalid ticket endpoint: %w"
)

// CacheKey returns the key under which the ticket of appID is cached.
func CacheKey(appID string) string {
	return TicketCachePrefix + appID
}

// TTL is the cache lifetime of a ticket the platform declares valid for
// expiresIn seconds. A result that is not positive means "do not cache".
func TTL(expiresIn int) time.Duration {
	return time.Duration(expiresIn)*time.Second - ExpiryMargin
}

// Provider hands out a valid jsapi ticket.
//
//go:generate mockgen -destination=../jssdk/providermocks_test.go -package=jssdk_test github.com/kardolus/jssdk/ticket Provider
type Provider interface {
	Ticket(ctx context.Context, refresh bool) (string, error)
}

type Manager struct {
	Config   config.Config
	caller   http.Caller
	store    cache.Store
	recorder metrics.Recorder
}

// Ensure Manager implements the Provider interface
var _ Provider = &Manager{}

func New(callerFactory http.CallerFactory, store cache.Store, cfg config.Config) *Manager {
	return &Manager{
		Config:   cfg,
		caller:   callerFactory(cfg),
		store:    store,
		recorder: metrics.Noop(),
	}
}

func (m *Manager) WithRecorder(recorder metrics.Recorder) *Manager {
	m.recorder = recorder
	return m
}

// Ticket returns the cached ticket of the configured app, fetching and
// caching a new one when there is none or when refresh is set.
//
// Remote failures are returned as is: there is no retry and no fallback.
// Concurrent misses are not coordinated and may each fetch.
func (m *Manager) Ticket(ctx context.Context, refresh bool) (string, error) {
	key := CacheKey(m.Config.AppID)

	if !refresh {
		ticket, ok, err := m.cached(key)
		if err != nil {
			return "", err
		}
		if ok {
			m.recorder.CacheHit(ctx)
			return ticket, nil
		}
		m.recorder.CacheMiss(ctx)
	}

	response, err := m.fetch(ctx)
	m.recorder.TicketFetched(ctx, err)
	if err != nil {
		return "", err
	}

	ttl := TTL(response.ExpiresIn)
	if ttl <= 0 {
		zap.S().Warnf("ticket for %s expires in %ds, within the %s margin; not caching it", m.Config.AppID, response.ExpiresIn, ExpiryMargin)
	}

	if err := m.store.Set(key, response.Ticket, ttl); err != nil {
		return "", fmt.Errorf(errWriteCache, err)
	}

	return response.Ticket, nil
}

func (m *Manager) cached(key string) (string, bool, error) {
	ok, err := m.store.Has(key)
	if err != nil {
		return "", false, fmt.Errorf(errReadCache, err)
	}
	if !ok {
		return "", false, nil
	}

	ticket, err := m.store.Get(key)
	if errors.Is(err, cache.ErrNotFound) {
		// expired between Has and Get
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf(errReadCache, err)
	}

	return ticket, true, nil
}

func (m *Manager) fetch(ctx context.Context) (api.TicketResponse, error) {
	endpoint, err := m.endpoint()
	if err != nil {
		return api.TicketResponse{}, err
	}

	if m.Config.Debug {
		printRequestDebugInfo(maskToken(endpoint, m.Config.AccessToken))
	}

	raw, err := m.caller.Get(ctx, endpoint)

	if m.Config.Debug {
		printResponseDebugInfo(raw)
	}

	if err != nil {
		return api.TicketResponse{}, err
	}

	var response api.TicketResponse
	if err := processResponse(raw, &response); err != nil {
		return api.TicketResponse{}, err
	}

	if response.ErrCode != 0 {
		return api.TicketResponse{}, fmt.Errorf(errTicketRejected, response.ErrorResponse)
	}

	if response.Ticket == "" {
		return api.TicketResponse{}, errors.New(errMissingTicket)
	}

	return response, nil
}

func (m *Manager) endpoint() (string, error) {
	u, err := url.Parse(strings.TrimRight(m.Config.URL, "/") + m.Config.TicketPath)
	if err != nil {
		return "", fmt.Errorf(errInvalidTicketURL, err)
	}

	query := u.Query()
	query.Set("access_token", m.Config.AccessToken)
	query.Set("type", ticketType)
	u.RawQuery = query.Encode()

	return u.String(), nil
}

func processResponse(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return errors.New(ErrEmptyResponse)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf(errDecodeResponse, err)
	}

	return nil
}

func printRequestDebugInfo(endpoint string) {
	sugar := zap.S()
	sugar.Debugf("\nGenerated cURL command:\n")
	sugar.Debugf("curl --location --request GET '%s'", endpoint)
}

func printResponseDebugInfo(raw []byte) {
	sugar := zap.S()
	sugar.Debugf("\nResponse\n")
	sugar.Debugf("%s\n", raw)
}

func maskToken(endpoint, token string) string {
	if token == "" {
		return endpoint
	}
	return strings.ReplaceAll(endpoint, "access_token="+url.QueryEscape(token), "access_token=${JSSDK_ACCESS_TOKEN}")
}
