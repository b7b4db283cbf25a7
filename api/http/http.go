package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kardolus/jssdk/api"
	"github.com/kardolus/jssdk/config"
	"github.com/kardolus/jssdk/internal"
)

const (
	errFailedToRead          = "failed to read response: %w"
	errFailedToCreateRequest = "failed to create request: %w"
	errFailedToMakeRequest   = "failed to make request: %w"
	errHTTP                  = "http status %d: %s"
	errHTTPStatus            = "http status: %d"
)

//go:generate mockgen -destination=../../ticket/callermocks_test.go -package=ticket_test github.com/kardolus/jssdk/api/http Caller
type Caller interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type RestCaller struct {
	client *http.Client
	config config.Config
}

// Ensure RestCaller implements Caller interface
var _ Caller = &RestCaller{}

func New(cfg config.Config) *RestCaller {
	var client *http.Client
	if cfg.SkipTLSVerify {
		transport := &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
		client = &http.Client{
			Transport: transport,
		}
	} else {
		client = &http.Client{}
	}

	return &RestCaller{
		client: client,
		config: cfg,
	}
}

type CallerFactory func(cfg config.Config) Caller

func RealCallerFactory(cfg config.Config) Caller {
	return New(cfg)
}

func (r *RestCaller) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf(errFailedToCreateRequest, err)
	}

	if r.config.UserAgent != "" {
		req.Header.Set(internal.HeaderUserAgentKey, r.config.UserAgent)
	}

	response, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf(errFailedToMakeRequest, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf(errFailedToRead, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var errorData api.ErrorResponse
		if err := json.Unmarshal(body, &errorData); err != nil || errorData.ErrMsg == "" {
			return nil, fmt.Errorf(errHTTPStatus, response.StatusCode)
		}

		return body, fmt.Errorf(errHTTP, response.StatusCode, errorData.ErrMsg)
	}

	return body, nil
}
