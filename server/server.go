package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kardolus/jssdk/config"
	"github.com/kardolus/jssdk/internal"
	"github.com/kardolus/jssdk/jssdk"
	"go.uber.org/zap"
)

const (
	ConfigPath    = "/jssdk/config"
	SignaturePath = "/jssdk/signature"
	MetricsPath   = "/metrics"

	shutdownTimeout = 5 * time.Second

	errInvalidParam = "invalid %s: %q"
)

type errorBody struct {
	Error string `json:"error"`
}

type Server struct {
	client  *jssdk.Client
	config  config.Config
	metrics http.Handler
}

func New(client *jssdk.Client, cfg config.Config) *Server {
	return &Server{
		client: client,
		config: cfg,
	}
}

// WithMetricsHandler exposes h under MetricsPath.
func (s *Server) WithMetricsHandler(h http.Handler) *Server {
	s.metrics = h
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(ConfigPath, s.handleConfig)
	mux.HandleFunc(SignaturePath, s.handleSignature)
	if s.metrics != nil {
		mux.Handle(MetricsPath, s.metrics)
	}
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("listening on %s", s.config.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	query := r.URL.Query()

	debug, err := parseBool(query.Get("debug"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf(errInvalidParam, "debug", query.Get("debug")))
		return
	}

	beta, err := parseBool(query.Get("beta"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf(errInvalidParam, "beta", query.Get("beta")))
		return
	}

	apis := s.config.JSAPIList
	if raw := query.Get("apis"); raw != "" {
		apis = splitList(raw)
	}

	var opts []jssdk.SignatureOption
	if url := pageURL(r); url != "" {
		opts = append(opts, jssdk.WithURL(url))
	}

	result, err := s.client.Config(jssdk.WithRequest(r.Context(), r), apis, debug, beta, opts...)
	if err != nil {
		zap.S().Errorf("failed to build config: %s", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSignature(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	query := r.URL.Query()

	var opts []jssdk.SignatureOption
	if url := pageURL(r); url != "" {
		opts = append(opts, jssdk.WithURL(url))
	}
	if query.Has("nonce") {
		opts = append(opts, jssdk.WithNonce(query.Get("nonce")))
	}
	if query.Has("timestamp") {
		timestamp, err := strconv.ParseInt(query.Get("timestamp"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf(errInvalidParam, "timestamp", query.Get("timestamp")))
			return
		}
		opts = append(opts, jssdk.WithTimestamp(timestamp))
	}

	result, err := s.client.Signature(jssdk.WithRequest(r.Context(), r), opts...)
	if err != nil {
		zap.S().Errorf("failed to sign: %s", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// pageURL is the url the browser is on: an explicit query parameter, else the
// referring page. Empty means "let the client decide".
func pageURL(r *http.Request) string {
	if url := r.URL.Query().Get("url"); url != "" {
		return url
	}
	return r.Header.Get(internal.HeaderReferer)
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func parseBool(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

func splitList(value string) []string {
	result := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(internal.HeaderContentTypeKey, internal.HeaderContentTypeValue)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Warnf("failed to write response: %s", err)
	}
}
