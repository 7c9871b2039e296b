// Package metrics exposes authentication activity as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blogem/authsession/authenticator"
	"github.com/blogem/authsession/models"
)

// Recorder counts provider state transitions and token acquisitions
type Recorder struct {
	stateTransitions *prometheus.CounterVec
	tokensAcquired   *prometheus.CounterVec
	tokenFailures    *prometheus.CounterVec
	currentState     *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them with reg.
// A nil reg uses the default registerer.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		stateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authsession_state_transitions_total",
			Help: "Authentication state transitions by target state",
		}, []string{"state"}),
		tokensAcquired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authsession_tokens_acquired_total",
			Help: "Tokens acquired by token type and method",
		}, []string{"token_type", "method"}),
		tokenFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authsession_token_failures_total",
			Help: "Failed token acquisitions by token type and error kind",
		}, []string{"token_type", "kind"}),
		currentState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "authsession_state",
			Help: "1 for the current authentication state, 0 otherwise",
		}, []string{"state"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authsession_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authsession_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	var err error
	if r.stateTransitions, err = register(reg, r.stateTransitions); err != nil {
		return nil, err
	}
	if r.tokensAcquired, err = register(reg, r.tokensAcquired); err != nil {
		return nil, err
	}
	if r.tokenFailures, err = register(reg, r.tokenFailures); err != nil {
		return nil, err
	}
	if r.currentState, err = register(reg, r.currentState); err != nil {
		return nil, err
	}
	if r.httpRequests, err = register(reg, r.httpRequests); err != nil {
		return nil, err
	}
	if r.httpDuration, err = register(reg, r.httpDuration); err != nil {
		return nil, err
	}
	return r, nil
}

// StateChanged records a transition into state
func (r *Recorder) StateChanged(state models.AuthenticationState) {
	r.stateTransitions.WithLabelValues(string(state)).Inc()
	for _, s := range []models.AuthenticationState{models.Unauthenticated, models.InProgress, models.Authenticated} {
		v := 0.0
		if s == state {
			v = 1
		}
		r.currentState.WithLabelValues(string(s)).Set(v)
	}
}

// TokenAcquired records a successful token acquisition
func (r *Recorder) TokenAcquired(tokenType models.TokenType, method string) {
	r.tokensAcquired.WithLabelValues(string(tokenType), method).Inc()
}

// TokenFailed records a failed token acquisition
func (r *Recorder) TokenFailed(tokenType models.TokenType, kind authenticator.ErrorKind) {
	r.tokenFailures.WithLabelValues(string(tokenType), string(kind)).Inc()
}

// Middleware instruments chi routes; the route label is the matched pattern
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		r.httpDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
		r.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}

// Handler serves the metrics gathered by g, or the default gatherer when g is nil
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// register registers c. If an equal collector is already registered, that one is returned.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
