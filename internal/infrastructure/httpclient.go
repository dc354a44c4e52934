package infrastructure

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

type httpClientStartedAt struct{}

// NewHTTPClient returns a resty client that logs every outbound call at debug level.
func NewHTTPClient(name string, timeout time.Duration, log zerolog.Logger) *resty.Client {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	client.AddRequestMiddleware(func(_ *resty.Client, r *resty.Request) error {
		r.SetContext(context.WithValue(r.Context(), httpClientStartedAt{}, time.Now()))
		return nil
	})
	client.AddResponseMiddleware(func(_ *resty.Client, r *resty.Response) error {
		started, _ := r.Request.Context().Value(httpClientStartedAt{}).(time.Time)
		ev := log.Debug().
			Str("client", name).
			Int("status", r.StatusCode()).
			Dur("latency", time.Since(started))
		if raw := r.Request.RawRequest; raw != nil {
			ev = ev.Str("method", raw.Method).Str("path", raw.URL.Path)
		}
		ev.Msg("http client request")
		return nil
	})
	return client
}
