package entur

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"enturclient.dev/internal/logging"
	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the Entur Journey Planner GraphQL endpoint.
const DefaultEndpoint = "https://api.entur.io/journey-planner/v2/graphql"

// RequestTimeout bounds every request.
const RequestTimeout = 10 * time.Second

// ClientNameHeader identifies the calling application to Entur.
const ClientNameHeader = "ET-Client-Name"

const maxResponseSize = 25 * 1024 * 1024

// Response is a decoded GraphQL response without errors.
type Response struct {
	Data json.RawMessage `json:"data"`
}

type rawResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// Transport sends one GraphQL request. Implementations return a
// *RequestError for every failure.
type Transport interface {
	Execute(ctx context.Context, req Request, clientName string) (*Response, error)
}

// HTTPTransport posts requests to a GraphQL endpoint over HTTP.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// newHTTPClient returns a client with its own transport cloned from
// http.DefaultTransport, gzip negotiation, and the fixed request timeout.
func newHTTPClient() *http.Client {
	var transport *http.Transport
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = t.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.MaxIdleConns = 10
	transport.MaxIdleConnsPerHost = 2
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = 10 * time.Second

	return &http.Client{
		Timeout:   RequestTimeout,
		Transport: gzhttp.Transport(transport),
	}
}

// NewHTTPTransport creates a transport for endpoint. A nil client gets the
// default client; requestsPerMinute <= 0 disables pacing.
func NewHTTPTransport(endpoint string, client *http.Client, requestsPerMinute int, logger *slog.Logger) *HTTPTransport {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = newHTTPClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	t := &HTTPTransport{
		endpoint: endpoint,
		client:   client,
		logger:   logger.With(slog.String("component", "entur_transport")),
	}
	if requestsPerMinute > 0 {
		t.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return t
}

// Execute posts req and decodes the response.
func (t *HTTPTransport) Execute(ctx context.Context, req Request, clientName string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, &RequestError{Kind: FailureTransport, Err: fmt.Errorf("waiting for rate limiter: %w", err)}
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &RequestError{Kind: FailureTransport, Err: fmt.Errorf("encoding request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Kind: FailureTransport, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(ClientNameHeader, clientName)

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Kind: FailureTransport, Err: fmt.Errorf("failed to execute GraphQL request: %w", err)}
	}
	defer logging.SafeCloseWithLogging(resp.Body, t.logger, "http_response_body")

	logging.LogRequest(t.logger, req.Kind, resp.StatusCode,
		float64(time.Since(start).Nanoseconds())/1e6)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Kind: FailureProtocol, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, &RequestError{Kind: FailureTransport, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if len(payload) > maxResponseSize {
		return nil, &RequestError{
			Kind: FailureProtocol, StatusCode: resp.StatusCode, Status: resp.Status,
			Err: fmt.Errorf("response exceeds size limit of %d bytes", maxResponseSize),
		}
	}

	var decoded rawResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, &RequestError{
			Kind: FailureProtocol, StatusCode: resp.StatusCode, Status: resp.Status,
			Err: fmt.Errorf("decoding response: %w", err),
		}
	}
	if len(decoded.Errors) > 0 {
		return nil, &RequestError{Kind: FailureQuery, StatusCode: resp.StatusCode, Status: resp.Status, Errors: decoded.Errors}
	}
	if len(decoded.Data) == 0 || bytes.Equal(decoded.Data, []byte("null")) {
		return nil, &RequestError{
			Kind: FailureProtocol, StatusCode: resp.StatusCode, Status: resp.Status,
			Err: errors.New("response has no data"),
		}
	}
	return &Response{Data: decoded.Data}, nil
}
