package poller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"EngineMirror/internal/domain/models"
	"EngineMirror/internal/usecase"
	xhttp "EngineMirror/pkg/http"

	"github.com/google/uuid"
)

// Request is one stamped fetch.
type Request struct {
	Spec       Spec
	Generation uint64
}

// Fetcher performs a single request. Implementations must honour ctx and
// report every failure through Outcome.Err.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) models.Outcome
}

// EndpointClient fetches and decodes one endpoint per call. It holds no
// per-source state and may be shared by all sources.
type EndpointClient struct {
	baseURL string
	client  *xhttp.Client
	now     func() time.Time
}

var _ Fetcher = (*EndpointClient)(nil)

// NewEndpointClient builds a client for the engine at baseURL. Deadlines
// come from each request's context, so client should have no timeout of
// its own.
func NewEndpointClient(baseURL string, client *xhttp.Client) *EndpointClient {
	if client == nil {
		client = xhttp.NewClient(xhttp.WithTimeout(0))
	}
	return &EndpointClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		now:     time.Now,
	}
}

// Fetch runs req under min(timeout, cadence). The outcome carries the
// request's generation whether it succeeded or not.
func (c *EndpointClient) Fetch(ctx context.Context, req Request) models.Outcome {
	start := c.now()
	payload, ferr := c.fetch(ctx, req)
	end := c.now()
	return models.Outcome{
		Payload:    payload,
		Err:        ferr,
		Generation: req.Generation,
		At:         end,
		Latency:    end.Sub(start),
	}
}

func (c *EndpointClient) fetch(ctx context.Context, req Request) (models.Payload, *models.FetchError) {
	id := req.Spec.ID

	reqCtx, cancel := context.WithTimeout(ctx, req.Spec.RequestTimeout())
	defer cancel()

	body, err := c.client.SendAndRead(reqCtx, &xhttp.RequestOptions{
		Method: req.Spec.Method,
		URL:    c.baseURL + req.Spec.Path,
		Headers: map[string]string{
			"Accept":       "application/json",
			"X-Request-ID": uuid.NewString(),
		},
	})
	if err != nil {
		return nil, classify(ctx, id, err)
	}

	dec, ok := usecase.DecoderFor(id)
	if !ok {
		return nil, models.NewFetchError(models.ErrDecode, id, fmt.Errorf("no decoder for %q", id))
	}
	payload, err := dec.Decode(body)
	if err != nil {
		return nil, models.NewFetchError(models.ErrDecode, id, err)
	}
	return payload, nil
}

// classify maps a transport error onto a FetchError. parent is the
// caller's context: its cancellation is a Cancelled result, while the
// per-request deadline expiring is a Network failure.
func classify(parent context.Context, id models.SourceID, err error) *models.FetchError {
	if parent.Err() != nil {
		return models.NewFetchError(models.ErrCancelled, id, parent.Err())
	}

	var se *xhttp.StatusError
	if errors.As(err, &se) {
		fe := models.NewFetchError(models.ErrHTTPStatus, id, errors.New(orDefault(se.Body, "no body")))
		fe.StatusCode = se.Code
		return fe
	}
	if errors.Is(err, xhttp.ErrBodyTooLarge) {
		return models.NewFetchError(models.ErrDecode, id, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewFetchError(models.ErrNetwork, id, errors.New("timed out"))
	}
	return models.NewFetchError(models.ErrNetwork, id, err)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
