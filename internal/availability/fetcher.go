package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	EndpointTotalAvailability = "total-availability"
	EndpointTotalConsumed     = "total-consumed"
	EndpointAllDetailsGrouped = "all-details-grouped"

	maxBodyBytes = 32 << 20
)

// StatusError is returned when an endpoint answers with a non-2xx status.
type StatusError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.Code, e.Message)
}

// Query narrows the three collections. An empty ProjectID means all projects.
type Query struct {
	ProjectID string
}

// Snapshot holds the three collections from one successful fetch.
type Snapshot struct {
	Available []AvailableTotal
	Consumed  []ConsumedTotal
	Grouped   []GroupedMaterial
}

// Fetcher pulls the three inventory collections from the API.
type Fetcher struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Log        *slog.Logger
}

func NewFetcher(baseURL, token string, log *slog.Logger) *Fetcher {
	return &Fetcher{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: http.DefaultClient,
		Log:        log,
	}
}

// Fetch requests the three collections concurrently. The first failure
// cancels the other requests and no partial snapshot is returned. If ctx is
// cancelled the result is ctx.Err().
func (f *Fetcher) Fetch(ctx context.Context, q Query) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		body, err := f.get(gctx, EndpointTotalAvailability, q)
		if err != nil {
			return err
		}
		snap.Available, err = DecodeAvailable(body)
		return err
	})
	g.Go(func() error {
		body, err := f.get(gctx, EndpointTotalConsumed, q)
		if err != nil {
			return err
		}
		snap.Consumed, err = DecodeConsumed(body)
		return err
	})
	g.Go(func() error {
		body, err := f.get(gctx, EndpointAllDetailsGrouped, q)
		if err != nil {
			return err
		}
		snap.Grouped, err = DecodeGrouped(body)
		return err
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Snapshot{}, ctxErr
		}
		if f.Log != nil {
			f.Log.Warn("availability fetch failed", "err", err)
		}
		return Snapshot{}, err
	}
	return snap, nil
}

// Live fetches, merges and filters in one call.
func (f *Fetcher) Live(ctx context.Context, q Query, search string) ([]MaterialAvailability, error) {
	snap, err := f.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return Filter(Aggregate(snap.Available, snap.Consumed, snap.Grouped), search), nil
}

func (f *Fetcher) get(ctx context.Context, endpoint string, q Query) ([]byte, error) {
	u := f.BaseURL + "/api/materials/" + endpoint
	if q.ProjectID != "" {
		u += "?" + url.Values{"projectId": {q.ProjectID}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}
	req.Header.Set("Accept", "application/json")

	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage pulls "error" or "message" out of a JSON error body.
func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
