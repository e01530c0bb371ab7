package api

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/peopledesk/internal/hr"
	"github.com/abelbrown/peopledesk/internal/otel"
)

type messageResponse struct {
	Message string `json:"message"`
}

// Create calls POST /api/{kind} with a create form and returns the
// server's success message.
func (c *Client) Create(ctx context.Context, kind hr.Kind, form any) (string, error) {
	return c.mutate(ctx, kind, "create", http.MethodPost, "/api/"+string(kind), form)
}

// Act calls POST /api/{kind}/{id}/{action}. body may be nil.
func (c *Client) Act(ctx context.Context, kind hr.Kind, id, action string, body any) (string, error) {
	if body == nil {
		body = struct{}{}
	}
	path := "/api/" + string(kind) + "/" + url.PathEscape(id) + "/" + url.PathEscape(action)
	return c.mutate(ctx, kind, action, http.MethodPost, path, body)
}

// Delete calls DELETE /api/{kind}/{id}.
func (c *Client) Delete(ctx context.Context, kind hr.Kind, id string) (string, error) {
	return c.mutate(ctx, kind, "delete", http.MethodDelete, "/api/"+string(kind)+"/"+url.PathEscape(id), nil)
}

// Run performs a row action: DELETE for delete actions, POST otherwise.
func (c *Client) Run(ctx context.Context, kind hr.Kind, id string, a hr.Action) (string, error) {
	if a.Delete {
		return c.Delete(ctx, kind, id)
	}
	return c.Act(ctx, kind, id, a.Name, nil)
}

func (c *Client) mutate(ctx context.Context, kind hr.Kind, action, method, path string, body any) (string, error) {
	start := time.Now()
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindMutationStart, Comp: "api", View: string(kind), Msg: action})

	var out messageResponse
	err := c.do(ctx, method, path, nil, body, &out)
	if err != nil {
		c.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindMutationError, Comp: "api", View: string(kind), Msg: action, Err: err.Error(), Dur: time.Since(start)})
		return "", err
	}
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindMutationComplete, Comp: "api", View: string(kind), Msg: action, Dur: time.Since(start)})
	return out.Message, nil
}

// Stats are record counts of one kind.
type Stats struct {
	Kind     hr.Kind        `json:"kind"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// Equal reports whether two snapshots have the same counts.
func (s Stats) Equal(o Stats) bool {
	if s.Total != o.Total || len(s.ByStatus) != len(o.ByStatus) {
		return false
	}
	for k, v := range s.ByStatus {
		if o.ByStatus[k] != v {
			return false
		}
	}
	return true
}

// Statuses returns the status keys in stable order.
func (s Stats) Statuses() []string {
	keys := make([]string, 0, len(s.ByStatus))
	for k := range s.ByStatus {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats calls GET /api/stats/{kind}.
func (c *Client) Stats(ctx context.Context, kind hr.Kind) (Stats, error) {
	var out Stats
	err := c.do(ctx, http.MethodGet, "/api/stats/"+string(kind), nil, nil, &out)
	return out, err
}

// summaryConcurrency bounds parallel stats requests.
const summaryConcurrency = 4

// Summary fetches stats for every kind concurrently. The first failure
// cancels the rest.
func (c *Client) Summary(ctx context.Context, kinds ...hr.Kind) (map[hr.Kind]Stats, error) {
	results := make([]Stats, len(kinds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for i, k := range kinds {
		g.Go(func() error {
			s, err := c.Stats(ctx, k)
			if err != nil {
				return err
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[hr.Kind]Stats, len(kinds))
	for i, k := range kinds {
		out[k] = results[i]
	}
	return out, nil
}
