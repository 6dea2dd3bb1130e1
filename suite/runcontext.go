package suite

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/broadcastkit/conform/client"
	"github.com/broadcastkit/conform/schema"
	"github.com/broadcastkit/conform/types"
)

// Asker lets a test case request external input through the question/answer
// bridge. ok is false when no answer arrived within the question's timeout;
// mapping that to an outcome is the calling case's decision.
type Asker interface {
	Ask(ctx context.Context, q types.Question) (answer types.Answer, ok bool, err error)
}

// RunContext is the per-run shared state handed to every test case. The
// runner owns it exclusively for the duration of one run; cases read and
// append but never replace it. It is created at run start and discarded at
// run end.
type RunContext struct {
	Client  *client.Client
	Schemas *schema.Store
	Asker   Asker // nil when no responder is configured
	Log     *zap.SugaredLogger

	endpoints []types.Endpoint
	byAPI     map[string]types.Endpoint

	mu        sync.Mutex
	resources map[string][]string
}

// NewRunContext binds endpoints positionally against the suite's endpoint
// specs. Callers must have validated the bindings first.
func NewRunContext(s *Suite, endpoints []types.Endpoint, c *client.Client, schemas *schema.Store, asker Asker, log *zap.SugaredLogger) *RunContext {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	byAPI := make(map[string]types.Endpoint, len(endpoints))
	for i, spec := range s.EndpointSpecs {
		if i < len(endpoints) {
			byAPI[spec.APIKey] = endpoints[i]
		}
	}
	return &RunContext{
		Client:    c,
		Schemas:   schemas,
		Asker:     asker,
		Log:       log,
		endpoints: endpoints,
		byAPI:     byAPI,
		resources: make(map[string][]string),
	}
}

// Endpoint returns the binding for an API key declared in the suite's
// endpoint specs.
func (rc *RunContext) Endpoint(apiKey string) (types.Endpoint, error) {
	ep, ok := rc.byAPI[apiKey]
	if !ok {
		return types.Endpoint{}, fmt.Errorf("no endpoint bound for API %q", apiKey)
	}
	return ep, nil
}

// Endpoints returns all bindings in positional order.
func (rc *RunContext) Endpoints() []types.Endpoint {
	out := make([]types.Endpoint, len(rc.endpoints))
	copy(out, rc.endpoints)
	return out
}

// AddResource records a resource ID discovered during the run, e.g. a sender
// found while querying, for later cases to depend on. Duplicate IDs are kept
// out so cases may append freely.
func (rc *RunContext) AddResource(kind, id string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, existing := range rc.resources[kind] {
		if existing == id {
			return
		}
	}
	rc.resources[kind] = append(rc.resources[kind], id)
}

// Resources returns the IDs recorded for a kind, in discovery order.
func (rc *RunContext) Resources(kind string) []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]string, len(rc.resources[kind]))
	copy(out, rc.resources[kind])
	return out
}
