package suite

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/broadcastkit/conform/types"
)

// SchemaAdapter derives the standard family of auto cases from an API spec
// manifest: base-path listings, a schema-validated GET per read endpoint,
// and a 404 probe against the error schema. Case names share the
// auto_<api>_ prefix and follow specification order.
type SchemaAdapter struct {
	spec *APISpec
}

var _ SpecAdapter = (*SchemaAdapter)(nil)

func NewSchemaAdapter(spec *APISpec) *SchemaAdapter {
	return &SchemaAdapter{spec: spec}
}

// AutoCases is deterministic and performs no network I/O; the returned cases
// only touch the implementation under test when run.
func (a *SchemaAdapter) AutoCases() []Case {
	api := a.spec.API
	count := 0
	nextName := func() string {
		count++
		return fmt.Sprintf("auto_%s_%d", api, count)
	}

	var cases []Case

	cases = append(cases, Case{
		Name:        nextName(),
		Description: "GET /x-conform",
		Auto:        true,
		Run:         a.basePathCase("/x-conform", api+"/"),
	})
	cases = append(cases, Case{
		Name:        nextName(),
		Description: fmt.Sprintf("GET /x-conform/%s", api),
		Auto:        true,
		Run:         a.versionPathCase(),
	})

	for _, read := range a.spec.Reads {
		cases = append(cases, Case{
			Name:        nextName(),
			Description: fmt.Sprintf("GET %s", read.Path),
			Auto:        true,
			Run:         a.resourceCase(read),
		})
	}

	cases = append(cases, Case{
		Name:        nextName(),
		Description: "GET of an invalid resource returns a well-formed 404",
		Auto:        true,
		Run:         a.notFoundCase(),
	})

	return cases
}

// basePathCase checks that a GET below the API root returns a JSON array
// containing the expected child path.
func (a *SchemaAdapter) basePathCase(path, expect string) CaseFunc {
	api := a.spec.API
	return func(ctx context.Context, rc *RunContext, t types.Test) (types.Result, error) {
		ep, err := rc.Endpoint(api)
		if err != nil {
			return types.Result{}, err
		}
		resp, err := rc.Client.Get(ctx, ep.BaseURL()+path)
		if err != nil {
			return t.Fail(fmt.Sprintf("Unable to connect to API: %v", err)), nil
		}
		if resp.StatusCode != http.StatusOK {
			return t.Fail(fmt.Sprintf("Incorrect response code: %d", resp.StatusCode)), nil
		}
		if ok, msg := checkCORS(resp.Header); !ok {
			return t.Fail(msg), nil
		}
		var listing []string
		if err := resp.JSON(&listing); err != nil {
			return t.Fail("Non-JSON response returned"), nil
		}
		for _, entry := range listing {
			if entry == expect {
				return t.Pass(""), nil
			}
		}
		return t.Fail(fmt.Sprintf("Response is not an array containing %q", expect)), nil
	}
}

func (a *SchemaAdapter) versionPathCase() CaseFunc {
	api := a.spec.API
	return func(ctx context.Context, rc *RunContext, t types.Test) (types.Result, error) {
		ep, err := rc.Endpoint(api)
		if err != nil {
			return types.Result{}, err
		}
		fn := a.basePathCase("/x-conform/"+api, ep.Version+"/")
		return fn(ctx, rc, t)
	}
}

// resourceCase checks one read endpoint: 200, CORS, Content-Type, and the
// declared response schema.
func (a *SchemaAdapter) resourceCase(read ReadSpec) CaseFunc {
	api := a.spec.API
	return func(ctx context.Context, rc *RunContext, t types.Test) (types.Result, error) {
		ep, err := rc.Endpoint(api)
		if err != nil {
			return types.Result{}, err
		}
		resp, err := rc.Client.Get(ctx, joinURL(ep.URL(api), read.Path))
		if err != nil {
			return t.Fail(fmt.Sprintf("Unable to connect to API: %v", err)), nil
		}
		if resp.StatusCode != http.StatusOK {
			return t.Fail(fmt.Sprintf("Incorrect response code: %d", resp.StatusCode)), nil
		}
		if ok, msg := checkCORS(resp.Header); !ok {
			return t.Fail(msg), nil
		}
		ok, warn := checkContentType(resp.Header)
		if !ok {
			return t.Fail(warn), nil
		}
		if read.Schema != "" {
			if err := rc.Schemas.Validate(read.Schema, resp.Body); err != nil {
				return t.Fail(err.Error()), nil
			}
		}
		if warn != "" {
			return t.Warning(warn), nil
		}
		return t.Pass(""), nil
	}
}

// notFoundCase probes a random invalid path and validates the error body.
func (a *SchemaAdapter) notFoundCase() CaseFunc {
	api := a.spec.API
	errorSchema := a.spec.ErrorSchema
	return func(ctx context.Context, rc *RunContext, t types.Test) (types.Result, error) {
		ep, err := rc.Endpoint(api)
		if err != nil {
			return types.Result{}, err
		}
		resp, err := rc.Client.Get(ctx, joinURL(ep.URL(api), uuid.NewString()))
		if err != nil {
			return t.Fail(fmt.Sprintf("Unable to connect to API: %v", err)), nil
		}
		if resp.StatusCode != http.StatusNotFound {
			return t.Fail(fmt.Sprintf("Incorrect response code, expected 404: %d", resp.StatusCode)), nil
		}
		if err := rc.Schemas.Validate(errorSchema, resp.Body); err != nil {
			return t.Fail(err.Error()), nil
		}
		return t.Pass(""), nil
	}
}

// checkCORS verifies the cross-origin headers every API response must carry.
func checkCORS(h http.Header) (bool, string) {
	if h.Get("Access-Control-Allow-Origin") == "" {
		return false, "'Access-Control-Allow-Origin' not present in response headers"
	}
	return true, ""
}

// checkContentType verifies the Content-Type header. An unnecessary charset
// parameter is permitted but reported as a warning message.
func checkContentType(h http.Header) (bool, string) {
	ctype := h.Get("Content-Type")
	if ctype == "" {
		return false, "API failed to signal a Content-Type"
	}
	params := strings.Split(ctype, ";")
	if strings.TrimSpace(params[0]) != "application/json" {
		return false, fmt.Sprintf("API signalled a Content-Type of %s rather than application/json", ctype)
	}
	if len(params) == 2 && strings.EqualFold(strings.TrimSpace(params[1]), "charset=utf-8") {
		return true, fmt.Sprintf("API signalled an unnecessary 'charset' in its Content-Type: %s", ctype)
	}
	if len(params) >= 2 {
		return false, fmt.Sprintf("API signalled unexpected additional parameters in its Content-Type: %s", ctype)
	}
	return true, ""
}
