// Package connection ships the conformance suite for the device connection
// management API: sender and receiver enumeration, transport constraints,
// and staged/active parameter handling.
package connection

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/broadcastkit/conform/suite"
	"github.com/broadcastkit/conform/types"
)

const apiKey = "connection"

// DefaultSpec is the built-in API spec manifest, used when the spec
// directory does not carry a connection.yaml override.
func DefaultSpec() *suite.APISpec {
	return &suite.APISpec{
		API:  apiKey,
		Name: "Connection API",
		Reads: []suite.ReadSpec{
			{Path: "single/", Schema: "connection-single.json"},
			{Path: "single/senders/", Schema: "connection-senders.json"},
			{Path: "single/receivers/", Schema: "connection-receivers.json"},
		},
		ErrorSchema: "error.json",
	}
}

// NewSuite builds the connection suite around the given API spec manifest.
// A nil spec selects the built-in default.
func NewSuite(spec *suite.APISpec) *suite.Suite {
	if spec == nil {
		spec = DefaultSpec()
	}
	return &suite.Suite{
		ID:          apiKey,
		Name:        "Connection Management",
		Description: "Checks device connection management behavior: sender and receiver enumeration, constraints, and staged parameter validation",
		EndpointSpecs: []suite.EndpointSpec{
			{APIKey: apiKey, Name: "Connection API"},
		},
		ManualCases: []suite.Case{
			{
				Name:        "connection_01_senders_listed",
				Description: "Senders are enumerated as a well-formed ID list",
				Run:         sendersListed,
			},
			{
				Name:        "connection_02_receivers_listed",
				Description: "Receivers are enumerated as a well-formed ID list",
				Run:         receiversListed,
			},
			{
				Name:        "connection_03_sender_constraints",
				Description: "Each sender exposes a constraints resource",
				Run:         senderConstraints,
			},
			{
				Name:        "connection_04_staged_rejects_invalid",
				Description: "A malformed staged PATCH is rejected with a 400",
				Run:         stagedRejectsInvalid,
			},
			{
				Name:        "connection_05_staged_readable",
				Description: "Each receiver's staged parameters can be read back",
				Run:         stagedReadable,
			},
		},
		Adapter: suite.NewSchemaAdapter(spec),
		PreRun:  checkReachable,
	}
}

// checkReachable refuses to start a run against an unreachable API root.
func checkReachable(ctx context.Context, rc *suite.RunContext) error {
	ep, err := rc.Endpoint(apiKey)
	if err != nil {
		return err
	}
	resp, err := rc.Client.Get(ctx, ep.URL(apiKey))
	if err != nil {
		return fmt.Errorf("connection API is unreachable at %s: %w", ep.URL(apiKey), err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("connection API root returned %d", resp.StatusCode)
	}
	return nil
}

// listIDs fetches a collection path and returns the IDs, which the API
// reports as "id/" entries.
func listIDs(ctx context.Context, rc *suite.RunContext, path string) ([]string, error) {
	ep, err := rc.Endpoint(apiKey)
	if err != nil {
		return nil, err
	}
	var listing []string
	if err := rc.Client.GetJSON(ctx, ep.URL(apiKey)+path, &listing); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(listing))
	for _, entry := range listing {
		ids = append(ids, strings.TrimSuffix(entry, "/"))
	}
	return ids, nil
}

func sendersListed(ctx context.Context, rc *suite.RunContext, t types.Test) (types.Result, error) {
	ids, err := listIDs(ctx, rc, "single/senders/")
	if err != nil {
		return t.Fail(fmt.Sprintf("Unable to list senders: %v", err)), nil
	}
	for _, id := range ids {
		if id == "" {
			return t.Fail("Sender listing contains an empty entry"), nil
		}
		rc.AddResource("sender", id)
	}
	return t.Pass(""), nil
}

func receiversListed(ctx context.Context, rc *suite.RunContext, t types.Test) (types.Result, error) {
	ids, err := listIDs(ctx, rc, "single/receivers/")
	if err != nil {
		return t.Fail(fmt.Sprintf("Unable to list receivers: %v", err)), nil
	}
	for _, id := range ids {
		if id == "" {
			return t.Fail("Receiver listing contains an empty entry"), nil
		}
		rc.AddResource("receiver", id)
	}
	return t.Pass(""), nil
}

func senderConstraints(ctx context.Context, rc *suite.RunContext, t types.Test) (types.Result, error) {
	senders := rc.Resources("sender")
	if len(senders) == 0 {
		return t.NA("Device advertises no senders"), nil
	}
	ep, err := rc.Endpoint(apiKey)
	if err != nil {
		return types.Result{}, err
	}
	for _, id := range senders {
		url := fmt.Sprintf("%ssingle/senders/%s/constraints/", ep.URL(apiKey), id)
		resp, err := rc.Client.Get(ctx, url)
		if err != nil {
			return t.Fail(fmt.Sprintf("Unable to read constraints for sender %s: %v", id, err)), nil
		}
		if resp.StatusCode != http.StatusOK {
			return t.Fail(fmt.Sprintf("Constraints for sender %s returned %d", id, resp.StatusCode)), nil
		}
		var constraints []map[string]any
		if err := resp.JSON(&constraints); err != nil {
			return t.Fail(fmt.Sprintf("Constraints for sender %s are not a JSON array", id)), nil
		}
	}
	return t.Pass(""), nil
}

func stagedRejectsInvalid(ctx context.Context, rc *suite.RunContext, t types.Test) (types.Result, error) {
	receivers := rc.Resources("receiver")
	if len(receivers) == 0 {
		return t.NA("Device advertises no receivers"), nil
	}
	ep, err := rc.Endpoint(apiKey)
	if err != nil {
		return types.Result{}, err
	}
	url := fmt.Sprintf("%ssingle/receivers/%s/staged", ep.URL(apiKey), receivers[0])
	resp, err := rc.Client.Do(ctx, http.MethodPatch, url, map[string]any{
		"transport_params": "definitely-not-an-array",
	})
	if err != nil {
		return t.Fail(fmt.Sprintf("Unable to PATCH staged parameters: %v", err)), nil
	}
	if resp.StatusCode != http.StatusBadRequest {
		return t.Fail(fmt.Sprintf("Malformed staged PATCH returned %d, expected 400", resp.StatusCode)), nil
	}
	return t.Pass(""), nil
}

func stagedReadable(ctx context.Context, rc *suite.RunContext, t types.Test) (types.Result, error) {
	receivers := rc.Resources("receiver")
	if len(receivers) == 0 {
		return t.NA("Device advertises no receivers"), nil
	}
	ep, err := rc.Endpoint(apiKey)
	if err != nil {
		return types.Result{}, err
	}
	for _, id := range receivers {
		url := fmt.Sprintf("%ssingle/receivers/%s/staged", ep.URL(apiKey), id)
		resp, err := rc.Client.Get(ctx, url)
		if err != nil {
			return t.Fail(fmt.Sprintf("Unable to read staged parameters for receiver %s: %v", id, err)), nil
		}
		if resp.StatusCode != http.StatusOK {
			return t.Fail(fmt.Sprintf("Staged parameters for receiver %s returned %d", id, resp.StatusCode)), nil
		}
		var staged map[string]any
		if err := resp.JSON(&staged); err != nil {
			return t.Fail(fmt.Sprintf("Staged parameters for receiver %s are not a JSON object", id)), nil
		}
		if _, ok := staged["transport_params"]; !ok {
			return t.Fail(fmt.Sprintf("Staged parameters for receiver %s lack transport_params", id)), nil
		}
	}
	return t.Pass(""), nil
}
