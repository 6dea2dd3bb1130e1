// Package registration ships the conformance suite for the registry-facing
// API: resource registration, validation of malformed registrations, and
// operator-confirmed behavior driven through the question/answer bridge.
package registration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/broadcastkit/conform/facade"
	"github.com/broadcastkit/conform/suite"
	"github.com/broadcastkit/conform/types"
)

const apiKey = "registration"

// DefaultSpec is the built-in API spec manifest for the registration API.
func DefaultSpec() *suite.APISpec {
	return &suite.APISpec{
		API:         apiKey,
		Name:        "Registration API",
		Reads:       nil, // registration is write-only below the version root
		ErrorSchema: "error.json",
	}
}

// NewSuite builds the registration suite around the given API spec manifest.
// A nil spec selects the built-in default.
func NewSuite(spec *suite.APISpec) *suite.Suite {
	if spec == nil {
		spec = DefaultSpec()
	}
	return &suite.Suite{
		ID:          apiKey,
		Name:        "Registration",
		Description: "Checks registry-facing behavior: resource registration, rejection of malformed registrations, and health reporting",
		EndpointSpecs: []suite.EndpointSpec{
			{APIKey: apiKey, Name: "Registration API"},
		},
		ManualCases: []suite.Case{
			{
				Name:        "registration_01_rejects_malformed_resource",
				Description: "A malformed resource registration is rejected with a 400",
				Run:         rejectsMalformedResource,
			},
			{
				Name:        "registration_02_rejects_unknown_type",
				Description: "A registration with an unknown resource type is rejected",
				Run:         rejectsUnknownType,
			},
			{
				Name:        "registration_03_health_of_unknown_node",
				Description: "A heartbeat for an unregistered node returns a 404",
				Run:         healthOfUnknownNode,
			},
			{
				Name:        "registration_04_node_appears_registered",
				Description: "The node under test appears in the registry",
				Run:         nodeAppearsRegistered,
			},
			{
				Name:        "registration_05_node_removed_after_stop",
				Description: "A stopped node is garbage collected from the registry",
				Run:         nodeRemovedAfterStop,
			},
		},
		Adapter: suite.NewSchemaAdapter(spec),
		PreRun:  checkReachable,
	}
}

func checkReachable(ctx context.Context, rc *suite.RunContext) error {
	ep, err := rc.Endpoint(apiKey)
	if err != nil {
		return err
	}
	resp, err := rc.Client.Get(ctx, ep.URL(apiKey))
	if err != nil {
		return fmt.Errorf("registration API is unreachable at %s: %w", ep.URL(apiKey), err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registration API root returned %d", resp.StatusCode)
	}
	return nil
}

func rejectsMalformedResource(ctx context.Context, rc *suite.RunContext, t types.Test) (types.Result, error) {
	ep, err := rc.Endpoint(apiKey)
	if err != nil {
		return types.Result{}, err
	}
	resp, err := rc.Client.Do(ctx, http.MethodPost, ep.URL(apiKey)+"resource", map[string]any{
		"type": "node",
		"data": "not-an-object",
	})
	if err != nil {
		return t.Fail(fmt.Sprintf("Unable to POST resource: %v", err)), nil
	}
	if resp.StatusCode != http.StatusBadRequest {
		return t.Fail(fmt.Sprintf("Malformed registration returned %d, expected 400", resp.StatusCode)), nil
	}
	if err := rc.Schemas.Validate("error.json", resp.Body); err != nil {
		return t.Fail(err.Error()), nil
	}
	return t.Pass(""), nil
}

func rejectsUnknownType(ctx context.Context, rc *suite.RunContext, t types.Test) (types.Result, error) {
	ep, err := rc.Endpoint(apiKey)
	if err != nil {
		return types.Result{}, err
	}
	resp, err := rc.Client.Do(ctx, http.MethodPost, ep.URL(apiKey)+"resource", map[string]any{
		"type": "wibble",
		"data": map[string]any{"id": "3b8be755-08ff-452b-b217-c9151eb21193"},
	})
	if err != nil {
		return t.Fail(fmt.Sprintf("Unable to POST resource: %v", err)), nil
	}
	if resp.StatusCode != http.StatusBadRequest {
		return t.Fail(fmt.Sprintf("Unknown resource type returned %d, expected 400", resp.StatusCode)), nil
	}
	return t.Pass(""), nil
}

func healthOfUnknownNode(ctx context.Context, rc *suite.RunContext, t types.Test) (types.Result, error) {
	ep, err := rc.Endpoint(apiKey)
	if err != nil {
		return types.Result{}, err
	}
	resp, err := rc.Client.Do(ctx, http.MethodPost,
		ep.URL(apiKey)+"health/nodes/b864c7c8-e651-4bba-9ab1-9a151f0e1301", nil)
	if err != nil {
		return t.Fail(fmt.Sprintf("Unable to POST heartbeat: %v", err)), nil
	}
	if resp.StatusCode != http.StatusNotFound {
		return t.Fail(fmt.Sprintf("Heartbeat for unknown node returned %d, expected 404", resp.StatusCode)), nil
	}
	if err := rc.Schemas.Validate("error.json", resp.Body); err != nil {
		return t.Fail(err.Error()), nil
	}
	return t.Pass(""), nil
}

// nodeAppearsRegistered needs a human or automated responder to confirm
// what the registry's own UI shows.
func nodeAppearsRegistered(ctx context.Context, rc *suite.RunContext, t types.Test) (types.Result, error) {
	if rc.Asker == nil {
		return t.Manual("Confirm by inspection that the node under test is listed in the registry"), nil
	}
	ans, ok, err := rc.Asker.Ask(ctx, types.Question{
		Type: types.SingleChoice,
		Name: t.Name,
		Prompt: "Check the registry's node listing. Is the node under test present " +
			"with its advertised label?",
		Answers: []types.AnswerOption{
			{ID: "present", Display: "Yes, the node is listed"},
			{ID: "absent", Display: "No, the node is missing"},
		},
	})
	if errors.Is(err, facade.ErrNoResponder) {
		return t.Manual("Confirm by inspection that the node under test is listed in the registry"), nil
	}
	if err != nil {
		return types.Result{}, err
	}
	if !ok {
		return t.Unclear("No answer received before the question timed out"), nil
	}
	choice, _ := ans.Response.Single()
	if choice != "present" {
		return t.Fail("Operator reported the node is not listed in the registry"), nil
	}
	return t.Pass(""), nil
}

// nodeRemovedAfterStop asks the operator to stop the node, waits out the
// garbage collection interval, then asks whether the registry dropped it.
func nodeRemovedAfterStop(ctx context.Context, rc *suite.RunContext, t types.Test) (types.Result, error) {
	if rc.Asker == nil {
		return t.Manual("Stop the node under test and confirm the registry garbage collects it"), nil
	}
	_, ok, err := rc.Asker.Ask(ctx, types.Question{
		Type:    types.Action,
		Name:    t.Name,
		Prompt:  "Stop the node under test now, then confirm.",
		Timeout: 5 * time.Minute,
	})
	if errors.Is(err, facade.ErrNoResponder) {
		return t.Manual("Stop the node under test and confirm the registry garbage collects it"), nil
	}
	if err != nil {
		return types.Result{}, err
	}
	if !ok {
		return t.Unclear("Operator did not confirm stopping the node before the question timed out"), nil
	}

	ans, ok, err := rc.Asker.Ask(ctx, types.Question{
		Type: types.SingleChoice,
		Name: t.Name,
		Prompt: "Wait for the registry's garbage collection interval to elapse. " +
			"Has the stopped node disappeared from the registry's node listing?",
		Answers: []types.AnswerOption{
			{ID: "removed", Display: "Yes, the node was removed"},
			{ID: "still_listed", Display: "No, the node is still listed"},
		},
		Timeout: 5 * time.Minute,
	})
	if err != nil {
		return types.Result{}, err
	}
	if !ok {
		return t.Unclear("No answer received before the question timed out"), nil
	}
	choice, _ := ans.Response.Single()
	if choice != "removed" {
		return t.Fail("Registry did not garbage collect the stopped node"), nil
	}
	return t.Pass(""), nil
}
