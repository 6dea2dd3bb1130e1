package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointURL(t *testing.T) {
	ep := Endpoint{Host: "10.0.0.5", Port: 8080, Version: "v1.1"}
	assert.Equal(t, "http://10.0.0.5:8080", ep.BaseURL())
	assert.Equal(t, "http://10.0.0.5:8080/x-conform/connection/v1.1/", ep.URL("connection"))

	ep.Selector = "device-2"
	assert.Equal(t, "http://10.0.0.5:8080/x-conform/connection/v1.1/device-2/", ep.URL("connection"))

	ep.Protocol = "https"
	assert.Equal(t, "https://10.0.0.5:8080", ep.BaseURL())
}

func TestEndpointValidate(t *testing.T) {
	valid := Endpoint{Host: "localhost", Port: 80, Version: "v1.0"}
	assert.NoError(t, valid.Validate(false))

	ep := valid
	ep.Host = ""
	assert.Error(t, ep.Validate(false))

	ep = valid
	ep.Port = 0
	assert.Error(t, ep.Validate(false))
	ep.Port = 70000
	assert.Error(t, ep.Validate(false))

	ep = valid
	ep.Version = ""
	assert.Error(t, ep.Validate(false))
	ep.Version = "banana"
	assert.Error(t, ep.Validate(false))

	ep = valid
	assert.Error(t, ep.Validate(true), "selector required but missing")
	ep.Selector = "device-1"
	assert.NoError(t, ep.Validate(true))
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, -1, CompareVersions("v1.0", "v1.1"))
	assert.Equal(t, 0, CompareVersions("v1.1", "v1.1"))
	assert.Equal(t, 1, CompareVersions("v2.0", "v1.3"))
	assert.Equal(t, 0, CompareVersions("1.0", "v1.0"), "bare versions are canonicalized")
}
