package specparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlSpec = `
functions:
  - name: sensor
    class:
      id: sensor-class
      version: "1.0"
      type: RUST_WASM
      code: AQID
    output_mapping: {}
resources:
  - name: http-ingress
    class_type: http-ingress
    configuration:
      port: "8080"
`

const jsonSpec = `{
  "workflow_functions": [
    {
      "name": "sensor",
      "function_class_specification": {
        "function_class_id": "sensor-class",
        "function_class_version": "1.0",
        "function_class_type": "RUST_WASM",
        "function_class_code": "AQID"
      },
      "output_mapping": {}
    }
  ],
  "workflow_resources": []
}`

func TestParseYAML(t *testing.T) {
	req, err := ParseYAML([]byte(yamlSpec))
	require.NoError(t, err)
	assert.Len(t, req.WorkflowFunctions, 1)
	assert.Equal(t, "sensor", req.WorkflowFunctions[0].Name)
	assert.Len(t, req.WorkflowResources, 1)
	assert.Equal(t, "http-ingress", req.WorkflowResources[0].Name)
}

func TestParseJSON(t *testing.T) {
	req, err := ParseJSON([]byte(jsonSpec))
	require.NoError(t, err)
	assert.Len(t, req.WorkflowFunctions, 1)
	assert.Equal(t, "sensor-class", req.WorkflowFunctions[0].FunctionClassSpecification.FunctionClassID)
}

func TestParseJSON_Empty(t *testing.T) {
	_, err := ParseJSON([]byte(`{"workflow_functions":[],"workflow_resources":[]}`))
	require.Error(t, err)
}

func TestParseJSON_DuplicateName(t *testing.T) {
	dup := `{
  "workflow_functions": [
    {"name":"a","function_class_specification":{"function_class_id":"c","function_class_version":"1"}},
    {"name":"a","function_class_specification":{"function_class_id":"c","function_class_version":"1"}}
  ],
  "workflow_resources": []
}`
	_, err := ParseJSON([]byte(dup))
	require.Error(t, err)
}

func TestParseClassYAML(t *testing.T) {
	const spec = `
id: sensor-class
version: "2.0"
type: RUST_WASM
code: AQID
`
	class, err := ParseClassYAML([]byte(spec))
	require.NoError(t, err)
	assert.Equal(t, "sensor-class", class.FunctionClassID)
	assert.Equal(t, "2.0", class.FunctionClassVersion)
}
