package api

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture loads a shared envelope fixture from the repository testdata.
// Clients embed the same JSON to verify they parse what the server sends.
func fixture(t *testing.T, name string) map[string]any {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get caller info")

	root := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	raw, err := os.ReadFile(filepath.Join(root, "testdata", "envelope", name))
	require.NoError(t, err, "contract tests require shared fixtures")

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func marshalGeneric(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeContract_Success(t *testing.T) {
	expected := fixture(t, "success.json")

	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "post-1", "slug": "hello-world"})
	require.NoError(t, err)
	got := marshalGeneric(t, result)

	assert.Equal(t, expected["v"], got["v"])
	assert.Equal(t, expected["success"], got["success"])
	assert.Contains(t, got, "data")
	for key := range got {
		assert.Contains(t, expected, key, "unexpected field %s", key)
	}
}

func TestEnvelopeContract_SuccessNullData(t *testing.T) {
	expected := fixture(t, "success_null_data.json")

	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)
	got := marshalGeneric(t, result)

	assert.Equal(t, expected, got)
}

func TestEnvelopeContract_SimpleError(t *testing.T) {
	expected := fixture(t, "error_simple.json")

	result, err := EnvelopeTransformer(nil, "404", errors.New("resource not found"))
	require.NoError(t, err)
	got := marshalGeneric(t, result)

	assert.Equal(t, expected, got)
}

func TestEnvelopeContract_DetailedError(t *testing.T) {
	expected := fixture(t, "error_detailed.json")

	result, err := EnvelopeTransformer(nil, "400", &APIError{
		Code:    "VALIDATION",
		Message: "validation failed",
		Details: map[string]string{"title": "must be at least 5 characters"},
	})
	require.NoError(t, err)
	got := marshalGeneric(t, result)

	assert.Equal(t, expected, got)
}

// The version field must be named exactly "v"; renaming it breaks clients silently.
func TestEnvelopeContract_VersionFieldName(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", nil)
	require.NoError(t, err)
	got := marshalGeneric(t, result)

	assert.Contains(t, got, "v")
	assert.NotContains(t, got, "version")
	assert.NotContains(t, got, "Version")
}
