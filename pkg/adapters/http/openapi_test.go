package http_test

import (
	"context"
	"net/http"
	"testing"

	adapter "github.com/aretw0/courier/pkg/adapters/http"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPI_IsValid(t *testing.T) {
	doc := adapter.OpenAPI("1.2.3")
	require.NoError(t, doc.Validate(context.Background()))

	for _, path := range []string{"/users", "/schools", "/schools/{id}", "/schools/{id}/overview", "/schools/{id}/name"} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
	assert.Equal(t, "renameSchool", doc.Paths.Find("/schools/{id}/name").Put.OperationID)
}

func TestServeOpenAPI(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodGet, "/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := openapi3.NewLoader().LoadFromData(w.Body.Bytes())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	assert.Equal(t, "dev", doc.Info.Version)
	assert.NotNil(t, doc.Paths.Find("/schools/{id}/overview").Get)
}
