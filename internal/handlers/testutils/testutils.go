package testutils

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"assistancevoyage/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// WithChiURLParams puts path parameters into the chi route context of req.
func WithChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for k, v := range params {
		chiCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

// AsClient marks req as sent by an authenticated client.
func AsClient(req *http.Request, clientID int) *http.Request {
	return req.WithContext(auth.WithClientID(req.Context(), clientID))
}

// MultipartRequest builds a POST with one file per field.
func MultipartRequest(t *testing.T, target string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".bin")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}
