package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/gsokolov/noteblog/internal/middleware"
)

// requestWithChiURLParams builds a request carrying chi URL params, so
// handlers can be exercised without mounting a router.
func requestWithChiURLParams(method, target string, body []byte, params map[string]string) *http.Request {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// asUser stamps the request context the way JWTMiddleware does.
func asUser(req *http.Request, userID int, username string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.UsernameKey, username)
	return req.WithContext(ctx)
}
