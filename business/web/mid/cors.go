package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/starchain/foundation/web"
)

// Cors sets the response headers browsers need to call the star registry
// from another origin. Preflight requests are answered here without
// reaching the handler.
func Cors(origin string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			hdr := w.Header()
			hdr.Set("Access-Control-Allow-Origin", origin)
			hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			hdr.Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length, Accept-Encoding")
			hdr.Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				return web.Respond(ctx, w, nil, http.StatusNoContent)
			}

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
