// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/starchain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/starchain/foundation/blockchain/state"
	"github.com/ardanlabs/starchain/foundation/events"
	"github.com/ardanlabs/starchain/foundation/nameservice"
	"github.com/ardanlabs/starchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/status", pbl.Status)
	app.Handle(http.MethodPost, version, "/requestValidation", pbl.RequestValidation)
	app.Handle(http.MethodPost, version, "/submitstar", pbl.SubmitStar)
	app.Handle(http.MethodGet, version, "/block/height/:height", pbl.BlockByHeight)
	app.Handle(http.MethodGet, version, "/block/hash/:hash", pbl.BlockByHash)
	app.Handle(http.MethodGet, version, "/blocks/address/:address", pbl.StarsByAddress)
	app.Handle(http.MethodGet, version, "/validate/height/:height", pbl.ValidateBlock)
	app.Handle(http.MethodGet, version, "/validate/chain", pbl.ValidateChain)
}
