// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/starchain/business/sys/metrics"
	"github.com/ardanlabs/starchain/business/sys/validate"
	"github.com/ardanlabs/starchain/business/web/errs"
	"github.com/ardanlabs/starchain/foundation/blockchain/database"
	"github.com/ardanlabs/starchain/foundation/blockchain/ownership"
	"github.com/ardanlabs/starchain/foundation/blockchain/state"
	"github.com/ardanlabs/starchain/foundation/events"
	"github.com/ardanlabs/starchain/foundation/nameservice"
	"github.com/ardanlabs/starchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of star registry endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide chain events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	if h.Evts == nil {
		return errs.NewTrusted(errors.New("event feed not enabled"), http.StatusNotFound)
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(e); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Status returns the height and hash of the latest block.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.LatestBlock()

	resp := status{
		Height:          int(latest.Height),
		LatestBlockHash: latest.Hash,
		WindowSeconds:   int64(h.State.ChallengeWindow() / time.Second),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RequestValidation issues the ownership challenge for a wallet address.
func (h Handlers) RequestValidation(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req challengeRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	resp := challenge{
		Address:       req.Address,
		Message:       h.State.RequestChallenge(req.Address),
		WindowSeconds: int64(h.State.ChallengeWindow() / time.Second),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitStar records a star for the owner of a signed challenge.
func (h Handlers) SubmitStar(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req submitRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	h.Log.Infow("submit star", "traceid", v.TraceID, "address", req.Address, "message", req.Message)

	block, err := h.State.Submit(req.Address, req.Message, req.Signature, req.Star)
	if err != nil {
		return trusted(err)
	}

	metrics.SetHeight(int(block.Height))

	return web.Respond(ctx, w, block, http.StatusOK)
}

// BlockByHeight returns the block at the specified height.
func (h Handlers) BlockByHeight(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	height, err := heightParam(r)
	if err != nil {
		return err
	}

	block, err := h.State.LookupByHeight(height)
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// BlockByHash returns the block with the specified hash.
func (h Handlers) BlockByHash(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.LookupByHash(web.Param(r, "hash"))
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// StarsByAddress returns the stars registered by the wallet address with
// their stories decoded.
func (h Handlers) StarsByAddress(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	records, err := h.State.StarsOwnedBy(web.Param(r, "address"))
	if err != nil {
		return err
	}

	stars := make([]star, len(records))
	for i, rec := range records {
		stars[i] = star{
			Owner:     rec.Owner,
			OwnerName: h.lookup(rec.Owner),
			Star:      rec.Star,
		}
	}

	return web.Respond(ctx, w, stars, http.StatusOK)
}

// ValidateBlock reports whether the block at the specified height still
// matches its hash.
func (h Handlers) ValidateBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	height, err := heightParam(r)
	if err != nil {
		return err
	}

	valid, err := h.State.ValidateOneBlock(height)
	if err != nil {
		return trusted(err)
	}

	resp := blockValidation{
		Height: height,
		Valid:  valid,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ValidateChain audits the whole chain and returns the discrepancies found.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	discrepancies, err := h.State.ValidateEntireChain()
	if err != nil {
		return err
	}

	resp := chainValidation{
		Valid:         len(discrepancies) == 0,
		Errors:        make([]string, len(discrepancies)),
		Discrepancies: discrepancies,
	}
	for i, d := range discrepancies {
		resp.Errors[i] = d.String()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

func (h Handlers) lookup(address string) string {
	if h.NS == nil {
		return address
	}
	return h.NS.Lookup(address)
}

func heightParam(r *http.Request) (uint64, error) {
	param := web.Param(r, "height")

	height, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return 0, errs.NewTrusted(fmt.Errorf("invalid height %q: %w", param, database.ErrInvalidPayload), http.StatusBadRequest)
	}

	return height, nil
}

// trusted maps the chain errors to the status the client receives.
func trusted(err error) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return errs.NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, database.ErrInvalidPayload):
		return errs.NewTrusted(err, http.StatusBadRequest)

	case errors.Is(err, ownership.ErrExpired):
		return errs.NewTrusted(err, http.StatusForbidden)

	case errors.Is(err, ownership.ErrUnauthorized):
		return errs.NewTrusted(err, http.StatusUnauthorized)
	}

	return err
}
