// Package client provides access to the star registry node over its v1
// web api for the wallet and admin tooling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ardanlabs/starchain/business/web/errs"
	"github.com/ardanlabs/starchain/foundation/blockchain/database"
)

// Challenge is the ownership message issued by the node.
type Challenge struct {
	Address       string `json:"address"`
	Message       string `json:"message"`
	WindowSeconds int64  `json:"window_seconds"`
}

// Submission is the signed request to register a star.
type Submission struct {
	Address   string        `json:"address"`
	Message   string        `json:"message"`
	Signature string        `json:"signature"`
	Star      database.Star `json:"star"`
}

// Star is a star registered to an owner.
type Star struct {
	Owner     string        `json:"owner"`
	OwnerName string        `json:"owner_name"`
	Star      database.Star `json:"star"`
}

// ChainValidation is the outcome of auditing the whole chain.
type ChainValidation struct {
	Valid         bool                   `json:"valid"`
	Errors        []string               `json:"errors"`
	Discrepancies []database.Discrepancy `json:"discrepancies"`
}

// Error is returned when the node responds with a failure.
type Error struct {
	Status   int
	Response errs.Response
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Response.Fields) > 0 {
		return fmt.Sprintf("status %d: %s: %v", e.Status, e.Response.Error, e.Response.Fields)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Response.Error)
}

// =============================================================================

// Client talks to a single node.
type Client struct {
	host string
	http *http.Client
}

// New constructs a client for the node at the specified host url.
func New(host string) *Client {
	return &Client{
		host: strings.TrimSuffix(host, "/"),
		http: http.DefaultClient,
	}
}

// RequestChallenge asks the node for the message the address needs to sign.
func (c *Client) RequestChallenge(ctx context.Context, address string) (Challenge, error) {
	req := struct {
		Address string `json:"address"`
	}{
		Address: address,
	}

	var ch Challenge
	if err := c.do(ctx, http.MethodPost, "/v1/requestValidation", req, &ch); err != nil {
		return Challenge{}, err
	}

	return ch, nil
}

// SubmitStar sends the signed submission and returns the sealed block.
func (c *Client) SubmitStar(ctx context.Context, sub Submission) (database.Block, error) {
	var block database.Block
	if err := c.do(ctx, http.MethodPost, "/v1/submitstar", sub, &block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// BlockByHeight returns the block at the specified height.
func (c *Client) BlockByHeight(ctx context.Context, height uint64) (database.Block, error) {
	var block database.Block
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/block/height/%d", height), nil, &block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// StarsByAddress returns the stars registered by the address.
func (c *Client) StarsByAddress(ctx context.Context, address string) ([]Star, error) {
	var stars []Star
	if err := c.do(ctx, http.MethodGet, "/v1/blocks/address/"+url.PathEscape(address), nil, &stars); err != nil {
		return nil, err
	}

	return stars, nil
}

// ValidateChain asks the node to audit the whole chain.
func (c *Client) ValidateChain(ctx context.Context) (ChainValidation, error) {
	var cv ChainValidation
	if err := c.do(ctx, http.MethodGet, "/v1/validate/chain", nil, &cv); err != nil {
		return ChainValidation{}, err
	}

	return cv, nil
}

// =============================================================================

func (c *Client) do(ctx context.Context, method string, path string, body any, resp any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, r)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		e := Error{Status: res.StatusCode}
		if err := json.NewDecoder(res.Body).Decode(&e.Response); err != nil {
			e.Response.Error = http.StatusText(res.StatusCode)
		}
		return &e
	}

	if err := json.NewDecoder(res.Body).Decode(resp); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	return nil
}
