// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ardanlabs/starchain/business/web/client"
	"go.uber.org/zap"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// Validate asks the node to audit the chain and prints every discrepancy.
func Validate(ctx context.Context, log *zap.SugaredLogger, clt *client.Client) error {
	cv, err := clt.ValidateChain(ctx)
	if err != nil {
		return err
	}

	if cv.Valid {
		fmt.Println("chain is consistent")
		return nil
	}

	for _, msg := range cv.Errors {
		fmt.Println(msg)
	}

	log.Infow("validate", "status", "chain has discrepancies", "count", len(cv.Discrepancies))

	return nil
}

// Block prints the block at the specified height.
func Block(ctx context.Context, clt *client.Client, height string) error {
	if height == "" {
		fmt.Println("help: block <height>")
		return ErrHelp
	}

	h, err := strconv.ParseUint(height, 10, 64)
	if err != nil {
		return fmt.Errorf("parse height %q: %w", height, err)
	}

	block, err := clt.BlockByHeight(ctx, h)
	if err != nil {
		return err
	}

	return printJSON(block)
}

// Stars prints the stars registered to the specified address.
func Stars(ctx context.Context, clt *client.Client, address string) error {
	if address == "" {
		fmt.Println("help: stars <address>")
		return ErrHelp
	}

	stars, err := clt.StarsByAddress(ctx, address)
	if err != nil {
		return err
	}

	return printJSON(stars)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}
