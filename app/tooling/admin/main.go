// This program performs administrative tasks for the star registry node.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/starchain/app/tooling/admin/commands"
	"github.com/ardanlabs/starchain/business/web/client"
	"github.com/ardanlabs/starchain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("startup", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args conf.Args
		Node struct {
			URL     string        `conf:"default:http://localhost:8080"`
			Timeout time.Duration `conf:"default:30s"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Node.Timeout)
	defer cancel()

	return processCommands(ctx, cfg.Args, log, client.New(cfg.Node.URL))
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(ctx context.Context, args conf.Args, log *zap.SugaredLogger, clt *client.Client) error {
	switch args.Num(0) {
	case "validate":
		if err := commands.Validate(ctx, log, clt); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}

	case "block":
		if err := commands.Block(ctx, clt, args.Num(1)); err != nil {
			return fmt.Errorf("getting block: %w", err)
		}

	case "stars":
		if err := commands.Stars(ctx, clt, args.Num(1)); err != nil {
			return fmt.Errorf("getting stars: %w", err)
		}

	default:
		fmt.Println("validate:  audit every block and link in the chain")
		fmt.Println("block:     print the block at the specified height")
		fmt.Println("stars:     print the stars registered to the specified address")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}
