// Command storefront is a thin terminal client over the cart engine. It is
// the same engine a kiosk or BFF embeds; here each invocation loads the
// durable cart slot, applies one action, and persists the result.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/rbos-labs/rbos-backend/internal/cartengine"
	pkgauth "github.com/rbos-labs/rbos-backend/pkg/auth"
	"github.com/rbos-labs/rbos-backend/pkg/config"
	"github.com/rbos-labs/rbos-backend/pkg/logger"
	"github.com/rbos-labs/rbos-backend/pkg/types"
)

const usage = `usage: storefront <command> [args]

commands:
  add <itemId> <name> <unitPrice>   add one unit of an item
  qty <itemId> <qty>                set a line's quantity (0 removes)
  remove <itemId>                   remove a line
  clear                             empty the cart
  sync [jwt]                        reconcile with the server; a jwt merges
                                    as that identity, none fetches anonymously
  show                              print the current cart
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logg := logger.New(logger.Options{ServiceName: "storefront"})
	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config", err)
	}

	store, err := cartengine.NewFileStore(cfg.CartStore)
	if err != nil {
		fatal("open cart store", err)
	}
	gateway, err := cartengine.NewHTTPGateway(cfg.Gateway)
	if err != nil {
		fatal("build gateway", err)
	}
	engine, err := cartengine.NewEngine(store, gateway, nil, logg)
	if err != nil {
		fatal("build cart engine", err)
	}

	if err := run(engine, cfg, os.Args[1], os.Args[2:]); err != nil {
		fatal(os.Args[1], err)
	}
	printCart(engine.State(), engine.Token())
}

func run(engine *cartengine.Engine, cfg *config.Config, command string, args []string) error {
	switch command {
	case "add":
		if len(args) != 3 {
			return fmt.Errorf("add wants <itemId> <name> <unitPrice>")
		}
		price, err := strconv.ParseFloat(args[2], 64)
		if err != nil || price < 0 {
			return fmt.Errorf("invalid unit price %q", args[2])
		}
		return engine.Dispatch(cartengine.AddItem{Line: types.CartLine{
			ItemID:    args[0],
			Name:      args[1],
			UnitPrice: price,
		}})

	case "qty":
		if len(args) != 2 {
			return fmt.Errorf("qty wants <itemId> <qty>")
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		return engine.Dispatch(cartengine.UpdateQuantity{ItemID: args[0], Qty: qty})

	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("remove wants <itemId>")
		}
		return engine.Dispatch(cartengine.RemoveItem{ItemID: args[0]})

	case "clear":
		return engine.Dispatch(cartengine.ClearCart{})

	case "sync":
		var key *string
		if len(args) == 1 {
			claims, err := pkgauth.ParseAccessToken(cfg.JWT, args[0])
			if err != nil {
				return fmt.Errorf("parsing jwt: %w", err)
			}
			key = claims.IdentityKey()
		}
		return engine.ObserveIdentity(context.Background(), key)

	case "show":
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func printCart(state cartengine.State, token string) {
	for _, banner := range state.Banners {
		fmt.Printf("! %s\n", banner)
	}
	for _, line := range state.Lines {
		fmt.Printf("%-24s x%-3d %8.2f\n", line.Name, line.Qty, line.LineTotal)
	}
	fmt.Printf("subtotal %.2f  tax %.2f  total %.2f\n", state.Subtotal, state.Tax, state.Total)
	if token != "" {
		fmt.Printf("cart token %s\n", token)
	}
}

func fatal(step string, err error) {
	fmt.Fprintf(os.Stderr, "storefront: %s: %v\n", step, err)
	os.Exit(1)
}
