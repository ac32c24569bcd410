package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/app"
	"warimas-storefront/internal/config"
	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

var errUsage = errors.New("usage")

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.OnSessionExpired(func() {
		fmt.Fprintln(os.Stderr, "session expired, run `storefront login` again")
	}))
	if err != nil {
		logger.L().Fatal("failed to start", zap.Error(err))
	}

	c := &cli{app: a, in: os.Stdin, out: os.Stdout}
	code := c.run(ctx, os.Args[1:])

	for name, client := range map[string]*apiclient.Client{"storefront": a.API, "admin": a.AdminAPI} {
		st := client.Stats()
		logger.L().Debug("api client stats",
			zap.String("client", name),
			zap.Uint64("calls", st.Calls),
			zap.Uint64("failures", st.Failures),
			zap.Uint64("refreshes", st.Refreshes),
			zap.Duration("mean_latency", st.MeanLatency),
		)
	}

	if err := a.Close(); err != nil {
		logger.L().Warn("failed to close", zap.Error(err))
	}
	os.Exit(code)
}

type command struct {
	usage string
	run   func(ctx context.Context, c *cli, args []string) error
}

type cli struct {
	app *app.App
	in  io.Reader
	out io.Writer
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"login":        {"login <email> <password>", cmdLogin},
		"logout":       {"logout", cmdLogout},
		"whoami":       {"whoami", cmdWhoami},
		"products":     {"products [-q keyword] [-category id] [-min n] [-max n] [-sort s] [-page n] [-size n]", cmdProducts},
		"product":      {"product <id>", cmdProduct},
		"categories":   {"categories", cmdCategories},
		"recent":       {"recent", cmdRecent},
		"favorites":    {"favorites", cmdFavorites},
		"fav-add":      {"fav-add <productId>", cmdFavAdd},
		"fav-rm":       {"fav-rm <productId>", cmdFavRemove},
		"cart":         {"cart", cmdCart},
		"cart-add":     {"cart-add <variantId> [qty]", cmdCartAdd},
		"cart-qty":     {"cart-qty <cartItemId> <qty>", cmdCartQty},
		"cart-rm":      {"cart-rm <cartItemId>", cmdCartRemove},
		"coupons":      {"coupons [-type SHIPPING|PRODUCT]", cmdCoupons},
		"preview":      {"preview [-ship code] [-product code] [cartItemId...]", cmdPreview},
		"checkout":     {"checkout -address a -phone p [-ship code] [-product code] [cartItemId...]", cmdCheckout},
		"orders":       {"orders [-status s]", cmdOrders},
		"order":        {"order <id>", cmdOrder},
		"order-cancel": {"order-cancel <id>", cmdOrderCancel},
		"chat":         {"chat <conversationId>", cmdChat},
		"admin":        {"admin <command> ...", cmdAdmin},
		"shell":        {"shell", cmdShell},
	}
}

// run executes one command line and returns the process exit code.
func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		c.usage()
		return 2
	}

	ctx, _ = logger.EnsureRequestID(ctx)
	if err := c.dispatch(ctx, args); err != nil {
		c.report(err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	// a bare errUsage gets the command's usage line, wrapped ones keep their detail
	err := cmd.run(ctx, c, args[1:])
	if err == errUsage {
		return fmt.Errorf("%w: %s", errUsage, cmd.usage)
	}
	return err
}

func (c *cli) report(err error) {
	fmt.Fprintln(c.out, "error:", apiclient.Message(err))
}

func (c *cli) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(c.out, "usage: storefront <command> [args]")
	for _, name := range names {
		fmt.Fprintln(c.out, "  "+commands[name].usage)
	}
}

// cmdShell keeps one process alive so cart selection, vouchers and the
// recently viewed list carry over between commands.
func cmdShell(ctx context.Context, c *cli, args []string) error {
	scanner := bufio.NewScanner(c.in)
	fmt.Fprint(c.out, "> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		switch {
		case len(fields) == 0:
		case fields[0] == "exit" || fields[0] == "quit":
			return nil
		case fields[0] == "shell":
			fmt.Fprintln(c.out, "already in a shell")
		case fields[0] == "help":
			c.usage()
		default:
			cmdCtx, _ := logger.EnsureRequestID(logger.WithRequestID(ctx, ""))
			if err := c.dispatch(cmdCtx, fields); err != nil {
				c.report(err)
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(c.out, "> ")
	}
	return scanner.Err()
}
