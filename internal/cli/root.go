package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/cartcache"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/identity"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/remote"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/storage"
	clientsync "github.com/0xVantrex/hillersons-spaces-sub000/internal/client/sync"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	Server   string
	Database string
	Verbose  bool
}

// NewRootCommand builds the cartctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cartctl",
		Short: "Shopping cart client",
		Long: `cartctl drives the cart sync engine against a running cart server,
keeping session, credential and cart state in a local SQLite file so the
cart survives between invocations exactly like a browser reload.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", "http://localhost:8080", "cart server base URL")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "cartctl.db", "path to local state database")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newShowCommand(opts),
		newAddCommand(opts),
		newRemoveCommand(opts),
		newSetQtyCommand(opts),
		newClearCommand(opts),
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newCheckoutCommand(opts),
	)

	return cmd
}

type session struct {
	engine *clientsync.Engine
	store  *storage.SQLite
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

// openSession wires the whole client stack for one command invocation and
// performs the identity-establishment load.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := storage.Open(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}

	resolver := identity.NewResolver(store, log)
	cache := cartcache.New(store, log)
	client := remote.New(opts.Server, log)
	engine := clientsync.NewEngine(resolver, cache, client, log)
	engine.Start(cmd.Context())

	return &session{engine: engine, store: store}, nil
}

func printCart(cmd *cobra.Command, engine *clientsync.Engine) {
	items := engine.Items()
	ident := engine.Identity()

	if ident.Kind == identity.Authenticated {
		cmd.Printf("cart for user %s (%s)\n", ident.Credential.UserID, engine.State())
	} else {
		cmd.Printf("guest cart %s (%s)\n", ident.SessionID, engine.State())
	}

	if len(items) == 0 {
		cmd.Println("  (empty)")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tPRICE\tQTY")
	for _, it := range items {
		fmt.Fprintf(w, "  %s\t%s\t%.2f\t%d\n", it.ID, it.Name, it.Price, it.Quantity)
	}
	w.Flush()
	cmd.Printf("subtotal: %.2f\n", domain.Subtotal(items))
}

func parseQty(s string) (int, error) {
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("quantity must be an integer: %q", s)
	}
	return q, nil
}
