package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/checkout"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/identity"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			printCart(cmd, s.engine)
			return nil
		},
	}
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	var name string
	var price float64

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			item := domain.CartItem{ID: args[0], Name: name, Price: price}
			if err := s.engine.Add(cmd.Context(), item); err != nil {
				return err
			}

			printCart(cmd, s.engine)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().Float64Var(&price, "price", 0, "unit price")

	return cmd
}

func newRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.engine.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}

			printCart(cmd, s.engine)
			return nil
		},
	}
}

func newSetQtyCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-qty <product-id> <quantity>",
		Short: "Set a product's quantity (floor of 1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQty(args[1])
			if err != nil {
				return err
			}

			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.engine.SetQuantity(cmd.Context(), args[0], qty); err != nil {
				return err
			}

			printCart(cmd, s.engine)
			return nil
		},
	}
}

func newClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.engine.Clear(cmd.Context()); err != nil {
				return err
			}

			printCart(cmd, s.engine)
			return nil
		},
	}
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var user, token string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and merge the guest cart into the account cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			cred := identity.Credential{
				UserID:    user,
				Token:     token,
				ExpiresAt: time.Now().Add(ttl),
			}
			if err := s.engine.Login(cmd.Context(), cred); err != nil {
				return err
			}

			printCart(cmd, s.engine)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id (required)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "credential lifetime")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and start a fresh guest session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.engine.Logout(cmd.Context()); err != nil {
				return err
			}

			printCart(cmd, s.engine)
			return nil
		},
	}
}

// stdoutPlacer stands in for the order collaborator: it prints the
// finalized order and invents an id.
type stdoutPlacer struct {
	cmd *cobra.Command
}

func (p stdoutPlacer) PlaceOrder(_ context.Context, order checkout.Order) (string, error) {
	data, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		return "", err
	}
	p.cmd.Println(string(data))
	return uuid.NewString(), nil
}

func newCheckoutCommand(opts *RootOptions) *cobra.Command {
	var taxRate float64

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Hand the cart off as a finalized order and empty it",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			order, err := checkout.BuildOrder(s.engine.Items(), taxRate)
			if err != nil {
				return err
			}

			orderID, err := stdoutPlacer{cmd: cmd}.PlaceOrder(cmd.Context(), order)
			if err != nil {
				return err
			}

			if err := s.engine.Clear(cmd.Context()); err != nil {
				return err
			}

			cmd.Printf("order placed: %s\n", orderID)
			return nil
		},
	}

	cmd.Flags().Float64Var(&taxRate, "tax-rate", 0.16, "flat tax rate multiplier")

	return cmd
}
