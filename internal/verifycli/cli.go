// Package verifycli lets anyone holding revealed seeds recompute an outcome
// without talking to the server.
package verifycli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bx-casino/internal/casino"
	"bx-casino/internal/fairness"
	"bx-casino/internal/roulette"
	"bx-casino/internal/slots"
)

var ErrMismatch = errors.New("outcome does not match seeds")

type seedFlags struct {
	server string
	client string
	nonce  uint64
}

func (f *seedFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.server, "server", "", "revealed server seed")
	cmd.Flags().StringVar(&f.client, "client", "", "client seed")
	cmd.Flags().Uint64Var(&f.nonce, "nonce", 0, "outcome nonce")
	cmd.MarkFlagRequired("server")
	cmd.MarkFlagRequired("client")
}

func (f *seedFlags) seeds() fairness.Seeds {
	return fairness.Seeds{Server: f.server, Client: f.client}
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pfverify",
		Short:         "Verify provably fair casino outcomes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(hashCmd(), slotsCmd(), rouletteCmd(), verifyCmd())
	return root
}

func hashCmd() *cobra.Command {
	var f seedFlags
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the outcome digest and the server seed commitment",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "digest:           %s\n", fairness.CommitHash(f.seeds(), f.nonce))
			fmt.Fprintf(out, "server seed hash: %s\n", fairness.ServerSeedHash(f.server))
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func slotsCmd() *cobra.Command {
	var f seedFlags
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the slot grid for the seeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := fairness.Generate(f.seeds(), f.nonce, slots.GridDraw)
			if err != nil {
				return err
			}
			grid, err := slots.GridFromOutcome(o.Values)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for r := 0; r < slots.Rows; r++ {
				ids := make([]string, slots.Cols)
				for c := range ids {
					ids[c] = grid[r*slots.Cols+c].ID
				}
				fmt.Fprintln(out, strings.Join(ids, " "))
			}
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func rouletteCmd() *cobra.Command {
	var f seedFlags
	cmd := &cobra.Command{
		Use:   "roulette",
		Short: "Print the wheel number for the seeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			number, _, _, err := roulette.Spin(fairness.Session{ServerSeed: f.server, ClientSeed: f.client, Nonce: f.nonce})
			if err != nil {
				return err
			}
			p := roulette.Pocket(number)
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", p.Number, p.Colour)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func verifyCmd() *cobra.Command {
	var (
		f       seedFlags
		game    string
		outcome []int
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a claimed outcome; exits non-zero on mismatch",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := casino.Verify(casino.VerifyRequest{
				Seeds:   f.seeds(),
				Nonce:   f.nonce,
				Game:    casino.Game(game),
				Outcome: outcome,
			})
			if err != nil {
				return err
			}
			if !res.Valid {
				return fmt.Errorf("%w: expected %v", ErrMismatch, res.Values)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&game, "game", "", "slots or roulette")
	cmd.Flags().IntSliceVar(&outcome, "outcome", nil, "claimed values, comma separated")
	cmd.MarkFlagRequired("game")
	return cmd
}
