package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCloseCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "close NAME TICKER",
		Short: "Close your entire position in a ticker at the current market price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, release, err := openEngine(rc)
			if err != nil {
				return err
			}
			defer release()

			ct, err := eng.ClosePosition(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("closed %s %d %s: entry %.2f exit %.2f pnl %+.2f\n",
				ct.Direction, ct.Qty, ct.Ticker, ct.EntryPrice, ct.ExitPrice, ct.PnL)
			return nil
		},
	}
}

func newPortfolioCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio NAME",
		Short: "Show cash, open positions, and estimated net worth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, release, err := openEngine(rc)
			if err != nil {
				return err
			}
			defer release()

			p, err := eng.Portfolio(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s\n  cash:      %12.2f\n  net worth: %12.2f (estimated)\n", p.Name, p.Cash, p.NetWorth)
			if len(p.Positions) == 0 {
				fmt.Println("  no open positions")
			}
			for _, pos := range p.Positions {
				fmt.Printf("  %-8s qty %6d  entry %10.2f  mark %10.2f  pnl %+10.2f\n",
					pos.Ticker, pos.Qty, pos.EntryPrice, pos.Mark, pos.Unrealized)
			}
			return nil
		},
	}
}

func newHistoryCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "history NAME",
		Short: "Show your closed trades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, release, err := openEngine(rc)
			if err != nil {
				return err
			}
			defer release()

			trades := eng.ClosedTrades(args[0])
			if len(trades) == 0 {
				fmt.Println("no closed trades yet")
				return nil
			}
			for _, ct := range trades {
				fmt.Printf("%s  %-5s %-8s qty %6d  entry %10.2f  exit %10.2f  pnl %+10.2f\n",
					ct.Timestamp, ct.Direction, ct.Ticker, ct.Qty, ct.EntryPrice, ct.ExitPrice, ct.PnL)
			}
			return nil
		},
	}
}

func newLeaderboardCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank every account by cash plus marked position value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, release, err := openEngine(rc)
			if err != nil {
				return err
			}
			defer release()

			for i, r := range eng.Leaderboard() {
				fmt.Printf("%2d. %-2s %-16s %12.2f\n", i+1, r.Badge, r.Name, r.Equity)
			}
			return nil
		},
	}
}

func newResetCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "reset NAME",
		Short: "Wipe all accounts, offers, and history (teacher only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, release, err := openEngine(rc)
			if err != nil {
				return err
			}
			defer release()

			if err := eng.ResetAll(args[0]); err != nil {
				return err
			}
			fmt.Println("all market data has been reset")
			return nil
		},
	}
}
