package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/moneyhub/classmarket/market"
)

func newSubmitCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "submit NAME TICKER Buy|Sell PRICE QUANTITY",
		Short: "Submit a new trade offer",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("price: %w", err)
			}
			quantity, err := strconv.ParseInt(args[4], 10, 64)
			if err != nil {
				return fmt.Errorf("quantity: %w", err)
			}

			eng, release, err := openEngine(rc)
			if err != nil {
				return err
			}
			defer release()

			offer, err := eng.SubmitOffer(args[0], args[1], market.Direction(args[2]), price, quantity)
			if err != nil {
				return err
			}
			fmt.Printf("offer %s: %s %s %d %s @ %.2f\n",
				offer.ID, offer.Submitter, offer.Direction, offer.Quantity, offer.Ticker, offer.Price)
			return nil
		},
	}
}

func newOffersCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "offers NAME",
		Short: "List open offers you can accept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, release, err := openEngine(rc)
			if err != nil {
				return err
			}
			defer release()

			offers := eng.OpenOffers(args[0])
			if len(offers) == 0 {
				fmt.Println("no open offers right now")
				return nil
			}
			for _, o := range offers {
				fmt.Printf("%s  %-12s %-4s %6d %-8s @ %10.2f\n",
					o.ID, o.Submitter, o.Direction, o.Quantity, o.Ticker, o.Price)
			}
			return nil
		},
	}
}

func newAcceptCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "accept OFFER_ID NAME",
		Short: "Accept an open offer, taking the opposite side",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, release, err := openEngine(rc)
			if err != nil {
				return err
			}
			defer release()

			m, err := eng.AcceptOffer(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("matched: %s buys %d %s from %s for %.2f\n",
				m.Buyer, m.Offer.Quantity, m.Offer.Ticker, m.Seller, m.Total)
			return nil
		},
	}
}
