/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/dex-offer-service/internal/bootstrap"
	"github.com/spf13/cobra"
)

// offerGatewayCmd represents the offerGateway command
var offerGatewayCmd = &cobra.Command{
	Use:   "offer-gateway",
	Short: "Start the Offer Gateway service",
	Long: `The Offer Gateway exposes the HTTP surface for building manage-offer
operations. It validates trade intents, converts them into protocol fields,
encodes the wire payload, persists the intent history and can enqueue
asynchronous builds onto the offer stream.`,
	Run: bootstrap.StartOfferGateway,
}

func init() {
	rootCmd.AddCommand(offerGatewayCmd)
}
