/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/dex-offer-service/internal/bootstrap"
	"github.com/spf13/cobra"
)

// offerSubmitWorkerCmd represents the offerSubmitWorker command
var offerSubmitWorkerCmd = &cobra.Command{
	Use:   "offer-submit-worker",
	Short: "Start the Offer Submit Worker",
	Long: `The Offer Submit Worker consumes queued build requests from the offer
stream, builds and persists the manage-offer operation, and marks the intent
ready for downstream submission. Failed builds are retried up to the
configured limit; caller input errors are never retried.`,
	Run: bootstrap.StartOfferSubmitWorker,
}

func init() {
	rootCmd.AddCommand(offerSubmitWorkerCmd)
}
