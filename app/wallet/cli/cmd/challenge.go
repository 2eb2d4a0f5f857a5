package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/starchain/business/web/client"
	"github.com/spf13/cobra"
)

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Request and sign an ownership challenge",
	Run:   challengeRun,
}

func init() {
	rootCmd.AddCommand(challengeCmd)
}

func challengeRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	ch, err := client.New(nodeURL).RequestChallenge(cmd.Context(), w.address)
	if err != nil {
		log.Fatal(err)
	}

	sig, err := w.sign(ch.Message)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("message:   %s\nsignature: %s\nexpires:   %ds\n", ch.Message, sig, ch.WindowSeconds)
}
