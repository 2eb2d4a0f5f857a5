package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/starchain/business/web/client"
	"github.com/spf13/cobra"
)

var starsCmd = &cobra.Command{
	Use:   "stars",
	Short: "Print the stars registered to the wallet",
	Run:   starsRun,
}

func init() {
	rootCmd.AddCommand(starsCmd)
}

func starsRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	stars, err := client.New(nodeURL).StarsByAddress(cmd.Context(), w.address)
	if err != nil {
		log.Fatal(err)
	}

	for _, s := range stars {
		fmt.Printf("ra[%g] dec[%g] cen[%s]: %s\n", *s.Star.RA, *s.Star.Dec, s.Star.Cen, s.Star.Story)
	}
}
