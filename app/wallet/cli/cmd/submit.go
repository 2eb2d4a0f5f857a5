package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/ardanlabs/starchain/business/web/client"
	"github.com/ardanlabs/starchain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var (
	ra    float64
	dec   float64
	mag   float64
	cen   string
	story string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Register a star to the wallet",
	Run:   submitRun,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().Float64Var(&ra, "ra", 0, "Right ascension of the star.")
	submitCmd.Flags().Float64Var(&dec, "dec", 0, "Declination of the star.")
	submitCmd.Flags().Float64Var(&mag, "mag", 0, "Magnitude of the star.")
	submitCmd.Flags().StringVar(&cen, "cen", "", "Constellation of the star.")
	submitCmd.Flags().StringVarP(&story, "story", "s", "", "Story of the star.")
	submitCmd.MarkFlagRequired("ra")
	submitCmd.MarkFlagRequired("dec")
}

func submitRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	clt := client.New(nodeURL)

	ch, err := clt.RequestChallenge(cmd.Context(), w.address)
	if err != nil {
		log.Fatal(err)
	}

	sig, err := w.sign(ch.Message)
	if err != nil {
		log.Fatal(err)
	}

	star := database.Star{
		RA:    &ra,
		Dec:   &dec,
		Cen:   cen,
		Story: story,
	}
	if cmd.Flags().Changed("mag") {
		star.Mag = &mag
	}

	block, err := clt.SubmitStar(cmd.Context(), client.Submission{
		Address:   w.address,
		Message:   ch.Message,
		Signature: sig,
		Star:      star,
	})
	if err != nil {
		log.Fatal(err)
	}

	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(data))
}
