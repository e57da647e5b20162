package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mmynk/fairshare/internal/calculator"
	"github.com/mmynk/fairshare/internal/extract"
	"github.com/mmynk/fairshare/internal/normalize"
	"github.com/mmynk/fairshare/internal/settlement"
)

var extractCmd = &cobra.Command{
	Use:   "extract [receipt-image]",
	Short: "Extract a bill from a receipt photo",
	Long: `Send a receipt image and/or instructions to the model and print the
normalized bill as JSON. Requires ANTHROPIC_API_KEY.

Examples:
  # Extract a receipt
  fairshare extract receipt.jpg --instructions "Alex had the burger, split the rest"

  # Instructions only, with a summary instead of JSON
  fairshare extract --instructions "Pizza 24 for Sam and Kim, 18% tip" --summary`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.String("instructions", "", "who had what, in plain language")
	f.String("media-type", "", "image media type (sniffed when empty)")
	f.Bool("summary", false, "print the split summary instead of the bill JSON")
}

func runExtract(cmd *cobra.Command, args []string) error {
	instructions, _ := cmd.Flags().GetString("instructions")
	mediaType, _ := cmd.Flags().GetString("media-type")
	summary, _ := cmd.Flags().GetBool("summary")

	var image []byte
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "extract: read image")
		}
		image = data
	}

	var client extract.Client
	if cfg.ExtractionEnabled() {
		client = extract.NewClient(cfg.Anthropic.APIKey)
	}
	svc := extract.NewService(client, extract.Config{
		Model:         cfg.Anthropic.Model,
		MaxTokens:     cfg.Anthropic.MaxTokens,
		RatePerMinute: cfg.Extract.RatePerMinute,
		MaxImageBytes: cfg.Extract.MaxImageBytes,
	})

	raw, err := svc.Extract(cmd.Context(), extract.Request{
		Image:        image,
		MediaType:    mediaType,
		Instructions: instructions,
	})
	if err != nil {
		return err
	}
	bill := normalize.Normalize(raw)

	out := cmd.OutOrStdout()
	if summary {
		_, err := fmt.Fprint(out, settlement.Summary(bill, calculator.ComputeTotals(bill)).Text())
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(bill)
}
