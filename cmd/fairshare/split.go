package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/mmynk/fairshare/internal/billstore"
	"github.com/mmynk/fairshare/internal/calculator"
	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/normalize"
	"github.com/mmynk/fairshare/internal/settlement"
)

var splitCmd = &cobra.Command{
	Use:   "split [bill.json]",
	Short: "Print who owes what for a bill",
	Long: `Normalize a bill and print each participant's total, their share of every
charge, and a payment request link.

The bill is read from the given file, from stdin when the file is "-", or the
built-in example is used with --example. Any JSON is accepted: missing or
invalid fields are repaired before splitting.

Examples:
  # Split the example dinner
  fairshare split --example

  # Split a bill, sharing unassigned items among everyone
  fairshare split bill.json --equal-unassigned

  # Alex (p1) paid, who owes Alex what
  fairshare split --example --paid-by p1

  # Machine-readable output in German formatting
  fairshare split bill.json --json --lang de-DE`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSplit,
}

func init() {
	f := splitCmd.Flags()
	f.Bool("example", false, "use the built-in example bill")
	f.Bool("equal-unassigned", false, "split every unassigned item equally among all participants")
	f.Bool("json", false, "print the normalized bill and report as JSON")
	f.String("lang", "", "language for amounts, e.g. de-DE (default en-US)")
	f.String("paid-by", "", "participant id who paid the whole bill; prints who pays whom")
}

func runSplit(cmd *cobra.Command, args []string) error {
	example, _ := cmd.Flags().GetBool("example")
	equalUnassigned, _ := cmd.Flags().GetBool("equal-unassigned")
	asJSON, _ := cmd.Flags().GetBool("json")
	lang, _ := cmd.Flags().GetString("lang")
	paidBy, _ := cmd.Flags().GetString("paid-by")

	bill, err := loadBill(cmd.InOrStdin(), args, example)
	if err != nil {
		return err
	}

	store := billstore.NewStore()
	store.Load(bill)
	if equalUnassigned {
		if bill, err = store.Apply(splitUnassignedEqually); err != nil {
			return err
		}
	}

	totals := calculator.ComputeTotals(bill)
	report := settlement.Summary(bill, totals)
	var transfers []settlement.TransferLine
	if paidBy != "" {
		if _, ok := bill.Participant(paidBy); !ok {
			return eris.Errorf("split: unknown participant %q", paidBy)
		}
		_, ts := calculator.Settle(totals, calculator.PaidBy(totals, paidBy))
		transfers = settlement.Transfers(bill, ts)
	}
	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Bill      models.Bill               `json:"bill"`
			Report    settlement.Report         `json:"report"`
			Transfers []settlement.TransferLine `json:"transfers,omitempty"`
		}{bill, report, transfers})
	}

	f := settlement.DefaultFormatter
	if lang != "" {
		tag, err := language.Parse(lang)
		if err != nil {
			return eris.Wrapf(err, "split: parse language %q", lang)
		}
		f = settlement.Formatter{Language: tag}
	}
	text := f.Text(report)
	if len(transfers) > 0 {
		text += "\n" + f.TransfersText(transfers, report.Currency)
	}
	_, err = fmt.Fprint(out, text)
	return err
}

// loadBill reads and normalizes the bill named by args.
func loadBill(stdin io.Reader, args []string, example bool) (models.Bill, error) {
	if example {
		return billstore.ExampleBill(), nil
	}
	if len(args) == 0 {
		return models.Bill{}, eris.New("split: a bill file or --example is required")
	}

	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return models.Bill{}, eris.Wrap(err, "split: read bill")
	}
	return normalize.NormalizeJSON(data), nil
}

// splitUnassignedEqually gives every participant weight 1 on each item that
// has no positive allocation.
func splitUnassignedEqually(b models.Bill) models.Bill {
	ids := make([]string, 0, len(b.Participants))
	for _, p := range b.Participants {
		ids = append(ids, p.ID)
	}
	for _, item := range b.LineItems {
		if split, ok := b.SplitFor(item.ID); ok && split.TotalWeight() > 0 {
			continue
		}
		b = billstore.SplitEqually(b, item.ID, ids)
	}
	return b
}
