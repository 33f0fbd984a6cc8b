package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/basketloom-cli/internal/dataset"
	"github.com/KaramelBytes/basketloom-cli/internal/pipeline"
	"github.com/KaramelBytes/basketloom-cli/internal/report"
	"github.com/KaramelBytes/basketloom-cli/internal/rules"
	"github.com/KaramelBytes/basketloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	mineMinSupport   float64
	mineMetric       string
	mineMinThreshold float64
	mineMaxLen       int
	mineWorkers      int
	mineCountry      string
	mineItemColumn   string
	mineSheetName    string
	mineSheetIndex   int
	mineMaxRows      int
	mineFormat       string
	mineOutput       string
	mineTop          int
	mineSort         string
	mineCache        bool
)

var mineCmd = &cobra.Command{
	Use:   "mine <file>",
	Short: "Mine frequent itemsets and association rules from a transaction table",
	Long: `Reads an Online Retail style table (.csv, .tsv or .xlsx), keeps complete, positive,
non-cancelled lines of one country, encodes invoices as baskets and reports the
association rules whose metric meets the threshold.

Pass --country "" to keep every country.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		f := cmd.Flags()

		// Parameters first: bad thresholds fail before any file is read
		params := pipeline.Params{
			MinSupport:   c.MinSupport,
			Metric:       rules.Metric(c.Metric),
			MinThreshold: c.MinThreshold,
			MaxLen:       c.MaxLen,
			Workers:      c.Workers,
		}
		if f.Changed("min-support") {
			params.MinSupport = mineMinSupport
		}
		if f.Changed("metric") {
			params.Metric = rules.Metric(mineMetric)
		}
		if f.Changed("min-threshold") {
			params.MinThreshold = mineMinThreshold
		}
		if f.Changed("max-len") {
			params.MaxLen = mineMaxLen
		}
		if f.Changed("workers") {
			params.Workers = mineWorkers
		}
		if err := params.Validate(); err != nil {
			return err
		}

		format, err := outputFormat(f.Changed("format"), c.Format)
		if err != nil {
			return err
		}
		sortBy := rules.Metric("")
		if mineSort != "" {
			if sortBy, err = rules.ParseMetric(mineSort); err != nil {
				return err
			}
		}

		prep := dataset.PrepareOptions{
			Country:           c.Country,
			ItemColumn:        dataset.ItemColumn(c.ItemColumn),
			PositiveOnly:      c.PositiveOnly,
			DropCancellations: c.DropCancellations,
			RequireCustomer:   c.RequireCustomer,
		}
		if f.Changed("country") {
			prep.Country = mineCountry
		}
		if f.Changed("item-column") {
			prep.ItemColumn = dataset.ItemColumn(mineItemColumn)
		}
		if prep.ItemColumn, err = dataset.ParseItemColumn(string(prep.ItemColumn)); err != nil {
			return err
		}

		tab, err := loadTable(cmd.Context(), path, dataset.ReadOptions{
			MaxRows:    mineMaxRows,
			SheetName:  mineSheetName,
			SheetIndex: mineSheetIndex,
		}, mineCache)
		if err != nil {
			return err
		}
		lines, stats, err := dataset.PrepareTable(tab, prep)
		var mc *dataset.MissingColumnError
		if errors.As(err, &mc) {
			return fmt.Errorf("%w%s", err, filterHint(mc))
		}
		if err != nil {
			return err
		}
		logger.Info("prepared lines",
			"input", stats.Input,
			"kept", stats.Kept,
			"incomplete", stats.Incomplete,
			"cancelled", stats.Cancelled,
			"non_positive", stats.NonPositive,
			"other_country", stats.OtherCountry)

		res, err := pipeline.Run(cmd.Context(), lines, params, logger)
		if err != nil {
			return err
		}
		rep := report.New(res, report.Options{
			Source:   filepath.Base(path),
			Country:  prep.Country,
			Prepared: &stats,
			Sort:     sortBy,
			Top:      mineTop,
		})

		if mineOutput == "" {
			return rep.Write(cmd.OutOrStdout(), format)
		}
		var buf bytes.Buffer
		if err := rep.Write(&buf, format); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(mineOutput, buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rules (%s) to %s\n", len(rep.Rules), format, mineOutput)
		return nil
	},
}

// filterHint names the settings that stop preparation from needing the
// missing columns.
func filterHint(mc *dataset.MissingColumnError) string {
	var hints []string
	for _, c := range mc.Columns {
		switch c {
		case dataset.ColCountry:
			hints = append(hints, `--country ""`)
		case dataset.ColCustomerID:
			hints = append(hints, "basketloom config set require_customer false")
		case dataset.ColStockCode:
			hints = append(hints, "--item-column description")
		case dataset.ColDescription:
			hints = append(hints, "--item-column stockcode")
		}
	}
	if len(hints) == 0 {
		return ""
	}
	return "; use " + strings.Join(hints, " and ")
}

// outputFormat resolves --format, falling back to the --output extension and
// then to the configured default.
func outputFormat(flagSet bool, configured string) (report.Format, error) {
	if flagSet {
		return report.ParseFormat(mineFormat)
	}
	if mineOutput != "" {
		if f, ok := report.FormatForPath(mineOutput); ok {
			return f, nil
		}
	}
	return report.ParseFormat(configured)
}

func init() {
	rootCmd.AddCommand(mineCmd)
	f := mineCmd.Flags()
	f.Float64Var(&mineMinSupport, "min-support", 0, "minimum itemset support in (0,1] (default from config: 0.03)")
	f.StringVar(&mineMetric, "metric", "", "rule metric: support|confidence|lift|leverage|conviction (default from config: lift)")
	f.Float64Var(&mineMinThreshold, "min-threshold", 0, "minimum value of --metric for a rule to be kept (default from config: 3)")
	f.IntVar(&mineMaxLen, "max-len", 0, "maximum itemset size (0 = unlimited)")
	f.IntVar(&mineWorkers, "workers", 0, "parallel support counters (0 = number of CPUs)")
	f.StringVar(&mineCountry, "country", "", "keep only this country (default from config: United Kingdom)")
	f.StringVar(&mineItemColumn, "item-column", "", "item label column: description|stockcode")
	f.StringVar(&mineSheetName, "sheet-name", "", "XLSX: sheet name to read")
	f.IntVar(&mineSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used when --sheet-name is empty)")
	f.IntVar(&mineMaxRows, "max-rows", 0, "read at most this many data rows (0 = all)")
	f.StringVar(&mineFormat, "format", "", "output format: table|markdown|csv|json|yaml")
	f.StringVarP(&mineOutput, "output", "o", "", "write the report to a file instead of stdout")
	f.IntVar(&mineTop, "top", 0, "report only the first N rules after sorting (0 = all)")
	f.StringVar(&mineSort, "sort", "", "sort rules by metric, highest first (default: generation order)")
	f.BoolVar(&mineCache, "cache", false, "read rows through the local SQLite cache")
}
