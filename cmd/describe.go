package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/basketloom-cli/internal/dataset"
	"github.com/KaramelBytes/basketloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	descSheetName  string
	descSheetIndex int
	descMaxRows    int
	descTop        int
	descOutput     string
	descCache      bool
	descListSheets bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Profile a transaction table: shape, missing values, countries, top items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if descListSheets {
			names, err := dataset.SheetNames(path)
			if err != nil {
				return err
			}
			for i, n := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, n)
			}
			return nil
		}

		tab, err := loadTable(cmd.Context(), path, dataset.ReadOptions{
			MaxRows:    descMaxRows,
			SheetName:  descSheetName,
			SheetIndex: descSheetIndex,
		}, descCache)
		if err != nil {
			return err
		}
		md := dataset.Profile(filepath.Base(path), tab.Rows, descTop).Markdown()

		if descOutput != "" {
			if err := utils.SafeWriteFile(descOutput, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", descOutput)
			return nil
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), strings.TrimRight(md, "\n")+"\n")
		return err
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	f := describeCmd.Flags()
	f.StringVar(&descSheetName, "sheet-name", "", "XLSX: sheet name to read")
	f.IntVar(&descSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used when --sheet-name is empty)")
	f.IntVar(&descMaxRows, "max-rows", 0, "read at most this many data rows (0 = all)")
	f.IntVar(&descTop, "top", 10, "number of most frequent items to list")
	f.StringVarP(&descOutput, "output", "o", "", "write the profile to a file instead of stdout")
	f.BoolVar(&descCache, "cache", false, "read rows through the local SQLite cache")
	f.BoolVar(&descListSheets, "list-sheets", false, "XLSX: list sheet names and exit")
}
