package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/basketloom-cli/internal/dataset"
	"github.com/KaramelBytes/basketloom-cli/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	cacheSheetName  string
	cacheSheetIndex int
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local cache of parsed transaction rows",
}

var cacheBuildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Parse a table and store its rows in the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt := dataset.ReadOptions{SheetName: cacheSheetName, SheetIndex: cacheSheetIndex}
		tab, err := dataset.ReadTable(path, opt)
		if err != nil {
			return err
		}
		fp, err := store.FingerprintFile(path, sheetKey(opt))
		if err != nil {
			return err
		}
		st, err := openCache()
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveTable(cmd.Context(), fp, tab); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cached %s rows from %s\n", humanize.Comma(int64(len(tab.Rows))), fp.Path)
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openCache()
		if err != nil {
			return err
		}
		defer st.Close()
		srcs, err := st.ListSources(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(srcs) == 0 {
			fmt.Fprintln(out, "No cached sources.")
			return nil
		}
		fmt.Fprintf(out, "%-48s %-14s %10s %10s  %s\n", "Source", "Sheet", "Rows", "Size", "Cached")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, s := range srcs {
			sheet := s.Sheet
			if sheet == "" {
				sheet = "-"
			}
			fmt.Fprintf(out, "%-48s %-14s %10s %10s  %s\n",
				s.Path, sheet,
				humanize.Comma(int64(s.Rows)),
				humanize.Bytes(uint64(s.Size)),
				humanize.Time(s.CreatedAt))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached source",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openCache()
		if err != nil {
			return err
		}
		defer st.Close()
		n, err := st.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %d cached source(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheBuildCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheBuildCmd.Flags().StringVar(&cacheSheetName, "sheet-name", "", "XLSX: sheet name to read")
	cacheBuildCmd.Flags().IntVar(&cacheSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used when --sheet-name is empty)")
}
