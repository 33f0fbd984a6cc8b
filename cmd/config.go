package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/basketloom-cli/internal/config"
	"github.com/KaramelBytes/basketloom-cli/internal/dataset"
	"github.com/KaramelBytes/basketloom-cli/internal/logging"
	"github.com/KaramelBytes/basketloom-cli/internal/report"
	"github.com/KaramelBytes/basketloom-cli/internal/rules"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set basketloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		for _, k := range cfgpkg.Keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k, configValue(cfg, k))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. Keys: " + strings.Join(cfgpkg.Keys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := setConfigValue(c, args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func configValue(c *cfgpkg.Global, key string) string {
	switch key {
	case "min_support":
		return strconv.FormatFloat(c.MinSupport, 'g', -1, 64)
	case "metric":
		return c.Metric
	case "min_threshold":
		return strconv.FormatFloat(c.MinThreshold, 'g', -1, 64)
	case "max_len":
		return strconv.Itoa(c.MaxLen)
	case "workers":
		return strconv.Itoa(c.Workers)
	case "country":
		if c.Country == "" {
			return "(all)"
		}
		return c.Country
	case "item_column":
		return c.ItemColumn
	case "positive_only":
		return strconv.FormatBool(c.PositiveOnly)
	case "drop_cancellations":
		return strconv.FormatBool(c.DropCancellations)
	case "require_customer":
		return strconv.FormatBool(c.RequireCustomer)
	case "format":
		return c.Format
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "cache_path":
		return c.CachePath
	}
	return ""
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "min_support":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || !(f > 0 && f <= 1) {
			return fmt.Errorf("invalid min_support: %s (must be in (0, 1])", val)
		}
		c.MinSupport = f
	case "metric":
		m, err := rules.ParseMetric(val)
		if err != nil {
			return err
		}
		c.Metric = string(m)
	case "min_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for min_threshold: %w", err)
		}
		c.MinThreshold = f
	case "max_len", "workers":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		if key == "max_len" {
			c.MaxLen = i
		} else {
			c.Workers = i
		}
	case "country":
		c.Country = strings.TrimSpace(val)
	case "item_column":
		ic, err := dataset.ParseItemColumn(val)
		if err != nil {
			return err
		}
		c.ItemColumn = string(ic)
	case "positive_only", "drop_cancellations", "require_customer":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		switch key {
		case "positive_only":
			c.PositiveOnly = b
		case "drop_cancellations":
			c.DropCancellations = b
		default:
			c.RequireCustomer = b
		}
	case "format":
		f, err := report.ParseFormat(val)
		if err != nil {
			return err
		}
		c.Format = string(f)
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "warning", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	case "log_format":
		if err := logging.ValidateFormat(val); err != nil {
			return err
		}
		c.LogFormat = strings.ToLower(val)
	case "cache_path":
		c.CachePath = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
