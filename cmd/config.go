package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/docuflow-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DocuFlow configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "base_path: %s\n", cfg.BasePath)
		if cfg.ClientName != "" {
			fmt.Fprintf(out, "client_name: %s\n", cfg.ClientName)
		}
		fmt.Fprintf(out, "departments: %s\n", strings.Join(cfg.Departments, ", "))
		fmt.Fprintf(out, "categories: %s\n", strings.Join(cfg.Categories, ", "))
		fmt.Fprintf(out, "retention_policy.archive_after_days: %d\n", cfg.RetentionPolicy.ArchiveAfterDays)
		fmt.Fprintf(out, "retention_policy.delete_after_days: %d\n", cfg.RetentionPolicy.DeleteAfterDays)
		fmt.Fprintf(out, "exclusions.files: %s\n", strings.Join(cfg.Exclusions.Files, ", "))
		fmt.Fprintf(out, "version_control.version_dir: %s\n", cfg.VersionControl.VersionDir)
		fmt.Fprintf(out, "version_control.max_versions: %d\n", cfg.VersionControl.MaxVersions)
		fmt.Fprintf(out, "version_control.track_metadata: %t\n", cfg.VersionControl.TrackMetadata)
		fmt.Fprintf(out, "alerts.alert_days_before_delete: %d\n", cfg.Alerts.AlertDaysBeforeDelete)
		fmt.Fprintf(out, "logs.retention_file: %s\n", cfg.Logs.RetentionFile)
		fmt.Fprintf(out, "logs.organization_file: %s\n", cfg.Logs.OrganizationFile)
		fmt.Fprintf(out, "audit.db_path: %s\n", cfg.Audit.DBPath)
		fmt.Fprintf(out, "maintenance.schedule: %s\n", cfg.Maintenance.Schedule)
		if cfg.Maintenance.MetricsAddr != "" {
			fmt.Fprintf(out, "maintenance.metrics_addr: %s\n", cfg.Maintenance.MetricsAddr)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "⚠ %v\n", err)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "List values (departments, categories, exclusions.files) are comma-separated.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "base_path":
			cfg.BasePath = val
		case "client_name":
			cfg.ClientName = val
		case "departments":
			cfg.Departments = splitList(val)
		case "categories":
			cfg.Categories = splitList(val)
		case "retention_policy.archive_after_days":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.RetentionPolicy.ArchiveAfterDays = i
		case "retention_policy.delete_after_days":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.RetentionPolicy.DeleteAfterDays = i
		case "exclusions.files":
			cfg.Exclusions.Files = splitList(val)
		case "version_control.version_dir":
			cfg.VersionControl.VersionDir = val
		case "version_control.max_versions":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.VersionControl.MaxVersions = i
		case "version_control.track_metadata":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for %s: %v", key, val)
			}
			cfg.VersionControl.TrackMetadata = b
		case "alerts.alert_days_before_delete":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			cfg.Alerts.AlertDaysBeforeDelete = i
		case "logs.retention_file":
			cfg.Logs.RetentionFile = val
		case "logs.organization_file":
			cfg.Logs.OrganizationFile = val
		case "logs.level":
			cfg.Logs.Level = val
		case "audit.db_path":
			cfg.Audit.DBPath = val
		case "maintenance.schedule":
			cfg.Maintenance.Schedule = val
		case "maintenance.metrics_addr":
			cfg.Maintenance.MetricsAddr = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
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

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func positiveInt(key, val string) (int, error) {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
	}
	return i, nil
}
