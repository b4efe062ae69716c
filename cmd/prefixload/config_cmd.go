package main

import (
	"fmt"

	"github.com/b4rgut/prefixload/internal/config"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and modify the prefixload configuration",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigEditCmd(),
		newConfigSetCmd(),
		newConfigDirAddCmd(),
		newConfigDirRmCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(cmd)
			if err != nil {
				return err
			}
			raw, err := config.ReadRaw(path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), gray.Render("# "+path))
			fmt.Fprint(cmd.OutOrStdout(), raw)
			return nil
		},
	}
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the configuration in $EDITOR",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(cmd)
			if err != nil {
				return err
			}
			return config.Edit(path)
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var (
		endpoint  string
		bucket    string
		region    string
		partSize  string
		localDir  string
		pathStyle bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update configuration values",
		Example: `  prefixload config set --bucket my-backups --region eu-west-1
  prefixload config set --part-size 16MiB`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("endpoint") {
				cfg.Endpoint = endpoint
			}
			if cmd.Flags().Changed("bucket") {
				cfg.Bucket = bucket
			}
			if cmd.Flags().Changed("region") {
				cfg.Region = region
			}
			if cmd.Flags().Changed("part-size") {
				size, err := humanize.ParseBytes(partSize)
				if err != nil {
					return fmt.Errorf("parse part-size %q: %w", partSize, err)
				}
				cfg.PartSize = int64(size)
			}
			if cmd.Flags().Changed("local-dir") {
				cfg.LocalDirectoryPath = localDir
			}
			if cmd.Flags().Changed("path-style") {
				cfg.ForcePathStyle = pathStyle
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.SaveTo(path); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), green.Render("Configuration updated"))
			return nil
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "S3 endpoint host")
	cmd.Flags().StringVar(&bucket, "bucket", "", "bucket name")
	cmd.Flags().StringVar(&region, "region", "", "bucket region")
	cmd.Flags().StringVar(&partSize, "part-size", "", "multipart part size, e.g. 8MiB")
	cmd.Flags().StringVar(&localDir, "local-dir", "", "local directory to back up")
	cmd.Flags().BoolVar(&pathStyle, "path-style", false, "use path-style bucket addressing")

	return cmd
}

func newConfigDirAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir-add PREFIX REMOTE_DIR",
		Short: "Map a filename prefix to a remote directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.AddRule(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", green.Render("Added"), args[0], args[1])
			return nil
		},
	}
}

func newConfigDirRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir-rm PREFIX",
		Short: "Remove a prefix mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RemoveRule(args[0]); err != nil {
				return err
			}
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green.Render("Removed"), args[0])
			return nil
		},
	}
}
