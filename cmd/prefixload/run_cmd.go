package main

import (
	"fmt"

	"github.com/b4rgut/prefixload/internal/blob"
	"github.com/b4rgut/prefixload/internal/config"
	"github.com/b4rgut/prefixload/internal/syncer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scan the backup directory and upload files that changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			quiet, _ := cmd.Flags().GetBool("quiet")

			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			overlayEnv(cfg)

			client, err := blob.NewS3Client(ctx, &blob.S3Config{
				Bucket:         cfg.Bucket,
				Region:         cfg.Region,
				Endpoint:       cfg.Endpoint,
				ForcePathStyle: cfg.ForcePathStyle,
			})
			if err != nil {
				return err
			}

			access, err := client.HeadBucket(ctx)
			if err != nil {
				return err
			}
			if access == blob.BucketForbidden {
				return fmt.Errorf("access to bucket %q denied, check credentials or run 'prefixload login'", cfg.Bucket)
			}

			s, err := syncer.New(cfg, client)
			if err != nil {
				return err
			}

			summary, err := s.Run(ctx)
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Println(green.Render(summary.String()))
			}
			return nil
		},
	}
}

// overlayEnv lets PREFIXLOAD_* variables override the config file, which is
// handy for cron jobs and containers.
func overlayEnv(cfg *config.Config) {
	v := viper.New()
	v.SetEnvPrefix("PREFIXLOAD")
	v.AutomaticEnv()

	if s := v.GetString("endpoint"); s != "" {
		cfg.Endpoint = s
	}
	if s := v.GetString("bucket"); s != "" {
		cfg.Bucket = s
	}
	if s := v.GetString("region"); s != "" {
		cfg.Region = s
	}
	if s := v.GetString("local_directory_path"); s != "" {
		cfg.LocalDirectoryPath = s
	}
}
