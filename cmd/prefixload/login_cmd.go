package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/b4rgut/prefixload/internal/blob"
	"github.com/spf13/cobra"
	"gopkg.in/ini.v1"
)

func init() {
	rootCmd.AddCommand(newLoginCmd())
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store S3 credentials after verifying bucket access",
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet, _ := cmd.Flags().GetBool("quiet")

			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			overlayEnv(cfg)

			var accessKey, secretKey string

			onSubmit := func(keyInput, secretInput string) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()

				client, err := blob.NewS3Client(ctx, &blob.S3Config{
					Bucket:         cfg.Bucket,
					Region:         cfg.Region,
					Endpoint:       cfg.Endpoint,
					ForcePathStyle: cfg.ForcePathStyle,
					AccessKey:      keyInput,
					SecretKey:      secretInput,
				})
				if err != nil {
					return err
				}

				// A Forbidden answer still proves the endpoint resolved the
				// request; the run command reports the denial separately.
				if _, err := client.HeadBucket(ctx); err != nil {
					return err
				}

				accessKey = keyInput
				secretKey = secretInput
				time.Sleep(500 * time.Millisecond)
				return nil
			}

			if err := RunLoginTUI(LoginTUIOpts{
				Endpoint:      cfg.Endpoint,
				Bucket:        cfg.Bucket,
				KeyValidator:  isValidKeyInput,
				SubmitHandler: onSubmit,
			}); err != nil {
				return err
			}

			if accessKey == "" || secretKey == "" {
				return fmt.Errorf("no credentials captured")
			}

			credsPath, err := writeAWSCredentials(accessKey, secretKey)
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Println(green.Render("Credentials verified and saved"))
				fmt.Printf("%s%s\n", gray.Render("File    "), credsPath)
				fmt.Printf("%s%s\n", gray.Render("Bucket  "), cfg.Bucket)
			}
			return nil
		},
	}
	return cmd
}

// isValidKeyInput rejects obviously malformed key material without trying to
// enforce any provider-specific format.
func isValidKeyInput(s string) bool {
	if len(s) < 3 {
		return false
	}
	for _, r := range s {
		if r == ' ' || r == '\t' {
			return false
		}
	}
	return true
}

// writeAWSCredentials updates the [default] profile in ~/.aws/credentials,
// preserving any other profiles already present.
func writeAWSCredentials(accessKey, secretKey string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, ".aws")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	path := filepath.Join(dir, "credentials")
	file := ini.Empty()
	if _, err := os.Stat(path); err == nil {
		file, err = ini.Load(path)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", path, err)
		}
	}

	section := file.Section("default")
	section.Key("aws_access_key_id").SetValue(accessKey)
	section.Key("aws_secret_access_key").SetValue(secretKey)

	if err := file.SaveTo(path); err != nil {
		return "", err
	}
	return path, os.Chmod(path, 0o600)
}
