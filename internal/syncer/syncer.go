// Package syncer drives one backup pass: scan the local directory, match
// files against prefix rules, fingerprint, probe remote state and upload
// what differs.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/b4rgut/prefixload/internal/blob"
	"github.com/b4rgut/prefixload/internal/config"
	"github.com/b4rgut/prefixload/internal/etag"
	"github.com/dustin/go-humanize"
)

// Summary holds the counters of a completed run. It is only produced when
// the whole pass succeeds; an aborted run surfaces its error instead.
type Summary struct {
	Matched  int
	Uploaded int
	Skipped  int
	Duration time.Duration
}

func (s *Summary) String() string {
	return fmt.Sprintf("Run finished in %.2fs. Matched: %d, Uploaded: %d, Skipped: %d.",
		s.Duration.Seconds(), s.Matched, s.Uploaded, s.Skipped)
}

type Syncer struct {
	cfg    *config.Config
	client blob.Client
}

// New validates the configuration before any I/O happens. An invalid part
// size must fail here, not somewhere in the middle of a run.
func New(cfg *config.Config, client blob.Client) (*Syncer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Syncer{cfg: cfg, client: client}, nil
}

// Run performs a single sequential pass over the configured directory.
// Files are processed one at a time; the first fingerprint, probe or upload
// failure aborts the run and later files stay unprocessed.
func (s *Syncer) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	dir := s.cfg.LocalDirectoryPath
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	slog.Info("scanning local directory", "dir", dir, "entries", len(entries))

	summary := &Summary{}
	processed := 0

	fatal := func(err error) (*Summary, error) {
		return nil, fmt.Errorf("sync aborted after %d file(s): %w", processed, err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		name := entry.Name()
		if !utf8.ValidString(name) {
			slog.Warn("skipping file with undecodable name", "dir", dir)
			continue
		}

		rule, ok := matchRule(s.cfg.Rules, name)
		if !ok {
			// Not matched by any rule: no fingerprint, no network calls.
			continue
		}
		summary.Matched++

		localPath := filepath.Join(dir, name)
		slog.Info("processing matched file", "path", localPath, "prefix", rule.Prefix)

		tag, err := etag.Compute(ctx, localPath, s.cfg.PartSize)
		if err != nil {
			return fatal(err)
		}

		key := path.Join(rule.RemoteDir, name)

		synced, err := blob.IsObjectSynced(ctx, s.client, tag, key)
		if err != nil {
			return fatal(err)
		}

		if synced {
			slog.Info("sync", "op", "SKIP", "key", key, "etag", tag)
			summary.Skipped++
		} else {
			res, err := s.client.Upload(ctx, key, localPath)
			if err != nil {
				return fatal(err)
			}
			slog.Info("sync", "op", "UPLOAD", "key", key, "size", humanize.Bytes(uint64(res.Size)))
			summary.Uploaded++
		}

		processed++
	}

	summary.Duration = time.Since(start)
	// Goes through slog so the summary lands in the run log even when the
	// console output is suppressed.
	slog.Info(summary.String())
	return summary, nil
}

// matchRule returns the first rule whose prefix literally prefixes name.
// Rule order comes from the config file and is significant.
func matchRule(rules []config.Rule, name string) (config.Rule, bool) {
	for _, r := range rules {
		if strings.HasPrefix(name, r.Prefix) {
			return r, true
		}
	}
	return config.Rule{}, false
}
