package logging

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	archivePrefix = "signalgen-"
	archiveLayout = "20060102-150405"
)

// archiveStaleLog moves the active log file aside when it was last written on
// an earlier day than now, so every day starts with a fresh signalgen.log and
// CleanupOldLogs has whole days to prune.
func archiveStaleLog(dir string, now time.Time) error {
	active := filepath.Join(dir, LogFileName)
	info, err := os.Stat(active)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	modified := info.ModTime()
	if sameDay(modified, now) {
		return nil
	}
	archived := filepath.Join(dir, archivePrefix+modified.Format(archiveLayout)+".log")
	return os.Rename(active, archived)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CleanupOldLogs deletes archived logs in dir older than retentionDays and
// returns how many were removed. The active signalgen.log is never touched.
// A retentionDays value of 0 disables pruning.
func CleanupOldLogs(logger *slog.Logger, dir string, retentionDays int) int {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	archives, err := filepath.Glob(filepath.Join(dir, archivePrefix+"*.log"))
	if err != nil {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	removed := 0
	for _, path := range archives {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "archived log not removed", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on paths.log_dir"),
				String(FieldImpact, "the archived log stays on disk"),
			)
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Info("archived logs pruned",
			String("log_dir", dir),
			Int("removed", removed),
			String(FieldEventType, "log_pruned"),
		)
	}
	return removed
}
