package scheduler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chatscope-app/chatscope/internal/config"
	"github.com/chatscope-app/chatscope/internal/database"
)

const taskTimeout = 5 * time.Minute

// RegisterMaintenanceJobs wires the standing maintenance jobs: pruning
// expired uploads and periodic SQLite maintenance.
func RegisterMaintenanceJobs(s *Scheduler, cfg *config.Config, store database.Store, log *slog.Logger) error {
	if err := s.AddIntervalJob("upload_prune", cfg.Scheduler.UploadPruneInterval, func() {
		PruneUploads(cfg, store, log)
	}); err != nil {
		return err
	}

	return s.AddCronJob("sql_maintenance", cfg.Scheduler.SQLMaintenanceCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		if err := store.RunSQLMaintenance(ctx); err != nil {
			log.Error("SQL maintenance failed", "error", err)
		}
	})
}

// PruneUploads deletes transcripts older than the retention window, both the
// database rows and the stored files.
func PruneUploads(cfg *config.Config, store database.Store, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-cfg.Uploads.Retention)

	// Fetch filenames before the rows are gone.
	transcripts, err := store.ListTranscripts(ctx)
	if err != nil {
		log.Error("upload prune: listing transcripts failed", "error", err)
		return
	}
	filenames := make(map[string]string, len(transcripts))
	for _, t := range transcripts {
		filenames[t.ID] = t.Filename
	}

	deleted, err := store.DeleteTranscriptsBefore(ctx, cutoff)
	if err != nil {
		log.Error("upload prune: deleting transcripts failed", "error", err)
		return
	}
	if len(deleted) == 0 {
		return
	}

	for _, id := range deleted {
		name, ok := filenames[id]
		if !ok {
			continue
		}
		path := filepath.Join(cfg.Uploads.Dir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("upload prune: removing file failed", "path", path, "error", err)
		}
	}

	log.Info("upload prune completed", "deleted", len(deleted), "cutoff", cutoff)
}
