package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"pensario-server/internal/metrics"
	"pensario-server/internal/repository"
	"pensario-server/internal/storage"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// orphanGracePeriod skips files young enough to still be between store and record.
const orphanGracePeriod = time.Minute

// OrphanScanner reports files in the blob store that no attachment record points
// at. It never deletes anything.
type OrphanScanner struct {
	blobs       storage.BlobStore
	attachments repository.AttachmentRepository
	timeout     time.Duration
	log         logrus.FieldLogger
	cron        *cron.Cron
	now         func() time.Time
}

func NewOrphanScanner(blobs storage.BlobStore, attachments repository.AttachmentRepository, timeout time.Duration, log logrus.FieldLogger) *OrphanScanner {
	return &OrphanScanner{
		blobs:       blobs,
		attachments: attachments,
		timeout:     timeout,
		log:         log,
		cron:        cron.New(),
		now:         time.Now,
	}
}

// Scan lists orphaned file names, sorted, and publishes their count.
func (s *OrphanScanner) Scan(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	names, err := s.blobs.List(ctx)
	if err != nil {
		return nil, classify(err, "list upload dir")
	}

	cutoff := s.now().Add(-orphanGracePeriod)
	candidates := make([]string, 0, len(names))
	for _, name := range names {
		if created, ok := blobCreatedAt(name); ok && created.After(cutoff) {
			continue
		}
		candidates = append(candidates, name)
	}

	known, err := s.attachments.KnownPaths(ctx, candidates)
	if err != nil {
		return nil, classify(err, "look up attachment paths")
	}

	var orphans []string
	for _, name := range candidates {
		if !known[name] {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)

	metrics.OrphanedFiles.Set(float64(len(orphans)))
	for _, name := range orphans {
		s.log.WithField("path", name).Warn("orphaned file: no attachment record")
	}
	return orphans, nil
}

// Start runs Scan on schedule, a cron expression such as "@every 1h".
func (s *OrphanScanner) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		orphans, err := s.Scan(context.Background())
		if err != nil {
			s.log.WithError(err).Error("orphan scan failed")
			return
		}
		s.log.WithField("orphans", len(orphans)).Info("orphan scan finished")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running scan to finish.
func (s *OrphanScanner) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// blobCreatedAt reads the timestamp embedded by storage.NewName.
func blobCreatedAt(name string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(name, "file-")
	if !ok {
		return time.Time{}, false
	}
	nanos, _, ok := strings.Cut(rest, "-")
	if !ok {
		return time.Time{}, false
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, n), true
}
