package daemon

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/retry"
)

// maintenanceTimeout bounds one maintenance pass, including prewarm
// retries with backoff.
const maintenanceTimeout = 2 * time.Minute

// scheduleMaintenance registers the periodic cache jobs. Without a cache
// there is nothing to sweep or warm, so the scheduler stays empty.
func (d *Daemon) scheduleMaintenance() error {
	if d.cache == nil {
		return nil
	}

	if _, err := d.scheduler.ScheduleEvery("cache-sweep", d.config.Cache.SweepDuration(), d.runSweep); err != nil {
		return err
	}

	if interval := d.config.Cache.PrewarmDuration(); interval > 0 {
		if _, err := d.scheduler.ScheduleEvery("toc-prewarm", interval, d.runPrewarm); err != nil {
			return err
		}
	}

	return nil
}

// runSweep evicts expired cache rows.
func (d *Daemon) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
	defer cancel()

	evicted, err := d.cache.Sweep(ctx)
	if err != nil {
		slog.Warn("Cache sweep failed", logfields.Error(err))
		return
	}
	if evicted > 0 {
		slog.Info("Cache sweep evicted expired entries", slog.Int64("evicted", evicted))
	}
}

// runPrewarm fetches and parses each version's table of contents so the
// first reader request after a TTL lapse does not pay for the origin
// round trip. It reads the manifest snapshot fresh on every pass, so a
// hot-reloaded version list is warmed on the next tick. Transient origin
// failures retry with the configured backoff; a version without a ToC
// fails fast and is skipped.
func (d *Daemon) runPrewarm() {
	pol := retry.FromConfig(d.GetConfig().Cache.PrewarmRetry)

	for _, name := range d.manifests.Current().Names() {
		ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
		err := retry.Do(ctx, pol, "prewarm "+name, func(ctx context.Context) error {
			_, err := d.pages.PageList(ctx, name)
			return err
		})
		cancel()

		if err != nil {
			slog.Warn("ToC prewarm failed", logfields.Version(name), logfields.Error(err))
			continue
		}
		slog.Debug("ToC prewarmed", logfields.Version(name))
	}
}
