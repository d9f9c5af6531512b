// Package cycle drives select-source, extract, group, choose and publish
// rounds, either once or in a loop with idle and backoff delays.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nvoropaev/tgrepost/internal/archive"
	"github.com/nvoropaev/tgrepost/internal/ledger"
	"github.com/nvoropaev/tgrepost/internal/publisher"
)

// ErrNoArchives is returned when the controller has no documents to draw from.
var ErrNoArchives = errors.New("no archive documents configured")

// Options wires a Controller together.
type Options struct {
	Archives     []string
	PhotosDir    string
	Ledger       *ledger.Ledger
	Publisher    *publisher.Publisher
	Rand         *rand.Rand
	IdleDelay    time.Duration
	BackoffDelay time.Duration
	Logger       zerolog.Logger
}

// Controller owns the publishing loop: the ledger, the publisher and the
// randomness used to pick a source document and a batch.
type Controller struct {
	archives  []string
	photosDir string
	ledger    *ledger.Ledger
	pub       *publisher.Publisher
	rng       *rand.Rand
	idle      time.Duration
	backoff   time.Duration
	log       zerolog.Logger
}

// New constructs a Controller. Rand is injectable so tests can seed it; when
// nil a time-seeded source is used.
func New(opts Options) *Controller {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Controller{
		archives:  opts.Archives,
		photosDir: opts.PhotosDir,
		ledger:    opts.Ledger,
		pub:       opts.Publisher,
		rng:       rng,
		idle:      opts.IdleDelay,
		backoff:   opts.BackoffDelay,
		log:       opts.Logger,
	}
}

// RunOnce performs a single cycle: pick a random document, extract, group,
// pick a random batch, publish. A hard extraction failure is returned;
// publish failures are logged and absorbed so only the ledger decides what
// is retried later. An empty batch map is a normal idle outcome.
func (c *Controller) RunOnce(ctx context.Context) error {
	if len(c.archives) == 0 {
		return ErrNoArchives
	}
	docPath := c.archives[c.rng.Intn(len(c.archives))]
	docName := filepath.Base(docPath)
	log := c.log.With().Str("cycle_id", uuid.NewString()).Str("document", docName).Logger()
	log.Debug().Msg("cycle started")

	records, err := archive.Extract(docPath, c.photosDir, c.ledger)
	if err != nil {
		log.Error().Err(err).Msg("extraction failed")
		return fmt.Errorf("extract %s: %w", docName, err)
	}
	batch, ok := archive.Group(records).Pick(c.rng)
	if !ok {
		log.Info().Msg("no unsent batches")
		return nil
	}
	res := c.pub.Publish(ctx, docName, batch)
	log.Debug().Str("status", string(res.Status)).Int("sent", len(res.SentIDs)).Str("time_key", batch.TimeKey).Msg("cycle finished")
	return nil
}

// Run cycles until ctx is cancelled. Failed cycles back off longer than the
// regular idle delay.
func (c *Controller) Run(ctx context.Context) error {
	for {
		delay := c.idle
		if err := c.RunOnce(ctx); err != nil {
			c.log.Error().Err(err).Msg("cycle failed, backing off")
			delay = c.backoff
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// Scan parses every configured archive and logs how many unsent photos and
// batches each one still holds, without sending anything.
func (c *Controller) Scan() error {
	if len(c.archives) == 0 {
		return ErrNoArchives
	}
	for _, docPath := range c.archives {
		docName := filepath.Base(docPath)
		records, err := archive.Extract(docPath, c.photosDir, c.ledger)
		if err != nil {
			c.log.Error().Err(err).Str("document", docName).Msg("extraction failed")
			continue
		}
		grouped := archive.Group(records)
		c.log.Info().Str("document", docName).Int("batches", grouped.Len()).Int("photos", len(records)).Msg("unsent content")
	}
	c.log.Info().Int("ledger_ids", c.ledger.Len()).Msg("scan complete")
	return nil
}
