// Package publisher sends one photo batch as a grouped post and records the
// outcome in the ledger.
package publisher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nvoropaev/tgrepost/internal/archive"
	"github.com/nvoropaev/tgrepost/internal/ledger"
)

// MaxGroupSize is the messaging platform's ceiling for one media group.
const MaxGroupSize = 10

// MediaItem is one entry of a grouped publish request.
type MediaItem struct {
	Path      string
	Caption   string
	ParseMode string
}

// ChannelPublisher posts a set of media items as one atomic group.
type ChannelPublisher interface {
	SendMediaGroup(ctx context.Context, items []MediaItem) error
}

// Status classifies the outcome of a publish attempt.
type Status string

const (
	StatusSent    Status = "sent"    // group delivered, ids committed
	StatusSkipped Status = "skipped" // nothing valid to send, no call made
	StatusFailed  Status = "failed"  // capability call failed, nothing committed
)

// Result reports what a publish attempt did.
type Result struct {
	Status  Status
	SentIDs []string
	// Err holds the capability error for StatusFailed.
	Err error
}

// Publisher validates batches and drives the channel-publisher capability.
type Publisher struct {
	channel   ChannelPublisher
	ledger    *ledger.Ledger
	caption   string
	parseMode string
	exts      map[string]struct{}
	log       zerolog.Logger
}

// New constructs a Publisher. extensions lists accepted photo file suffixes
// such as ".jpg"; matching is case-insensitive.
func New(channel ChannelPublisher, led *ledger.Ledger, caption, parseMode string, extensions []string, log zerolog.Logger) *Publisher {
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	return &Publisher{
		channel:   channel,
		ledger:    led,
		caption:   caption,
		parseMode: parseMode,
		exts:      exts,
		log:       log,
	}
}

// Publish filters batch down to readable photos, caps it at MaxGroupSize and
// sends it as one group with the caption on the first item. Ids reach the
// ledger only after the send succeeded; records cut by the cap stay unsent
// and eligible for later cycles.
func (p *Publisher) Publish(ctx context.Context, docName string, batch archive.Batch) Result {
	valid := p.validRecords(batch.Records)
	if len(valid) == 0 {
		p.log.Info().Str("document", docName).Str("time_key", batch.TimeKey).Msg("no valid photos in batch, skipping")
		return Result{Status: StatusSkipped}
	}
	if len(valid) > MaxGroupSize {
		valid = valid[:MaxGroupSize]
	}
	items := make([]MediaItem, 0, len(valid))
	ids := make([]string, 0, len(valid))
	for i, rec := range valid {
		item := MediaItem{Path: rec.PhotoPath}
		if i == 0 {
			item.Caption = p.caption
			item.ParseMode = p.parseMode
		}
		items = append(items, item)
		ids = append(ids, rec.MessageID)
	}
	if err := p.channel.SendMediaGroup(ctx, items); err != nil {
		p.log.Error().Err(err).Str("document", docName).Str("time_key", batch.TimeKey).Int("photos", len(items)).Msg("media group send failed")
		return Result{Status: StatusFailed, Err: err}
	}
	if err := p.ledger.Commit(ids); err != nil {
		// The group went out; losing the ledger write only risks a duplicate
		// repost after a restart.
		p.log.Warn().Err(err).Str("document", docName).Msg("ledger persist failed, sent ids held in memory only")
	}
	p.log.Info().Str("document", docName).Str("time_key", batch.TimeKey).Int("photos", len(items)).Msg("media group sent")
	return Result{Status: StatusSent, SentIDs: ids}
}

// validRecords keeps records whose photo exists locally as a regular file
// with an accepted extension.
func (p *Publisher) validRecords(records []archive.Record) []archive.Record {
	var out []archive.Record
	for _, rec := range records {
		if _, ok := p.exts[strings.ToLower(filepath.Ext(rec.PhotoPath))]; !ok {
			continue
		}
		info, err := os.Stat(rec.PhotoPath)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, rec)
	}
	return out
}
