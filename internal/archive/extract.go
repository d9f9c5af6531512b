package archive

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// SentIndex answers whether a message id was already published.
type SentIndex interface {
	Contains(id string) bool
}

const (
	// exportTimeLayout matches the human-readable timestamp the export
	// writer puts in the title attribute, minus the trailing zone marker.
	exportTimeLayout = "02.01.2006 15:04:05"
	timeKeyLayout    = "20060102150405"
)

// Extract opens the export document at docPath and returns its photo records
// in document order. Photo paths are resolved against photosDir. Malformed
// entries and entries already recorded in sent are skipped; only an
// unreadable document is an error.
func Extract(docPath, photosDir string, sent SentIndex) ([]Record, error) {
	f, err := os.Open(docPath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()
	return ExtractFromReader(f, filepath.Base(docPath), photosDir, sent)
}

// ExtractFromReader is Extract for an already opened document. docName
// seeds the message ids and must be stable for the document across runs.
func ExtractFromReader(r io.Reader, docName, photosDir string, sent SentIndex) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}
	var records []Record
	doc.Find("div.message").Each(func(_ int, msg *goquery.Selection) {
		timeKey, ok := entryTimeKey(msg)
		if !ok {
			return
		}
		href, ok := msg.Find("a.photo_wrap").Attr("href")
		if !ok || href == "" {
			return
		}
		photoName := path.Base(href)
		id := docName + "_" + photoName
		if sent != nil && sent.Contains(id) {
			return
		}
		records = append(records, Record{
			MessageID: id,
			TimeKey:   timeKey,
			PhotoPath: filepath.Join(photosDir, photoName),
		})
	})
	return records, nil
}

// entryTimeKey reads the timestamp of one message entry. Export titles look
// like "01.01.2024 10:00:00 UTC+03:00"; entries without a parsable
// timestamp are expected noise and reported as not-ok.
func entryTimeKey(msg *goquery.Selection) (string, bool) {
	title, ok := msg.Find("div.pull_right.date.details").Attr("title")
	if !ok {
		return "", false
	}
	raw, _, _ := strings.Cut(title, " UTC")
	ts, err := time.Parse(exportTimeLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return ts.Format(timeKeyLayout), true
}
