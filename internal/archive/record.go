// Package archive turns an exported Telegram chat-history document into
// ordered, deduplicated photo batches.
package archive

// Record is one photo entry extracted from an export document.
type Record struct {
	// MessageID is derived from the document name and photo name. The same
	// unmodified document always yields the same ids.
	MessageID string
	// TimeKey is the message timestamp in fixed 20060102150405 form, so
	// string equality means same instant and string order is chronological.
	TimeKey string
	// PhotoPath is the photo location under the configured photos directory.
	PhotoPath string
}

// Batch is an ordered run of records sharing one TimeKey, posted together as
// one media group.
type Batch struct {
	TimeKey string
	Records []Record
}
