package storage

import (
	"strings"
	"time"
)

const (
	archiveExt = ".html"
	tableExt   = ".csv"
)

// ArchiveKey names the markup artifact for the given instant's UTC date.
func ArchiveKey(now time.Time) string {
	return now.UTC().Format("2006-01-02") + archiveExt
}

// TableKey derives the table key from an archive key by replacing the
// trailing ".html" with ".csv". Keys without the suffix get ".csv" appended.
func TableKey(archiveKey string) string {
	return DownloadDate(archiveKey) + tableExt
}

// DownloadDate is the archive key without its trailing ".html". The date
// format is not validated.
func DownloadDate(archiveKey string) string {
	return strings.TrimSuffix(archiveKey, archiveExt)
}
