package services

import (
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"

	"listings-pipeline/models"
	"listings-pipeline/storage"
	"listings-pipeline/utils"
)

// Listing card markers.
const (
	ListingSelector   = "div.listing-card__content"
	PriceSelector     = "span.price__actual"
	LocationSelector  = "div.listing-card__location__geo"
	BedroomsSelector  = `p[data-test="bedrooms"]`
	BathroomsSelector = `p[data-test="bathrooms"]`
	AreaSelector      = `p[data-test="floor-area"]`

	// numeric facts are carried in this attribute, not in the text
	valueAttr = "content"
)

// ErrNoListings is returned when an artifact contains no listing cards.
var ErrNoListings = errors.New("no listings found")

// Extractor turns an archived result page artifact into records.
type Extractor struct {
	logger *utils.Logger
}

func NewExtractor(logger *utils.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns one record per listing card in document order. Missing
// fields become models.NotAvailable; a card is never dropped.
func (e *Extractor) Extract(markup io.Reader, archiveKey string) ([]models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(markup)
	if err != nil {
		return nil, fmt.Errorf("extractor: parse %s: %w", archiveKey, err)
	}

	blocks := doc.Find(ListingSelector)
	if blocks.Length() == 0 {
		return nil, ErrNoListings
	}

	downloadDate := storage.DownloadDate(archiveKey)
	records := make([]models.Record, 0, blocks.Length())

	blocks.Each(func(i int, block *goquery.Selection) {
		r := models.Record{
			DownloadDate: downloadDate,
			Neighborhood: orNotAvailable(lookupText(block, LocationSelector)),
			Price:        orNotAvailable(lookupText(block, PriceSelector)),
			Bedrooms:     orNotAvailable(lookupAttr(block, BedroomsSelector, valueAttr)),
			Bathrooms:    orNotAvailable(lookupAttr(block, BathroomsSelector, valueAttr)),
			Area:         orNotAvailable(lookupAttr(block, AreaSelector, valueAttr)),
		}
		e.logger.Debug("[extractor] Card %d: %s | %s", i, r.Neighborhood, r.Price)
		records = append(records, r)
	})

	e.logger.Info("[extractor] Extracted %d listings from %s", len(records), archiveKey)
	return records, nil
}

// lookupText finds the first element matching sel inside block.
func lookupText(block *goquery.Selection, sel string) (string, bool) {
	found := block.Find(sel).First()
	if found.Length() == 0 {
		return "", false
	}
	return strippedText(found), true
}

// lookupAttr finds the first element matching sel inside block and reads attr.
// An element without the attribute counts as missing.
func lookupAttr(block *goquery.Selection, sel, attr string) (string, bool) {
	found := block.Find(sel).First()
	if found.Length() == 0 {
		return "", false
	}
	return found.Attr(attr)
}

func orNotAvailable(val string, ok bool) string {
	if !ok {
		return models.NotAvailable
	}
	return val
}
