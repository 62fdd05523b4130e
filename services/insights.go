package services

import (
	"sort"
	"strings"

	"listings-pipeline/models"
	"listings-pipeline/utils"
)

type SummaryService struct {
	logger *utils.Logger
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate counts records per neighborhood and sentinel values per column.
func (s *SummaryService) Generate(records []models.Record) *models.RunSummary {
	report := &models.RunSummary{
		RecordsByNeighborhood: make(map[string]int),
		MissingByColumn:       make(map[string]int),
	}

	report.TotalRecords = len(records)

	for _, r := range records {
		complete := true
		for i, field := range r.Row() {
			if field == models.NotAvailable {
				report.MissingByColumn[models.Header[i]]++
				complete = false
			}
		}
		if complete {
			report.CompleteRecords++
		}
		if r.Neighborhood != models.NotAvailable {
			report.RecordsByNeighborhood[r.Neighborhood]++
		}
	}

	return report
}

// Log writes the summary through the logger, neighborhoods by count descending.
func (s *SummaryService) Log(r *models.RunSummary) {
	s.logger.Info("[summary] %d rows, %d complete", r.TotalRecords, r.CompleteRecords)

	for _, col := range models.Header {
		if n := r.MissingByColumn[col]; n > 0 {
			s.logger.Info("[summary] %-16s missing in %d rows", col, n)
		}
	}

	type locCount struct {
		loc   string
		count int
	}
	var locs []locCount
	for loc, cnt := range r.RecordsByNeighborhood {
		locs = append(locs, locCount{loc, cnt})
	}
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].count != locs[j].count {
			return locs[i].count > locs[j].count
		}
		return locs[i].loc < locs[j].loc
	})
	if len(locs) > 5 {
		locs = locs[:5]
	}
	for _, lc := range locs {
		bar := strings.Repeat("█", lc.count)
		s.logger.Info("[summary] %-30s %s (%d)", truncate(lc.loc, 28), bar, lc.count)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
