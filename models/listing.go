package models

// NotAvailable is written in place of any field whose marker is absent
// from a listing block.
const NotAvailable = "N/A"

// Header is the fixed column order of the tabular output. Consumers may
// depend on column position.
var Header = []string{
	"FechaDescarga", "Barrio", "Valor", "NumHabitaciones", "NumBanos", "mts2",
}

// Record is one extracted listing. Every field is always set, falling
// back to NotAvailable.
type Record struct {
	DownloadDate string
	Neighborhood string
	Price        string
	Bedrooms     string
	Bathrooms    string
	Area         string
}

// Row renders the record in Header order.
func (r Record) Row() []string {
	return []string{
		r.DownloadDate,
		r.Neighborhood,
		r.Price,
		r.Bedrooms,
		r.Bathrooms,
		r.Area,
	}
}

// RunSummary holds counts computed over one extraction run.
type RunSummary struct {
	TotalRecords          int
	RecordsByNeighborhood map[string]int
	MissingByColumn       map[string]int
	CompleteRecords       int
}
