// Package export writes leads to XLSX and CSV files.
package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/homefront-labs/leadscout/internal/model"
	"github.com/homefront-labs/leadscout/internal/score"
)

const sheetName = "Contacts"

// columns is the fixed export column order. Downstream spreadsheets
// depend on it.
var columns = []string{
	"first_name", "last_name", "company_name",
	"website_url", "email", "phone",
	"lead_score", "contact_score", "good_lead",
}

// Exporter writes lead exports into a directory.
type Exporter struct {
	dir string
	now func() time.Time
}

// Option configures the exporter.
type Option func(*Exporter)

// WithClock overrides the timestamp source for generated filenames.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// New creates an Exporter targeting dir.
func New(dir string, opts ...Option) *Exporter {
	e := &Exporter{dir: dir, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// XLSX writes the leads to an Excel file and returns its path. An empty
// filename generates a timestamped one.
func (e *Exporter) XLSX(leads []model.Lead, filename string) (string, error) {
	path, err := e.preparePath(filename, ".xlsx")
	if err != nil {
		return "", err
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return "", eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().SetString(col)
	}

	scoredAt := e.now()
	for _, lead := range leads {
		row := sheet.AddRow()
		for _, v := range leadRecord(lead, scoredAt) {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Save(path); err != nil {
		return "", eris.Wrapf(err, "export: save %s", path)
	}
	return path, nil
}

// CSV writes the leads to a CSV file and returns its path. An empty
// filename generates a timestamped one.
func (e *Exporter) CSV(leads []model.Lead, filename string) (string, error) {
	path, err := e.preparePath(filename, ".csv")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return "", eris.Wrap(err, "export: write header")
	}

	scoredAt := e.now()
	for _, lead := range leads {
		if err := w.Write(leadRecord(lead, scoredAt)); err != nil {
			return "", eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", eris.Wrap(err, "export: flush")
	}
	return path, nil
}

func (e *Exporter) preparePath(filename, ext string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "export: create dir %s", e.dir)
	}
	if filename == "" {
		filename = "leads_" + e.now().Format("20060102_150405") + ext
	}
	if filepath.Ext(filename) != ext {
		filename += ext
	}
	return filepath.Join(e.dir, filename), nil
}

func leadRecord(lead model.Lead, scoredAt time.Time) []string {
	s := score.Score(score.FromLead(lead), scoredAt)
	return []string{
		lead.FirstName,
		lead.LastName,
		lead.CompanyName,
		lead.WebsiteURL,
		lead.Email,
		lead.Phone,
		strconv.Itoa(s.Score),
		strconv.Itoa(s.ContactScore),
		strconv.FormatBool(s.GoodLead),
	}
}
