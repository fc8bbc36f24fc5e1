// Package export writes saved leads to spreadsheet formats.
package export

import (
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospect-cli/internal/model"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Leads"

// row is the exported shape of a lead. Headers are in Portuguese to match
// what users import into their own sheets.
type row struct {
	Name        string `csv:"Nome"`
	Phone       string `csv:"Telefone"`
	Instagram   string `csv:"Instagram"`
	Website     string `csv:"Site"`
	Description string `csv:"Descrição"`
	Status      string `csv:"Status"`
	Score       string `csv:"Score"`
}

func toRow(l model.Lead) row {
	return row{
		Name:        l.Name,
		Phone:       l.Phone,
		Instagram:   l.Instagram,
		Website:     l.Website,
		Description: l.Description,
		Status:      string(l.Status),
		Score:       string(l.Score),
	}
}

// Header returns the column headers in output order.
func Header() []string {
	h, _ := csvutil.Header(row{}, "csv")
	return h
}

// WriteCSV writes leads as UTF-8 CSV with a header row. The header is
// written even when leads is empty.
func WriteCSV(w io.Writer, leads []model.Lead) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(row{}); err != nil {
		return eris.Wrap(err, "export: csv header")
	}
	for _, l := range leads {
		if err := enc.Encode(toRow(l)); err != nil {
			return eris.Wrapf(err, "export: csv lead %s", l.ID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: csv flush")
}

// WriteXLSX writes leads to a workbook at path with one sheet.
func WriteXLSX(path string, leads []model.Lead) error {
	f, err := buildWorkbook(leads)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

// WriteXLSXTo streams the workbook to w.
func WriteXLSXTo(w io.Writer, leads []model.Lead) error {
	f, err := buildWorkbook(leads)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func buildWorkbook(leads []model.Lead) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range Header() {
		header.AddCell().SetString(h)
	}
	for _, l := range leads {
		r := toRow(l)
		xr := sheet.AddRow()
		for _, v := range []string{r.Name, r.Phone, r.Instagram, r.Website, r.Description, r.Status, r.Score} {
			xr.AddCell().SetString(v)
		}
	}
	return f, nil
}
