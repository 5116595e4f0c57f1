package scraper

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/poku-e/tubtakes/internal/catalog"
)

var exportHeader = []string{"code", "name", "image_id", "image", "retired"}

func exportRow(f catalog.Flavor) []string {
	retired := ""
	if f.Retired {
		retired = "yes"
	}
	return []string{f.Code, f.Name, f.ImageID, f.Image, retired}
}

// ---------- Output writers ----------

func writeCSV(path string, flavors []catalog.Flavor) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, fl := range flavors {
		if err := w.Write(exportRow(fl)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(path string, flavors []catalog.Flavor) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, fl := range flavors {
		rec := exportRow(fl)
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		cellAddr, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cellAddr, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// ExportCatalog writes the catalog as a code table (.csv or .xlsx).
func ExportCatalog(path string, c *catalog.Catalog) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, c.Flavors())
	case ".xlsx":
		return writeXLSX(path, c.Flavors())
	default:
		return errors.New("out must end with .csv or .xlsx")
	}
}
