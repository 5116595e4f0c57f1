package ranking

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var header = []string{"rank", "flavor", "tier", "score", "weight", "voters"}

func row(i int, s Score) []string {
	return []string{
		strconv.Itoa(i + 1),
		s.Flavor,
		s.Tier.String(),
		strconv.FormatFloat(s.Score, 'f', 3, 64),
		strconv.Itoa(s.Weight),
		strconv.Itoa(s.Voters),
	}
}

// ---------- Output writers ----------

func WriteCSV(w io.Writer, scores []Score) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, s := range scores {
		if err := cw.Write(row(i, s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheet = "Sheet1"

// WriteXLSX streams scores into a single-sheet workbook.
func WriteXLSX(w io.Writer, scores []Score) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := sw.SetRow("A1", hdr); err != nil {
		return err
	}
	for i, s := range scores {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}{i + 1, s.Flavor, s.Tier.String(), s.Score, s.Weight, s.Voters}); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

// WriteFile picks the writer from the extension of path (.csv or .xlsx).
func WriteFile(path string, scores []Score) error {
	var write func(io.Writer, []Score) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		write = WriteCSV
	case ".xlsx":
		write = WriteXLSX
	default:
		return errors.New("out must end with .csv or .xlsx")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, scores); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
