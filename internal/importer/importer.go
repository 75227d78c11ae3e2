// Package importer reads practice items from spreadsheet files.
//
// Columns are, in order: word, translation, language, target_language and
// comment. Only the first two are required. A first row naming the columns
// is treated as a header and skipped.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vytor/vocabflash/internal/models"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("importer: unsupported file format, expected .xlsx or .csv")

const (
	colWord = iota
	colTranslation
	colLanguage
	colTargetLanguage
	colComment
)

// SkippedRow reports a row that did not produce an item. Row is 1-based.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result holds the result of an import operation
type Result struct {
	Items          []models.StudyItem `json:"-"`
	TotalProcessed int                `json:"total_processed"`
	Skipped        []SkippedRow       `json:"skipped"`
}

// Parse reads practice items from r. The format is chosen by the extension
// of filename. Items come back without a deck ID.
func Parse(filename string, r io.Reader) (*Result, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return convert(rows), nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}

func convert(rows [][]string) *Result {
	res := &Result{Skipped: []SkippedRow{}}
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if blank(row) {
			continue
		}
		res.TotalProcessed++

		word, translation := cell(row, colWord), cell(row, colTranslation)
		switch {
		case word == "":
			res.Skipped = append(res.Skipped, SkippedRow{Row: i + 1, Reason: "missing word"})
			continue
		case translation == "":
			res.Skipped = append(res.Skipped, SkippedRow{Row: i + 1, Reason: "missing translation"})
			continue
		}

		res.Items = append(res.Items, models.StudyItem{
			Kind:           models.KindPractice,
			Word:           word,
			Translation:    translation,
			Language:       cell(row, colLanguage),
			TargetLanguage: cell(row, colTargetLanguage),
			Comment:        cell(row, colComment),
		})
	}
	return res
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isHeader(row []string) bool {
	return strings.EqualFold(cell(row, colWord), "word") && strings.EqualFold(cell(row, colTranslation), "translation")
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
