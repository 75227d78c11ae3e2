package importer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabflash/internal/importer"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestParse_CSV(t *testing.T) {
	data := "word,translation,language,target_language,comment\n" +
		"cat,gato/gata,en,es,animal\n" +
		"dog,,en,es,\n" +
		",,,,\n" +
		"house,casa\n" +
		",mesa\n"

	res, err := importer.Parse("deck.CSV", strings.NewReader(data))
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, models.StudyItem{
		Kind:           models.KindPractice,
		Word:           "cat",
		Translation:    "gato/gata",
		Language:       "en",
		TargetLanguage: "es",
		Comment:        "animal",
	}, res.Items[0])
	assert.Equal(t, "house", res.Items[1].Word)
	assert.Empty(t, res.Items[1].Language)

	assert.Equal(t, 4, res.TotalProcessed)
	assert.Equal(t, []importer.SkippedRow{
		{Row: 3, Reason: "missing translation"},
		{Row: 6, Reason: "missing word"},
	}, res.Skipped)
}

func TestParse_CSVWithoutHeader(t *testing.T) {
	res, err := importer.Parse("deck.csv", strings.NewReader("cat, gato\n"))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "gato", res.Items[0].Translation)
	assert.Empty(t, res.Skipped)
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Word", "Translation", "Language", "Target_Language", "Comment"},
		{"to run", "correr", "en", "es"},
		{"to eat"},
		{"water", "agua", "en", "es", "uncountable"},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := importer.Parse("words.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, "to run", res.Items[0].Word)
	assert.Equal(t, "uncountable", res.Items[1].Comment)
	assert.Equal(t, []importer.SkippedRow{{Row: 3, Reason: "missing translation"}}, res.Skipped)
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := importer.Parse("deck.txt", strings.NewReader("cat,gato"))
	assert.ErrorIs(t, err, importer.ErrUnsupportedFormat)
}

func TestParse_CorruptXLSX(t *testing.T) {
	_, err := importer.Parse("deck.xlsx", strings.NewReader("not a zip"))
	assert.Error(t, err)
}
