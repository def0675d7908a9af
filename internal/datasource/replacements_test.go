package datasource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/allanpk716/evrak_generator/internal/domain"
)

// createWorkbook 在临时目录中创建只有一个工作表的工作簿
func createWorkbook(t *testing.T, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadReplacements(t *testing.T) {
	path := createWorkbook(t, "veri.xlsx", [][]interface{}{
		{"Anahtar", "Karşılık"},
		{"[DEĞİŞTİR:PROJEADI]", "ACME"},
		{"[DEĞİŞTİR:ÇALIŞANSAYISI]", 75},
		{"[DEĞİŞTİR:BOŞ]"},
		{nil, "sahipsiz değer"},
		{},
		{"  [DEĞİŞTİR:BOŞLUKLU]  ", "x"},
	})

	replacements, err := LoadReplacements(path, DefaultTableOptions())
	require.NoError(t, err)

	assert.Equal(t, domain.ReplacementMap{
		"[DEĞİŞTİR:PROJEADI]":      "ACME",
		"[DEĞİŞTİR:ÇALIŞANSAYISI]": "75",
		"[DEĞİŞTİR:BOŞ]":           "",
		"[DEĞİŞTİR:BOŞLUKLU]":      "x",
	}, replacements)
}

func TestLoadReplacements_HeaderCaseInsensitive(t *testing.T) {
	path := createWorkbook(t, "veri.xlsx", [][]interface{}{
		{" anahtar ", "KARŞILIK"},
		{"[A:B]", "1"},
	})

	replacements, err := LoadReplacements(path, TableOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1", replacements["[A:B]"])
}

func TestLoadReplacements_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadReplacements(filepath.Join(t.TempDir(), "yok.xlsx"), DefaultTableOptions())

		var dsErr *DataSourceError
		require.True(t, errors.As(err, &dsErr))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("missing value column", func(t *testing.T) {
		path := createWorkbook(t, "veri.xlsx", [][]interface{}{{"Anahtar", "Başka"}})
		_, err := LoadReplacements(path, DefaultTableOptions())

		var dsErr *DataSourceError
		require.True(t, errors.As(err, &dsErr))
		assert.True(t, errors.Is(err, ErrMissingColumn))
	})

	t.Run("not a workbook", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bozuk.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))
		_, err := LoadReplacements(path, DefaultTableOptions())

		var dsErr *DataSourceError
		assert.True(t, errors.As(err, &dsErr))
	})
}

func TestSaveAndUpdateReplacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "veri_1234567.xlsx")
	keys := []string{"[A:B]", "[A:C]", "[A:D]"}

	err := SaveReplacements(path, keys, domain.ReplacementMap{"[A:B]": "1", "[A:C]": "2"}, DefaultTableOptions())
	require.NoError(t, err)

	loadedKeys, err := LoadKeys(path, DefaultTableOptions())
	require.NoError(t, err)
	assert.Equal(t, keys, loadedKeys)

	updated, err := UpdateReplacements(path, domain.ReplacementMap{"[A:C]": "yeni", "[A:X]": "yok"}, DefaultTableOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	replacements, err := LoadReplacements(path, DefaultTableOptions())
	require.NoError(t, err)
	assert.Equal(t, "1", replacements["[A:B]"])
	assert.Equal(t, "yeni", replacements["[A:C]"])
	assert.Equal(t, "", replacements["[A:D]"])
	_, exists := replacements["[A:X]"]
	assert.False(t, exists)
}

func TestYearlyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yıllıkverileri.xlsx")
	keys := []string{domain.TokenSGKRegistry, domain.TokenProjectName}
	companies := []domain.ReplacementMap{
		{domain.TokenSGKRegistry: "1111111", domain.TokenProjectName: "A"},
		{domain.TokenSGKRegistry: "2222222"},
	}

	require.NoError(t, SaveYearlyData(path, keys, companies, DefaultTableOptions()))

	loaded, err := LoadYearlyData(path, DefaultTableOptions())
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "1111111", loaded[0][domain.TokenSGKRegistry])
	assert.Equal(t, "A", loaded[0][domain.TokenProjectName])
	assert.Equal(t, "2222222", loaded[1][domain.TokenSGKRegistry])
	assert.Equal(t, "", loaded[1][domain.TokenProjectName])
}

func TestSaveYearlyData_Limit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yıllıkverileri.xlsx")
	companies := make([]domain.ReplacementMap, MaxYearlyCompanies+3)
	for i := range companies {
		companies[i] = domain.ReplacementMap{"[A:B]": "x"}
	}

	require.NoError(t, SaveYearlyData(path, []string{"[A:B]"}, companies, DefaultTableOptions()))

	loaded, err := LoadYearlyData(path, DefaultTableOptions())
	require.NoError(t, err)
	assert.Len(t, loaded, MaxYearlyCompanies)
}
