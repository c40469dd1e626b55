package bankfeed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := `transaction_id,name,amount,category,date
bank-1,WHOLEFDS GROCERIES,-50.00,Food,2025-03-15
bank-2,Payroll,2500.00,,2025-03-14T09:30:00Z
`
	records, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "bank-1", records[0].ID)
	assert.Equal(t, "WHOLEFDS GROCERIES", records[0].Name)
	assert.Equal(t, -50.00, records[0].Amount)
	assert.Equal(t, "Food", records[0].Category)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), records[0].Date)

	assert.Equal(t, 2500.00, records[1].Amount)
	assert.Equal(t, "", records[1].Category)
	assert.Equal(t, time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), records[1].Date)
}

func TestReadCSV_ColumnOrderDoesNotMatter(t *testing.T) {
	input := `date,amount,name,transaction_id
2025-03-15,-4.75,Coffee,bank-9
`
	records, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bank-9", records[0].ID)
	assert.Equal(t, -4.75, records[0].Amount)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	input := `transaction_id,name,category,date
bank-1,Coffee,Food,2025-03-15
`
	_, err := ReadCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestReadCSV_BadAmount(t *testing.T) {
	input := `transaction_id,name,amount,date
bank-1,Coffee,notanumber,2025-03-15
`
	_, err := ReadCSV(strings.NewReader(input))
	assert.Error(t, err)
}

func TestReadCSV_BadDate(t *testing.T) {
	input := `transaction_id,name,amount,date
bank-1,Coffee,-4.75,15/03/2025
`
	_, err := ReadCSV(strings.NewReader(input))
	assert.Error(t, err)
}

func TestReadCSV_Empty(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadJSON(t *testing.T) {
	input := `[
		{"transaction_id": "bank-1", "name": "NETFLIX.COM", "amount": -15.49, "category": "Entertainment", "date": "2025-03-15"},
		{"transaction_id": "bank-2", "name": "Payroll", "amount": 2500, "date": "2025-03-14T09:30:00Z"}
	]`
	records, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "bank-1", records[0].ID)
	assert.Equal(t, -15.49, records[0].Amount)
	assert.Equal(t, "Entertainment", records[0].Category)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), records[0].Date)
}

func TestReadJSON_BadDate(t *testing.T) {
	input := `[{"transaction_id": "bank-1", "name": "x", "amount": 1, "date": "soon"}]`
	_, err := ReadJSON(strings.NewReader(input))
	assert.Error(t, err)
}

func TestReadFile_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("transaction_id,name,amount,date\nbank-1,Coffee,-4.75,2025-03-15\n"), 0o644))

	jsonPath := filepath.Join(dir, "statement.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"transaction_id":"bank-2","name":"Tea","amount":-3.10,"date":"2025-03-15"}]`), 0o644))

	fromCSV, err := ReadFile(csvPath)
	require.NoError(t, err)
	require.Len(t, fromCSV, 1)
	assert.Equal(t, "bank-1", fromCSV[0].ID)

	fromJSON, err := ReadFile(jsonPath)
	require.NoError(t, err)
	require.Len(t, fromJSON, 1)
	assert.Equal(t, "bank-2", fromJSON[0].ID)

	_, err = ReadFile(filepath.Join(dir, "statement.xml"))
	assert.Error(t, err)
}
