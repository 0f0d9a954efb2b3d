package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `payee,amount,date
Acme Corporation LLC,100.00,2026-01-15
"Smith, John",5.25,2026-01-16
Jane Doe,7.75,2026-01-17
`

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"payee", "amount", "date"}, table.Header)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Smith, John", table.Rows[1][0])
}

func TestReadCSVRaggedRows(t *testing.T) {
	raw := "payee,amount\nAcme LLC,10\nJohn Smith\n"
	table, err := ReadCSV(context.Background(), strings.NewReader(raw), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"John Smith"}, table.Rows[1])
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	assert.Error(t, err)
}

func TestReadCSVTrimSpace(t *testing.T) {
	raw := "payee , amount\n Acme LLC , 10 \n"
	table, err := ReadCSV(context.Background(), strings.NewReader(raw), CSVOptions{TrimSpace: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"payee", "amount"}, table.Header)
	assert.Equal(t, "Acme LLC", table.Rows[0][0])
}

func TestSelectColumn(t *testing.T) {
	table, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV), CSVOptions{})
	require.NoError(t, err)

	names, rowData, err := table.Select("Payee") // case-insensitive
	require.NoError(t, err)
	require.Len(t, names, 3)
	require.Len(t, rowData, 3)

	assert.Equal(t, "Acme Corporation LLC", names[0].Text)
	assert.Equal(t, 0, names[0].OriginRowIndex)
	assert.Equal(t, 2, names[2].OriginRowIndex)
	assert.Equal(t, "100.00", rowData[0]["amount"])
	assert.Equal(t, "Smith, John", rowData[1]["payee"])
}

func TestSelectMissingColumn(t *testing.T) {
	table, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV), CSVOptions{})
	require.NoError(t, err)

	_, _, err = table.Select("vendor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSelectRaggedRowFillsEmpty(t *testing.T) {
	raw := "payee,amount\nAcme LLC\n"
	table, err := ReadCSV(context.Background(), strings.NewReader(raw), CSVOptions{})
	require.NoError(t, err)

	names, rowData, err := table.Select("amount")
	require.NoError(t, err)
	assert.Equal(t, "", names[0].Text)
	assert.Equal(t, "", rowData[0]["amount"])
	assert.Equal(t, "Acme LLC", rowData[0]["payee"])
}
