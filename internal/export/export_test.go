package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dukerupert/swimschool/internal/model"
)

func sampleBookings() []model.Booking {
	phone := "0241 123456"
	confirmed := time.Date(2025, 10, 2, 8, 15, 0, 0, time.UTC)
	return []model.Booking{
		{
			ID:              2,
			CreatedAt:       time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC),
			ConfirmedAt:     &confirmed,
			CoursePeriod:    "04.11.2025 - 27.01.2026",
			DesiredTimeSlot: "15:00-15:45",
			ChildName:       "Max, Jr.",
			ChildBirthdate:  time.Date(2018, 5, 15, 0, 0, 0, 0, time.UTC),
			ParentName:      "Erika",
			ParentPhone:     &phone,
			ParentEmail:     "erika@example.com",
			PaymentMethod:   model.PaymentPayPal,
		},
		{
			ID:              1,
			CreatedAt:       time.Date(2025, 9, 30, 18, 0, 0, 0, time.UTC),
			CoursePeriod:    "04.11.2025 - 27.01.2026",
			DesiredTimeSlot: "16:00-16:45",
			ChildName:       "Clara",
			ChildBirthdate:  time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC),
			ParentName:      "Ben",
			ParentEmail:     "ben@example.com",
			PaymentMethod:   model.PaymentCash,
		},
	}
}

func TestRow(t *testing.T) {
	row := Row(sampleBookings()[0])
	require.Len(t, row, len(Columns))
	assert.Equal(t, "2", row[0])
	assert.Equal(t, "2025-10-02 08:15", row[2])
	assert.Equal(t, "2018-05-15", row[6])
	assert.Equal(t, "0241 123456", row[13])
	assert.Equal(t, "PayPal", row[16])

	unconfirmed := Row(sampleBookings()[1])
	assert.Equal(t, "", unconfirmed[2])
	assert.Equal(t, "", unconfirmed[13])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleBookings()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, "Max, Jr.", records[1][5])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleBookings()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Clara", rows[2][5])
}
