// Package export writes booking lists for the office as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/dukerupert/swimschool/internal/model"
)

var Columns = []string{
	"ID", "Created", "Confirmed", "Course period", "Time slot",
	"Child", "Birthdate", "Address", "Swim experience", "Experience details",
	"Without aid", "Health notes", "Parent", "Phone", "Email",
	"Club member", "Payment", "Photo consent",
}

const (
	timeLayout = "2006-01-02 15:04"
	dateLayout = "2006-01-02"
)

// Row renders one booking in column order.
func Row(b model.Booking) []string {
	confirmed := ""
	if b.ConfirmedAt != nil {
		confirmed = b.ConfirmedAt.Format(timeLayout)
	}
	return []string{
		strconv.FormatInt(b.ID, 10),
		b.CreatedAt.Format(timeLayout),
		confirmed,
		b.CoursePeriod,
		b.DesiredTimeSlot,
		b.ChildName,
		b.ChildBirthdate.Format(dateLayout),
		b.ChildAddress,
		yesNo(b.HasSwimExperience),
		deref(b.SwimExperienceDetails),
		yesNo(b.MaySwimWithoutAid),
		deref(b.HealthNotes),
		b.ParentName,
		deref(b.ParentPhone),
		b.ParentEmail,
		yesNo(b.IsMemberOfClub),
		b.PaymentMethod.Label(),
		yesNo(b.PhotoConsent),
	}
}

func WriteCSV(w io.Writer, bookings []model.Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, b := range bookings {
		if err := cw.Write(Row(b)); err != nil {
			return fmt.Errorf("write csv row %d: %w", b.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Bookings"

// WriteXLSX writes a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, bookings []model.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	header, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for col, name := range Columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	_ = f.SetCellStyle(sheetName, "A1", lastCol+"1", header)
	_ = f.SetColWidth(sheetName, "A", lastCol, 18)

	for i, b := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := Row(b)
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		values[0] = b.ID
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", b.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
