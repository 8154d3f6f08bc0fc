package orders

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/edelguur/admin-backend/pkg/db/models"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
)

const (
	CSVFilename  = "orders_all.csv"
	XLSXFilename = "orders.xlsx"
	CSVMIME      = "text/csv; charset=utf-8"
	XLSXMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportSheet = "Orders"
)

var exportHeader = []string{"ID", "Name", "Email", "Phone", "Status", "Date", "Total"}

func exportRow(o models.Order) []string {
	email := ""
	if o.Email != nil {
		email = *o.Email
	}
	return []string{
		fmt.Sprintf("%d", o.ID),
		o.Name,
		email,
		o.Phone1,
		string(o.Status),
		o.CreatedAt.UTC().Format(time.RFC3339),
		o.Total.StringFixed(2),
	}
}

// ExportCSV writes every order, newest first, as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load orders for export")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(exportRow(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportXLSX writes every order, newest first, as a single-sheet workbook.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) error {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load orders for export")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "prepare workbook")
	}

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "prepare workbook")
	}
	if err := sw.SetRow("A1", toCells(exportHeader)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write header")
	}
	for i, row := range rows {
		cells := toCells(exportRow(row))
		cells[0] = row.ID
		cells[6] = row.Total.InexactFloat64()
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write row")
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write row")
		}
	}
	if err := sw.Flush(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush workbook")
	}
	_, err = f.WriteTo(w)
	return err
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
