package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/gesthub/gesthub/internal/tracking"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"company", "invoice", "issued_at", "message_sent_at", "first_message_at",
	"messages", "contact", "phone", "status", "collected_at", "note",
}

type ExportService struct {
	notas *NotaService
}

func NewExportService(notas *NotaService) *ExportService {
	return &ExportService{notas: notas}
}

// Export renders the same view List returns as an XLSX workbook.
func (s *ExportService) Export(ctx context.Context, q model.NotaQuery) (string, []byte, error) {
	if q.Now.IsZero() {
		q.Now = s.notas.Now()
	}
	q = q.Normalize()
	notas, err := s.notas.List(ctx, q)
	if err != nil {
		return "", nil, err
	}

	data, err := s.workbook(notas, q)
	if err != nil {
		return "", nil, s.notas.fail("export", err)
	}
	filename := fmt.Sprintf("notas_%s_%s.xlsx", q.Tab, q.Now.Format("20060102"))
	return filename, data, nil
}

func (s *ExportService) workbook(notas []*model.Nota, q model.NotaQuery) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := string(q.Tab)
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return nil, errors.Wrap(err, "name sheet")
	}
	if err := xl.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, errors.Wrap(err, "write header")
	}

	for i, n := range notas {
		record := []string{
			n.CompanyName,
			n.InvoiceNumber,
			formatDate(n.IssuedAt),
			formatDate(n.MessageSentAt),
			formatDate(n.FirstMessageAt),
			strconv.Itoa(tracking.MessageCount(n)),
			n.ContactName,
			n.ContactPhone,
			tracking.DeriveStatusLabel(n, q.Now),
			"",
			n.Note,
		}
		if n.CollectedAt != nil {
			record[9] = formatDate(*n.CollectedAt)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(sheet, cell, &record); err != nil {
			return nil, errors.Wrapf(err, "write row %d", i+2)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "write workbook")
	}
	return buf.Bytes(), nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(tracking.DateLayout)
}
