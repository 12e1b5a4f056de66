package template

import (
	"bytes"
	"fmt"
	"strings"

	"replay_report/internal/domain/query"
	"replay_report/internal/domain/report"
	"replay_report/internal/format"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// SummarySheet lists every bucket with its row count.
const SummarySheet = "Summary"

const maxSheetName = 31

// XLSXExporter реализует выгрузку отчёта в книгу xlsx: лист на каждый бакет.
type XLSXExporter struct {
	logger *logrus.Logger
}

// NewXLSX возвращает экспортёр XLSX.
func NewXLSX(logger *logrus.Logger) *XLSXExporter {
	return &XLSXExporter{logger: logger}
}

// Extension is the file extension of the exported artifact.
func (x *XLSXExporter) Extension() string { return "xlsx" }

// ContentType is the MIME type of the exported artifact.
func (x *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Bytes строит книгу для документа.
func (x *XLSXExporter) Bytes(doc *report.Document) ([]byte, error) {
	logger := x.logger.WithFields(logrus.Fields{
		"report":   doc.Name,
		"sections": len(doc.Sections),
	})

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := x.writeSummary(f, doc, styles); err != nil {
		return nil, err
	}

	for i, s := range doc.Sections {
		if err := x.writeSection(f, SheetName(i+1, s.Title), s, styles); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.WithError(err).Error("failed to write workbook")
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Debug("workbook generated")
	return bytes.Clone(buf.Bytes()), nil
}

type sheetStyles struct {
	header int
	bands  map[format.Band]int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4CAF50"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create header style: %w", err)
	}

	styles := sheetStyles{header: header, bands: make(map[format.Band]int, len(format.Bands))}
	for _, b := range format.Bands {
		id, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: b.Bold(), Color: b.Color()},
		})
		if err != nil {
			return sheetStyles{}, fmt.Errorf("failed to create %s style: %w", b, err)
		}
		styles.bands[b] = id
	}
	return styles, nil
}

func (x *XLSXExporter) writeSummary(f *excelize.File, doc *report.Document, styles sheetStyles) error {
	headers := []string{"bucket", "rows", "sheet"}
	if err := writeHeader(f, SummarySheet, headers, styles.header); err != nil {
		return err
	}
	for i, s := range doc.Sections {
		values := []any{s.Title, s.Rows(), SheetName(i+1, s.Title)}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SummarySheet, cell, v); err != nil {
				return fmt.Errorf("failed to write summary: %w", err)
			}
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 30)
}

func (x *XLSXExporter) writeSection(f *excelize.File, sheet string, s report.Section, styles sheetStyles) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}
	if err := writeHeader(f, sheet, s.Table.Columns, styles.header); err != nil {
		return err
	}

	ratioIdx := s.Table.ColumnIndex(query.RatioColumn)
	for r, row := range s.Table.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if c == ratioIdx {
				if ratio, ok := format.Numeric(v); ok {
					if err := f.SetCellValue(sheet, cell, format.Percent(ratio)); err != nil {
						return err
					}
					if err := f.SetCellStyle(sheet, cell, cell, styles.bands[format.Classify(ratio)]); err != nil {
						return err
					}
					continue
				}
			}
			if err := f.SetCellValue(sheet, cell, sheetValue(v)); err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}
	return nil
}

// sheetValue keeps numbers numeric and turns the rest into text.
func sheetValue(v any) any {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	default:
		return Text(v)
	}
}

// SheetName builds a valid, unique sheet name for the n-th bucket.
func SheetName(n int, title string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, title)
	name := strings.Join(strings.Fields(fmt.Sprintf("%d %s", n, clean)), " ")
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}
