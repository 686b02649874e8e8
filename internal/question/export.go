package question

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportQuestions renders the whole bank as an xlsx workbook, newest first.
// Content documents are omitted; the sheet is meant for review, not re-import.
func (s *Service) ExportQuestions(ctx context.Context) ([]byte, error) {
	items, err := s.repo.FindMany(ctx, Filter{}, 0, 0, "createdAt", "desc")
	if err != nil {
		return nil, fmt.Errorf("query questions for export: %w", err)
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	headers := []string{"id", "title", "type", "category", "difficulty", "visibility", "tags", "points", "estimated_time", "created_at"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, it := range items {
		row := i + 2
		values := []any{
			it.ID,
			it.Title,
			string(it.Type),
			it.Category,
			string(it.Difficulty),
			string(it.Visibility),
			strings.Join(it.Tags, ","),
			it.Points,
			it.EstimatedTime,
			it.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "J", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}
