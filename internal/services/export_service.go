package services

import (
	"fmt"

	"github.com/alimgiray/contribboard/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService renders the merged leaderboard directory as an XLSX workbook
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// LeaderboardWorkbook builds a workbook with one row per contributor
func (s *ExportService) LeaderboardWorkbook(directory *models.Directory) (*excelize.File, error) {
	f := excelize.NewFile()

	const sheet = "Leaderboard"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []interface{}{"Rank", "Username", "Name", "Role", "Total Points", "Activities"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return nil, err
	}

	for i, person := range directory.People {
		row := []interface{}{
			i + 1,
			person.Username,
			person.Name,
			string(person.Role),
			person.TotalPoints,
			person.DeclaredActivityCount(),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
