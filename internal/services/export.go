package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
)

// ExportService writes accepted lineups as CSV.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

const (
	// ExportFormatFanDuel is FanDuel's upload format: one row of player ids per lineup.
	ExportFormatFanDuel = "fanduel"
	// ExportFormatDetailed adds names and lineup totals for review.
	ExportFormatDetailed = "detailed"
)

// FanDuelHeaders is the upload header row in roster order.
var FanDuelHeaders = []string{"QB", "RB", "RB", "WR", "WR", "WR", "TE", "FLEX", "DEF"}

// ExportLineups renders lineups in the given format. An empty batch still yields a header row.
func (s *ExportService) ExportLineups(lineups []models.Lineup, format string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch format {
	case "", ExportFormatFanDuel:
		if err := writer.Write(FanDuelHeaders); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
		for i, lineup := range lineups {
			if err := writer.Write(lineup.PlayerIDs()); err != nil {
				return nil, fmt.Errorf("failed to write lineup %d: %w", i+1, err)
			}
		}
	case ExportFormatDetailed:
		headers := append([]string{"Lineup"}, FanDuelHeaders...)
		headers = append(headers, "Salary", "Projection", "QB vs DEF")
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
		for i, lineup := range lineups {
			row := []string{strconv.Itoa(i + 1)}
			for _, p := range lineup.Players() {
				row = append(row, p.Name())
			}
			conflict := ""
			if lineup.HasQBOppDefConflict() {
				conflict = "yes"
			}
			row = append(row,
				strconv.Itoa(lineup.TotalSalary),
				strconv.FormatFloat(lineup.TotalProjection, 'f', 1, 64),
				conflict,
			)
			if err := writer.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write lineup %d: %w", i+1, err)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
