package providers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/logger"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/utils"
)

// headerScanRows bounds how far down the lineup-upload template we look for the player table.
const headerScanRows = 15

// FanDuelProvider reads player pools from FanDuel CSV exports. It understands both the
// lineup-upload template, where the player table sits to the right of the entry columns
// a few rows down, and a plain export with headers on the first row.
type FanDuelProvider struct {
	logger *logrus.Entry
}

func NewFanDuelProvider() *FanDuelProvider {
	return &FanDuelProvider{logger: logger.WithService("fanduel-import")}
}

// ParsePlayerCSV parses r with a default provider.
func ParsePlayerCSV(r io.Reader) ([]models.Player, error) {
	return NewFanDuelProvider().ParsePlayers(r)
}

type columnMap map[string]int

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(h), ""))
}

func newColumnMap(headers []string) columnMap {
	cols := make(columnMap, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, exists := cols[key]; !exists {
			cols[key] = i
		}
	}
	return cols
}

// index returns the first matching column for any alias, or -1.
func (c columnMap) index(aliases ...string) int {
	for _, alias := range aliases {
		if idx, ok := c[normalizeHeader(alias)]; ok {
			return idx
		}
	}
	return -1
}

type playerColumns struct {
	id, position, firstName, lastName, nickname    int
	fppg, played, salary, game, team, opponent     int
	injuryIndicator, injuryDetails, rosterPosition int
	projection                                     int
}

func resolveColumns(c columnMap) playerColumns {
	return playerColumns{
		id:              c.index("Id", "PlayerID"),
		position:        c.index("Position", "Pos"),
		firstName:       c.index("First Name", "FirstName"),
		lastName:        c.index("Last Name", "LastName"),
		nickname:        c.index("Nickname", "Player ID + Player Name"),
		fppg:            c.index("FPPG", "FantasyPointsPerGame"),
		played:          c.index("Played", "Games"),
		salary:          c.index("Salary", "Cost"),
		game:            c.index("Game", "Matchup"),
		team:            c.index("Team"),
		opponent:        c.index("Opponent", "Opp"),
		injuryIndicator: c.index("Injury Indicator", "InjuryIndicator", "Injury"),
		injuryDetails:   c.index("Injury Details", "InjuryDetails"),
		rosterPosition:  c.index("Roster Position", "RosterPosition"),
		projection:      c.index("Projection", "Proj"),
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseSalary(raw string) int {
	cleaned := strings.NewReplacer(",", "", "$", "").Replace(raw)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return int(v)
}

func parseFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// findHeader locates the player table header. ok is false when the file has none.
func findHeader(rows [][]string) (rowIdx, colIdx int, ok bool) {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for i := 0; i < limit; i++ {
		row := rows[i]
		for j := range row {
			c := strings.TrimSpace(strings.TrimPrefix(row[j], "\ufeff"))
			if c != "Player ID + Player Name" && c != "Id" && c != "Position" {
				continue
			}
			end := j + 5
			if end > len(row) {
				end = len(row)
			}
			for _, next := range row[j:end] {
				switch strings.TrimSpace(next) {
				case "Position", "Salary", "FPPG":
					return i, j, true
				}
			}
		}
	}
	return 0, 0, false
}

// ParsePlayers reads every usable player row. Rows without an id, position or salary and
// rows for positions outside QB/RB/WR/TE/DEF are skipped.
func (p *FanDuelProvider) ParsePlayers(r io.Reader) ([]models.Player, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrImportFailed, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file is empty", utils.ErrImportFailed)
	}

	headerRow, colStart, template := findHeader(rows)
	minCells := 5
	if !template {
		// Plain export: headers on the first row, first column.
		headerRow, colStart, minCells = 0, 0, 1
	}

	headers := rows[headerRow][colStart:]
	if len(headers) < minCells {
		minCells = len(headers)
	}
	cols := resolveColumns(newColumnMap(headers))
	if cols.id < 0 || cols.position < 0 || cols.salary < 0 {
		return nil, fmt.Errorf("%w: missing Id, Position or Salary column", utils.ErrImportFailed)
	}

	players := make([]models.Player, 0, len(rows)-headerRow-1)
	skipped := 0
	for _, raw := range rows[headerRow+1:] {
		if len(raw) <= colStart {
			continue
		}
		row := raw[colStart:]
		if len(row) < minCells {
			continue
		}

		player, ok := buildPlayer(row, cols)
		if !ok {
			skipped++
			continue
		}
		players = append(players, player)
	}

	p.logger.WithFields(logrus.Fields{
		"template_format": template,
		"players":         len(players),
		"skipped_rows":    skipped,
	}).Info("Parsed player pool")

	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no valid players found", utils.ErrImportFailed)
	}
	return players, nil
}

func buildPlayer(row []string, cols playerColumns) (models.Player, bool) {
	id := cell(row, cols.id)
	salary := parseSalary(cell(row, cols.salary))
	position, valid := models.ParsePosition(cell(row, cols.position))
	if id == "" || salary == 0 || !valid {
		return models.Player{}, false
	}

	fppg, _ := parseFloat(cell(row, cols.fppg))
	projection := fppg
	if v, ok := parseFloat(cell(row, cols.projection)); ok {
		projection = v
	}
	played, _ := strconv.Atoi(cell(row, cols.played))

	rosterPosition := cell(row, cols.rosterPosition)
	if rosterPosition == "" {
		rosterPosition = string(position)
	}

	nickname := cell(row, cols.nickname)
	if strings.HasPrefix(nickname, id+":") {
		// Template cells read "<id>:<name>".
		nickname = strings.TrimSpace(strings.TrimPrefix(nickname, id+":"))
	}

	return models.Player{
		ID:              id,
		Position:        position,
		FirstName:       cell(row, cols.firstName),
		Nickname:        nickname,
		LastName:        cell(row, cols.lastName),
		FPPG:            fppg,
		Played:          played,
		Salary:          salary,
		Game:            cell(row, cols.game),
		Team:            cell(row, cols.team),
		Opponent:        cell(row, cols.opponent),
		InjuryIndicator: cell(row, cols.injuryIndicator),
		InjuryDetails:   cell(row, cols.injuryDetails),
		RosterPosition:  rosterPosition,
		Projection:      projection,
	}, true
}
