package pattern

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// TargetRoles is the closed set of role names extracted from game logs.
var TargetRoles = []string{"BODYGUARD", "MEDIUM", "POSSESSED", "SEER", "VILLAGER", "WEREWOLF"}

// teamSuffixPattern matches agent suffixes such as -A1 or -B12 appended to
// team names in the logs.
var teamSuffixPattern = regexp.MustCompile(`-[A-Za-z]\d+$`)

var gameFilePattern = regexp.MustCompile(`^game(\d+)$`)

// RoleNumPreset returns the expected per-role occurrence counts for a game of
// the given player count. Only 5- and 13-player games exist in the dataset.
func RoleNumPreset(playerCount int) (map[string]int, error) {
	switch playerCount {
	case 5:
		return map[string]int{
			"BODYGUARD": 0,
			"MEDIUM":    0,
			"POSSESSED": 1,
			"SEER":      1,
			"VILLAGER":  2,
			"WEREWOLF":  1,
		}, nil
	case 13:
		return map[string]int{
			"BODYGUARD": 1,
			"MEDIUM":    1,
			"POSSESSED": 1,
			"SEER":      1,
			"VILLAGER":  6,
			"WEREWOLF":  3,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported player count: %d (must be 5 or 13)", playerCount)
	}
}

// Generator accumulates role/team observations from raw game logs and
// produces a pattern Document. Team indices are assigned in order of first
// appearance.
type Generator struct {
	teamToIndex map[string]int
	teams       []string
	roleNum     map[string]int
	maxLines    int
	matches     []Match
	targetSet   map[string]bool
	logger      *logrus.Entry
}

// NewGenerator creates a generator for games with the given player count.
// The first playerCount lines of each log carry the initial status records
// that declare every player's role and team.
func NewGenerator(playerCount int, logger *logrus.Logger) (*Generator, error) {
	roleNum, err := RoleNumPreset(playerCount)
	if err != nil {
		return nil, err
	}
	targetSet := make(map[string]bool, len(TargetRoles))
	for _, role := range TargetRoles {
		targetSet[role] = true
	}
	return &Generator{
		teamToIndex: make(map[string]int),
		roleNum:     roleNum,
		maxLines:    playerCount,
		targetSet:   targetSet,
		logger:      logger.WithField("component", "pattern_generator"),
	}, nil
}

// NormalizeTeamName strips agent suffixes like -A1 so all agents of one team
// map to the same index.
func NormalizeTeamName(name string) string {
	return teamSuffixPattern.ReplaceAllString(name, "")
}

// AddGameLog parses one raw game log and appends its match entry. Lines that
// do not parse as status records are skipped; only the leading status block
// is consulted.
func (g *Generator) AddGameLog(r io.Reader) error {
	assignments := make(map[string][]int)

	scanner := bufio.NewScanner(r)
	processed := 0
	for scanner.Scan() && processed < g.maxLines {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		// Format: day,status,player_id,role,status,team,name
		if len(parts) >= 7 && parts[1] == "status" {
			role := parts[3]
			team := parts[5]
			if g.targetSet[role] {
				idx := g.teamIndex(NormalizeTeamName(team))
				if !containsInt(assignments[role], idx) {
					assignments[role] = append(assignments[role], idx)
				}
			}
		}
		processed++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read game log: %w", err)
	}

	entry := make(Match, len(TargetRoles))
	for _, role := range TargetRoles {
		teams := assignments[role]
		sort.Ints(teams)
		if teams == nil {
			teams = []int{}
		}
		entry[role] = teams
	}
	g.matches = append(g.matches, entry)
	return nil
}

// ProcessDirectory parses every gameN file in dir in numeric order and
// returns the number of logs processed.
func (g *Generator) ProcessDirectory(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	type gameFile struct {
		name string
		num  int
	}
	var files []gameFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := gameFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		files = append(files, gameFile{name: entry.Name(), num: num})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].num < files[j].num })

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		fh, err := os.Open(path)
		if err != nil {
			return len(g.matches), fmt.Errorf("failed to open %s: %w", path, err)
		}
		err = g.AddGameLog(fh)
		fh.Close()
		if err != nil {
			return len(g.matches), fmt.Errorf("%s: %w", path, err)
		}
		g.logger.WithField("game_file", f.name).Debug("Processed game log")
	}
	return len(files), nil
}

// Document returns the accumulated corpus in its JSON form.
func (g *Generator) Document() Document {
	idxTeam := make(map[string]string, len(g.teams))
	for i, name := range g.teams {
		idxTeam[strconv.Itoa(i)] = name
	}
	roleNum := make(map[string]int, len(g.roleNum))
	for role, count := range g.roleNum {
		roleNum[role] = count
	}
	matches := make([]Match, len(g.matches))
	copy(matches, g.matches)
	return Document{
		IdxTeamMap:       idxTeam,
		RoleNumMap:       roleNum,
		PatternOfMatches: matches,
	}
}

// Store validates the accumulated corpus and returns it as a Store.
func (g *Generator) Store() (*Store, error) {
	return NewStore(g.Document())
}

// Teams returns the discovered team names in index order.
func (g *Generator) Teams() []string {
	out := make([]string, len(g.teams))
	copy(out, g.teams)
	return out
}

// MatchCount returns the number of match entries accumulated so far.
func (g *Generator) MatchCount() int { return len(g.matches) }

func (g *Generator) teamIndex(team string) int {
	if idx, ok := g.teamToIndex[team]; ok {
		return idx
	}
	idx := len(g.teams)
	g.teamToIndex[team] = idx
	g.teams = append(g.teams, team)
	return idx
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
