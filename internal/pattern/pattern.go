// Package pattern holds the pattern-of-matches corpus: the team index
// mapping, per-role expected counts, and per-match role assignments that the
// optimizer consumes. A Store is immutable once built and safe to share.
package pattern

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Match maps a role name to the indices of the teams that filled it in one game.
type Match map[string][]int

// Document is the on-disk JSON form of a corpus. Field names are fixed by the
// pattern_of_matches.json format shared with the pattern generator.
type Document struct {
	IdxTeamMap       map[string]string `json:"idx_team_map"`
	RoleNumMap       map[string]int    `json:"role_num_map"`
	PatternOfMatches []Match           `json:"pattern_of_matches"`
}

var (
	ErrMissingTeamMap = errors.New("pattern document missing idx_team_map")
	ErrMissingRoleMap = errors.New("pattern document missing role_num_map")
	ErrBadTeamIndex   = errors.New("idx_team_map keys must form a contiguous 0-based index")
)

// Store is the loaded, validated corpus.
type Store struct {
	teams   []string
	roleNum map[string]int
	roles   []string
	matches []Match
}

// NewStore validates a Document and builds the corpus representation.
// Unknown roles inside match payloads are tolerated here; they are ignored
// during matrix construction.
func NewStore(doc Document) (*Store, error) {
	if len(doc.IdxTeamMap) == 0 {
		return nil, ErrMissingTeamMap
	}
	if doc.RoleNumMap == nil {
		return nil, ErrMissingRoleMap
	}

	teams := make([]string, len(doc.IdxTeamMap))
	for key, name := range doc.IdxTeamMap {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(teams) {
			return nil, fmt.Errorf("%w: key %q", ErrBadTeamIndex, key)
		}
		if teams[idx] != "" {
			return nil, fmt.Errorf("%w: duplicate index %d", ErrBadTeamIndex, idx)
		}
		teams[idx] = name
	}

	roleNum := make(map[string]int, len(doc.RoleNumMap))
	roles := make([]string, 0, len(doc.RoleNumMap))
	for role, count := range doc.RoleNumMap {
		roleNum[role] = count
		roles = append(roles, role)
	}
	sort.Strings(roles)

	matches := make([]Match, len(doc.PatternOfMatches))
	copy(matches, doc.PatternOfMatches)

	return &Store{
		teams:   teams,
		roleNum: roleNum,
		roles:   roles,
		matches: matches,
	}, nil
}

// Parse decodes a pattern JSON document and builds a Store.
func Parse(data []byte) (*Store, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode pattern document: %w", err)
	}
	return NewStore(doc)
}

// Load reads a pattern_of_matches.json file from disk.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}
	store, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// SaveDocument writes a pattern document as indented JSON, creating parent
// directories as needed.
func SaveDocument(path string, doc Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create pattern directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode pattern document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write pattern file: %w", err)
	}
	return nil
}

// TeamCount returns the number of teams.
func (s *Store) TeamCount() int { return len(s.teams) }

// TeamName returns the name of the team with the given index.
func (s *Store) TeamName(idx int) string { return s.teams[idx] }

// Teams returns the team names in index order.
func (s *Store) Teams() []string {
	out := make([]string, len(s.teams))
	copy(out, s.teams)
	return out
}

// Roles returns the declared role names in sorted order.
func (s *Store) Roles() []string {
	out := make([]string, len(s.roles))
	copy(out, s.roles)
	return out
}

// ExpectedCount returns the declared expected occurrence count for a role,
// or 0 for roles outside the declared set.
func (s *Store) ExpectedCount(role string) int { return s.roleNum[role] }

// MatchCount returns the number of matches in the corpus.
func (s *Store) MatchCount() int { return len(s.matches) }

// Match returns the role assignments of the match at idx. Callers must treat
// the returned payload as read-only.
func (s *Store) Match(idx int) Match { return s.matches[idx] }

// Document rebuilds the JSON document form, used to echo the original
// mappings alongside optimization results.
func (s *Store) Document() Document {
	idxTeam := make(map[string]string, len(s.teams))
	for i, name := range s.teams {
		idxTeam[strconv.Itoa(i)] = name
	}
	roleNum := make(map[string]int, len(s.roleNum))
	for role, count := range s.roleNum {
		roleNum[role] = count
	}
	matches := make([]Match, len(s.matches))
	copy(matches, s.matches)
	return Document{
		IdxTeamMap:       idxTeam,
		RoleNumMap:       roleNum,
		PatternOfMatches: matches,
	}
}
