// Package skillindex answers skill-filter queries over a normalized graph.
//
// The index is an ephemeral in-memory SQLite database rebuilt from the graph on
// every load. It is never written to disk.
package skillindex

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/matsen/flowline/internal/graph"
	_ "modernc.org/sqlite"
)

// Index wraps the in-memory SQLite connection.
type Index struct {
	db *sql.DB
}

// SkillCount is a skill and the number of projects listing it.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// Open creates an empty in-memory index.
func Open() (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening skill index: %w", err)
	}

	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Build opens an index and fills it from g.
func Build(g *graph.Graph) (*Index, error) {
	idx, err := Open()
	if err != nil {
		return nil, err
	}
	if err := idx.Rebuild(g); err != nil {
		idx.Close()
		return nil, err
	}
	return idx, nil
}

// Close closes the database connection.
func (x *Index) Close() error {
	return x.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS node_skills (
			node_id TEXT NOT NULL REFERENCES nodes(id),
			skill TEXT NOT NULL,
			PRIMARY KEY (node_id, skill)
		);

		CREATE INDEX IF NOT EXISTS idx_node_skills_skill ON node_skills(skill);
	`
	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the index and reloads it from g inside one transaction.
func (x *Index) Rebuild(g *graph.Graph) error {
	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM node_skills"); err != nil {
		return fmt.Errorf("clearing node_skills: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM nodes"); err != nil {
		return fmt.Errorf("clearing nodes: %w", err)
	}

	if g != nil {
		nodeStmt, err := tx.Prepare("INSERT INTO nodes (id, position) VALUES (?, ?)")
		if err != nil {
			return fmt.Errorf("preparing node insert: %w", err)
		}
		defer nodeStmt.Close()

		skillStmt, err := tx.Prepare("INSERT OR IGNORE INTO node_skills (node_id, skill) VALUES (?, ?)")
		if err != nil {
			return fmt.Errorf("preparing skill insert: %w", err)
		}
		defer skillStmt.Close()

		for _, n := range g.Nodes {
			if _, err := nodeStmt.Exec(n.ID, n.Index); err != nil {
				return fmt.Errorf("inserting node %s: %w", n.ID, err)
			}
			for _, s := range n.Skills {
				if _, err := skillStmt.Exec(n.ID, s); err != nil {
					return fmt.Errorf("inserting skill %q for %s: %w", s, n.ID, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rebuild: %w", err)
	}
	return nil
}

// Skills returns every skill with its project count, most common first, ties by name.
func (x *Index) Skills() ([]SkillCount, error) {
	rows, err := x.db.Query(`
		SELECT skill, COUNT(*) AS n
		FROM node_skills
		GROUP BY skill
		ORDER BY n DESC, skill ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying skills: %w", err)
	}
	defer rows.Close()

	var out []SkillCount
	for rows.Next() {
		var sc SkillCount
		if err := rows.Scan(&sc.Skill, &sc.Count); err != nil {
			return nil, fmt.Errorf("scanning skill: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// NodesWithAny returns ids of nodes listing at least one of skills, in input order.
// An empty skill list matches every node.
func (x *Index) NodesWithAny(skills []string) ([]string, error) {
	if len(skills) == 0 {
		return x.allNodes()
	}
	query := `
		SELECT n.id FROM nodes n
		WHERE EXISTS (
			SELECT 1 FROM node_skills s
			WHERE s.node_id = n.id AND s.skill IN (` + placeholders(len(skills)) + `)
		)
		ORDER BY n.position`
	return x.queryIDs(query, toArgs(skills)...)
}

// NodesWithAll returns ids of nodes listing every one of skills, in input order.
// An empty skill list matches every node.
func (x *Index) NodesWithAll(skills []string) ([]string, error) {
	skills = dedupe(skills)
	if len(skills) == 0 {
		return x.allNodes()
	}
	query := `
		SELECT n.id FROM nodes n
		JOIN node_skills s ON s.node_id = n.id
		WHERE s.skill IN (` + placeholders(len(skills)) + `)
		GROUP BY n.id, n.position
		HAVING COUNT(DISTINCT s.skill) = ?
		ORDER BY n.position`
	args := append(toArgs(skills), len(skills))
	return x.queryIDs(query, args...)
}

func (x *Index) allNodes() ([]string, error) {
	return x.queryIDs("SELECT id FROM nodes ORDER BY position")
}

func (x *Index) queryIDs(query string, args ...any) ([]string, error) {
	rows, err := x.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning node id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}

func dedupe(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
