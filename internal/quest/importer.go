package quest

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	// MySQL driver, registered for database/sql.
	_ "github.com/go-sql-driver/mysql"
)

// ImportOptions narrows the importer's query.
type ImportOptions struct {
	// QuestID imports a single quest when > 0.
	QuestID int
	// MinLevel / MaxLevel bound the quest level range when > 0.
	MinLevel int
	MaxLevel int
	// Zone filters by the world database zone id (QuestSortID) when > 0.
	Zone int
	// MainStoryOnly keeps only storyline quests: rows with a negative
	// QuestSortID, which groups quests by sort (class campaign, legendary
	// chains) instead of by zone.
	MainStoryOnly bool
	// Limit caps the number of rows when > 0.
	Limit int
}

// Importer reads quest text from a game-server world database
// (quest_template on AzerothCore/TrinityCore style servers).
type Importer struct {
	db *sql.DB
}

// Open connects to the world database. dsn is a go-sql-driver DSN such as
// "user:pass@tcp(localhost:3306)/acore_world".
func Open(dsn string) (*Importer, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening world database: %w", err)
	}
	return &Importer{db: db}, nil
}

// Ping verifies the connection.
func (im *Importer) Ping(ctx context.Context) error {
	return im.db.PingContext(ctx)
}

// buildQuery assembles the parameterized quest_template query for opts.
func buildQuery(opts ImportOptions) (string, []any) {
	query := `
		SELECT ID, LogTitle, QuestDescription, LogDescription, QuestCompletionLog, QuestLevel, QuestSortID
		FROM quest_template
		WHERE LogTitle <> ''`
	args := []any{}

	if opts.QuestID > 0 {
		query += " AND ID = ?"
		args = append(args, opts.QuestID)
	}
	if opts.MinLevel > 0 {
		query += " AND QuestLevel >= ?"
		args = append(args, opts.MinLevel)
	}
	if opts.MaxLevel > 0 {
		query += " AND QuestLevel <= ?"
		args = append(args, opts.MaxLevel)
	}
	if opts.Zone > 0 {
		query += " AND QuestSortID = ?"
		args = append(args, opts.Zone)
	}
	if opts.MainStoryOnly {
		query += " AND QuestSortID < 0"
	}
	query += " ORDER BY ID"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	return query, args
}

// Import runs the quest query and returns the mapped quests.
func (im *Importer) Import(ctx context.Context, opts ImportOptions) ([]Quest, error) {
	query, args := buildQuery(opts)
	rows, err := im.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying quest_template: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var quests []Quest
	for rows.Next() {
		var q Quest
		var description, objectives, completion sql.NullString
		var level, sortID int
		if err := rows.Scan(&q.ID, &q.Title, &description, &objectives, &completion, &level, &sortID); err != nil {
			return nil, fmt.Errorf("scanning quest row: %w", err)
		}
		q.Description = description.String
		q.Objectives = objectives.String
		q.Completion = completion.String
		mapSort(&q, sortID)
		quests = append(quests, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quest rows: %w", err)
	}
	return quests, nil
}

// mapSort fills Zone and MainStory from QuestSortID: positive values are
// zone ids (zone names live in the client's AreaTable, so the id is
// carried as-is), negative values mark sort-grouped storyline quests.
func mapSort(q *Quest, sortID int) {
	switch {
	case sortID > 0:
		q.Zone = strconv.Itoa(sortID)
	case sortID < 0:
		q.MainStory = true
	}
}

// Close releases the database connection pool.
func (im *Importer) Close() error {
	return im.db.Close()
}
