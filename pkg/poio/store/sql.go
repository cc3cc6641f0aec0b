package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/cognicore/poio/pkg/poio/internalerr"
)

// Dialect holds what differs between the SQL backends.
type Dialect struct {
	Name string
	// Placeholder returns the bind parameter for the i-th argument (1-based).
	Placeholder func(i int) string
}

// Question is the "?" placeholder style (SQLite).
func Question(int) string { return "?" }

// Dollar is the "$n" placeholder style (PostgreSQL).
func Dollar(i int) string { return fmt.Sprintf("$%d", i) }

// TableName returns the table holding n-grams of the given size.
func TableName(size int) string {
	return fmt.Sprintf("_%d_gram", size)
}

// WordColumns returns the token columns of an n-gram table, oldest token
// first: word_<n-1>, …, word_1, word.
func WordColumns(size int) []string {
	cols := make([]string, size)
	for i := 0; i < size; i++ {
		back := size - 1 - i
		if back == 0 {
			cols[i] = "word"
		} else {
			cols[i] = fmt.Sprintf("word_%d", back)
		}
	}
	return cols
}

// CreateTableSQL returns the DDL for an n-gram table.
func CreateTableSQL(size int) string {
	cols := WordColumns(size)
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n\tlanguage TEXT NOT NULL,\n", TableName(size))
	for _, c := range cols {
		fmt.Fprintf(&b, "\t%s TEXT NOT NULL,\n", c)
	}
	fmt.Fprintf(&b, "\tcount BIGINT NOT NULL,\n\tPRIMARY KEY(language, %s)\n);", strings.Join(cols, ", "))
	return b.String()
}

// CreateRunsSQL returns the DDL for the run log table.
const CreateRunsSQL = `
CREATE TABLE IF NOT EXISTS ngram_runs (
	id TEXT PRIMARY KEY,
	language TEXT NOT NULL,
	ngram_size INTEGER NOT NULL,
	row_count BIGINT NOT NULL,
	appended BOOLEAN NOT NULL,
	created_at TEXT NOT NULL
);`

// InsertSQL returns the upsert statement for an n-gram row. With add, an
// existing count is increased instead of overwritten.
func InsertSQL(d Dialect, size int, add bool) string {
	cols := append([]string{"language"}, WordColumns(size)...)
	cols = append(cols, "count")
	params := make([]string, len(cols))
	for i := range params {
		params[i] = d.Placeholder(i + 1)
	}
	update := "count = excluded.count"
	if add {
		update = fmt.Sprintf("count = %s.count + excluded.count", TableName(size))
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(language, %s) DO UPDATE SET %s",
		TableName(size),
		strings.Join(cols, ", "),
		strings.Join(params, ", "),
		strings.Join(WordColumns(size), ", "),
		update,
	)
}

// DeleteLanguageSQL returns the statement removing a language's rows.
func DeleteLanguageSQL(d Dialect, size int) string {
	return fmt.Sprintf("DELETE FROM %s WHERE language = %s", TableName(size), d.Placeholder(1))
}

// CreateIndexSQL returns the DDL of the lookup index. The index covers the
// history columns so that predictions can look up continuations.
func CreateIndexSQL(size int) string {
	cols := WordColumns(size)
	lookup := cols
	if size > 1 {
		lookup = cols[:size-1]
	}
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx%s_lookup ON %s (language, %s)",
		TableName(size), TableName(size), strings.Join(lookup, ", "),
	)
}

func insertRunSQL(d Dialect) string {
	params := make([]string, 6)
	for i := range params {
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf(
		"INSERT INTO ngram_runs (id, language, ngram_size, row_count, appended, created_at) VALUES (%s)",
		strings.Join(params, ", "),
	)
}

// WriteNgrams writes rows into db inside one transaction and records the run.
func WriteNgrams(ctx context.Context, db *sql.DB, d Dialect, ids *IDGenerator, opts Options, meta Meta, rows iter.Seq2[[]string, uint64]) (RunInfo, error) {
	if err := meta.Validate(); err != nil {
		return RunInfo{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return RunInfo{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, CreateTableSQL(meta.Size)); err != nil {
		return RunInfo{}, fmt.Errorf("create %s: %w", TableName(meta.Size), err)
	}
	if _, err := tx.ExecContext(ctx, CreateRunsSQL); err != nil {
		return RunInfo{}, fmt.Errorf("create ngram_runs: %w", err)
	}
	if !opts.Append {
		if _, err := tx.ExecContext(ctx, DeleteLanguageSQL(d, meta.Size), meta.Language); err != nil {
			return RunInfo{}, fmt.Errorf("clear %s rows: %w", meta.Language, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, InsertSQL(d, meta.Size, opts.Append))
	if err != nil {
		return RunInfo{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, meta.Size+2)
	n := 0
	for tokens, count := range rows {
		if err := CheckRow(meta, tokens); err != nil {
			return RunInfo{}, err
		}
		args[0] = meta.Language
		for i, tok := range tokens {
			args[i+1] = tok
		}
		args[meta.Size+1] = int64(count)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return RunInfo{}, fmt.Errorf("insert ngram %q: %w", tokens, err)
		}
		n++
	}

	if opts.CreateIndex {
		if _, err := tx.ExecContext(ctx, CreateIndexSQL(meta.Size)); err != nil {
			return RunInfo{}, fmt.Errorf("create index: %w", err)
		}
	}

	now := time.Now().UTC()
	info := RunInfo{
		ID:        ids.New(now),
		Language:  meta.Language,
		Size:      meta.Size,
		Rows:      n,
		CreatedAt: now,
	}
	if _, err := tx.ExecContext(ctx, insertRunSQL(d),
		info.ID, info.Language, info.Size, info.Rows, opts.Append, now.Format(time.RFC3339Nano),
	); err != nil {
		return RunInfo{}, fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return RunInfo{}, fmt.Errorf("commit: %w", err)
	}
	return info, nil
}

// CountNgram returns the stored count of one n-gram, or 0 when absent.
func CountNgram(ctx context.Context, db *sql.DB, d Dialect, language string, tokens ...string) (uint64, error) {
	size := len(tokens)
	if size == 0 {
		return 0, fmt.Errorf("%w: no tokens", internalerr.ErrInvalidInput)
	}
	cols := WordColumns(size)
	where := make([]string, 0, size+1)
	args := make([]any, 0, size+1)
	where = append(where, "language = "+d.Placeholder(1))
	args = append(args, language)
	for i, c := range cols {
		where = append(where, fmt.Sprintf("%s = %s", c, d.Placeholder(i+2)))
		args = append(args, tokens[i])
	}
	query := fmt.Sprintf("SELECT count FROM %s WHERE %s", TableName(size), strings.Join(where, " AND "))

	var n int64
	err := db.QueryRowContext(ctx, query, args...).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", tokens, err)
	}
	return uint64(n), nil
}

// ListRuns returns the recorded runs, oldest first.
func ListRuns(ctx context.Context, db *sql.DB) ([]RunInfo, error) {
	if _, err := db.ExecContext(ctx, CreateRunsSQL); err != nil {
		return nil, fmt.Errorf("create ngram_runs: %w", err)
	}
	rows, err := db.QueryContext(ctx,
		"SELECT id, language, ngram_size, row_count, created_at FROM ngram_runs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			r       RunInfo
			created string
		)
		if err := rows.Scan(&r.ID, &r.Language, &r.Size, &r.Rows, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse run time %q: %w", created, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
