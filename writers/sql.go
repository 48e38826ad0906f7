//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of RaceClean.
//
// RaceClean is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RaceClean is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RaceClean. If not, see https://www.gnu.org/licenses/.

package writers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aaronlmathis/raceclean/core"
)

// This file holds the relational sink shared by the PostgreSQL and SQLite writers.
// A dialect supplies the driver name, column type names and value conversion;
// batching, table (re)creation and statistics live here.

// ColumnType is the portable type of a table column.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnInteger
	ColumnReal
	ColumnTimestamp
	ColumnBoolean
)

func (c ColumnType) String() string {
	switch c {
	case ColumnInteger:
		return "integer"
	case ColumnReal:
		return "real"
	case ColumnTimestamp:
		return "timestamp"
	case ColumnBoolean:
		return "boolean"
	default:
		return "text"
	}
}

// TableMode controls what happens to an existing target table.
type TableMode int

const (
	// TableReplace drops the table if it exists and recreates it.
	TableReplace TableMode = iota
	// TableAppend creates the table if it does not exist and appends rows.
	TableAppend
	// TableTruncate creates the table if needed and empties it before writing.
	TableTruncate
)

// ParseTableMode maps "replace", "append" and "truncate" to a TableMode. Unknown values mean replace.
func ParseTableMode(s string) TableMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "append":
		return TableAppend
	case "truncate":
		return TableTruncate
	default:
		return TableReplace
	}
}

// SQLWriterStats holds relational write performance statistics.
type SQLWriterStats struct {
	RecordsWritten   int64            // Total records written
	BatchesWritten   int64            // Number of batches written
	TransactionCount int64            // Number of transactions committed
	LastWriteTime    time.Time        // Time of last write
	WriteDuration    time.Duration    // Total time spent writing
	ConnectionTime   time.Duration    // Time spent establishing connection
	NullValueCounts  map[string]int64 // Count of null values per column
}

// SQLWriterOptions configures the PostgreSQL and SQLite writers.
type SQLWriterOptions struct {
	DSN             string                // Connection string, or the database file path for SQLite
	TableName       string                // Target table name, optionally schema qualified
	Columns         []string              // Columns to write (order matters)
	ColumnTypes     map[string]ColumnType // Declared column types; missing entries are inferred from the first record
	BatchSize       int                   // Number of records per batch
	Mode            TableMode             // Handling of an existing table
	TransactionMode bool                  // Wrap batches in transactions
	ConnMaxLifetime time.Duration         // Max connection lifetime
	MaxOpenConns    int                   // Max open connections
	QueryTimeout    time.Duration         // Timeout for queries
}

// WriterOptionSQL represents a configuration function for SQLWriterOptions.
type WriterOptionSQL func(*SQLWriterOptions)

// WithDSN sets the connection string (PostgreSQL) or database path (SQLite).
func WithDSN(dsn string) WriterOptionSQL {
	return func(opts *SQLWriterOptions) {
		opts.DSN = dsn
	}
}

// WithTableName sets the target table name.
func WithTableName(tableName string) WriterOptionSQL {
	return func(opts *SQLWriterOptions) {
		opts.TableName = tableName
	}
}

// WithColumns sets the columns to write.
func WithColumns(columns []string) WriterOptionSQL {
	return func(opts *SQLWriterOptions) {
		opts.Columns = append([]string(nil), columns...)
	}
}

// WithColumnTypes declares column types instead of inferring them from the first record.
func WithColumnTypes(types map[string]ColumnType) WriterOptionSQL {
	return func(opts *SQLWriterOptions) {
		opts.ColumnTypes = make(map[string]ColumnType, len(types))
		for k, v := range types {
			opts.ColumnTypes[k] = v
		}
	}
}

// WithSQLBatchSize sets the batch size for writes.
func WithSQLBatchSize(size int) WriterOptionSQL {
	return func(opts *SQLWriterOptions) {
		opts.BatchSize = size
	}
}

// WithTableMode sets how an existing table is handled.
func WithTableMode(mode TableMode) WriterOptionSQL {
	return func(opts *SQLWriterOptions) {
		opts.Mode = mode
	}
}

// WithTransactionMode enables or disables transaction wrapping for batches.
func WithTransactionMode(enabled bool) WriterOptionSQL {
	return func(opts *SQLWriterOptions) {
		opts.TransactionMode = enabled
	}
}

// WithConnectionPool configures the connection pool.
func WithConnectionPool(maxOpen int, maxLifetime time.Duration) WriterOptionSQL {
	return func(opts *SQLWriterOptions) {
		opts.MaxOpenConns = maxOpen
		opts.ConnMaxLifetime = maxLifetime
	}
}

// WithQueryTimeout sets the query timeout.
func WithQueryTimeout(timeout time.Duration) WriterOptionSQL {
	return func(opts *SQLWriterOptions) {
		opts.QueryTimeout = timeout
	}
}

// withDefaults applies default values to SQLWriterOptions.
func (opts *SQLWriterOptions) withDefaults() *SQLWriterOptions {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1000
	}
	if opts.QueryTimeout == 0 {
		opts.QueryTimeout = 30 * time.Second
	}
	if opts.ConnMaxLifetime == 0 {
		opts.ConnMaxLifetime = 5 * time.Minute
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	return opts
}

func (opts *SQLWriterOptions) validate() error {
	if opts.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	if opts.TableName == "" {
		return fmt.Errorf("table name is required")
	}
	return nil
}

// InferColumnTypes picks a column type per column from the first present value in t.
// Columns with no present value are text.
func InferColumnTypes(t *core.Table) map[string]ColumnType {
	types := make(map[string]ColumnType, len(t.Columns))
	for _, col := range t.Columns {
		types[col] = ColumnText
		for _, r := range t.Rows {
			if v := r[col]; !core.IsMissing(v) {
				types[col] = columnTypeOf(v)
				break
			}
		}
	}
	return types
}

func columnTypeOf(value interface{}) ColumnType {
	switch value.(type) {
	case bool:
		return ColumnBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return ColumnInteger
	case float32, float64:
		return ColumnReal
	case time.Time:
		return ColumnTimestamp
	default:
		return ColumnText
	}
}

// quoteIdent double-quotes an identifier, so names like "GRAND PRIX" are valid.
// Dotted names are quoted per part.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// dialect captures what differs between the relational backends.
type dialect struct {
	driver   string
	types    map[ColumnType]string
	value    func(v interface{}) interface{}
	newError func(op string, err error) error
}

// sqlWriter implements core.DataSink for a relational table.
type sqlWriter struct {
	db          *sqlx.DB
	dialect     dialect
	options     SQLWriterOptions
	columns     []string
	recordBuf   []core.Record
	stats       SQLWriterStats
	prepared    *sqlx.Stmt
	initialized bool
	errorState  bool
	mu          sync.Mutex
}

func newSQLWriter(d dialect, opts []WriterOptionSQL) (*sqlWriter, error) {
	options := &SQLWriterOptions{}
	for _, opt := range opts {
		opt(options)
	}
	options = options.withDefaults()

	if err := options.validate(); err != nil {
		return nil, d.newError("validate", err)
	}

	w := &sqlWriter{
		dialect:   d,
		options:   *options,
		columns:   append([]string(nil), options.Columns...),
		recordBuf: make([]core.Record, 0, options.BatchSize),
		stats:     SQLWriterStats{NullValueCounts: make(map[string]int64)},
	}

	if err := w.connect(); err != nil {
		return nil, d.newError("connect", err)
	}
	return w, nil
}

// connect establishes the database connection and configures the connection pool.
func (w *sqlWriter) connect() error {
	start := time.Now()

	db, err := sqlx.Open(w.dialect.driver, w.options.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(w.options.MaxOpenConns)
	db.SetConnMaxLifetime(w.options.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), w.options.QueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	w.db = db
	w.stats.ConnectionTime = time.Since(start)
	return nil
}

// Write implements the core.DataSink interface.
// Buffers records and writes in batches. Thread-safe.
func (w *sqlWriter) Write(ctx context.Context, record core.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.errorState {
		return w.dialect.newError("write", fmt.Errorf("writer is in error state"))
	}

	if !w.initialized {
		if err := w.initializeUnsafe(ctx, record); err != nil {
			w.errorState = true
			return w.dialect.newError("initialize", err)
		}
	}

	for k, v := range record {
		if core.IsMissing(v) {
			w.stats.NullValueCounts[k]++
		}
	}

	w.recordBuf = append(w.recordBuf, record)
	w.stats.RecordsWritten++

	if len(w.recordBuf) >= w.options.BatchSize {
		if err := w.flushBufferUnsafe(ctx); err != nil {
			w.errorState = true
			return w.dialect.newError("flush_batch", err)
		}
	}

	return nil
}

// Flush implements the core.DataSink interface.
// A writer with declared columns that never saw a record still creates its table.
func (w *sqlWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), w.options.QueryTimeout)
	defer cancel()

	if !w.initialized && len(w.columns) > 0 && !w.errorState {
		if err := w.initializeUnsafe(ctx, core.Record{}); err != nil {
			w.errorState = true
			return w.dialect.newError("initialize", err)
		}
	}

	if err := w.flushBufferUnsafe(ctx); err != nil {
		return w.dialect.newError("flush", err)
	}
	return nil
}

// Close implements the core.DataSink interface.
// Flushes and closes all resources.
func (w *sqlWriter) Close() error {
	flushErr := w.Flush()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.prepared != nil {
		w.prepared.Close()
	}
	if w.db != nil {
		if err := w.db.Close(); err != nil && flushErr == nil {
			return w.dialect.newError("close", err)
		}
	}
	return flushErr
}

// Stats returns a copy of the current write statistics.
func (w *sqlWriter) Stats() SQLWriterStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	statsCopy := w.stats
	statsCopy.NullValueCounts = make(map[string]int64, len(w.stats.NullValueCounts))
	for k, v := range w.stats.NullValueCounts {
		statsCopy.NullValueCounts[k] = v
	}
	return statsCopy
}

// initializeUnsafe prepares the table and insert statement (must hold mutex).
func (w *sqlWriter) initializeUnsafe(ctx context.Context, firstRecord core.Record) error {
	if len(w.columns) == 0 {
		for key := range firstRecord {
			w.columns = append(w.columns, key)
		}
		sort.Strings(w.columns)
	}

	for _, stmt := range w.setupStatements(firstRecord) {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare table: %w", err)
		}
	}

	stmt, err := w.db.PreparexContext(ctx, w.insertStatement())
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	w.prepared = stmt
	w.initialized = true
	return nil
}

// setupStatements returns the DDL run before the first insert.
func (w *sqlWriter) setupStatements(firstRecord core.Record) []string {
	table := quoteIdent(w.options.TableName)
	create := w.createStatement(firstRecord)

	switch w.options.Mode {
	case TableAppend:
		return []string{create}
	case TableTruncate:
		return []string{create, "DELETE FROM " + table}
	default:
		return []string{"DROP TABLE IF EXISTS " + table, create}
	}
}

func (w *sqlWriter) createStatement(firstRecord core.Record) string {
	defs := make([]string, len(w.columns))
	for i, col := range w.columns {
		colType, ok := w.options.ColumnTypes[col]
		if !ok {
			colType = ColumnText
			if v := firstRecord[col]; !core.IsMissing(v) {
				colType = columnTypeOf(v)
			}
		}
		defs[i] = quoteIdent(col) + " " + w.dialect.types[colType]
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(w.options.TableName), strings.Join(defs, ", "))
}

// insertStatement builds the INSERT with "?" bindvars rebound to the driver's style.
func (w *sqlWriter) insertStatement() string {
	quoted := make([]string, len(w.columns))
	for i, col := range w.columns {
		quoted[i] = quoteIdent(col)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(w.columns)), ", ")

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(w.options.TableName), strings.Join(quoted, ", "), placeholders)
	return sqlx.Rebind(sqlx.BindType(w.dialect.driver), query)
}

// flushBufferUnsafe writes buffered records (must hold mutex).
func (w *sqlWriter) flushBufferUnsafe(ctx context.Context) (err error) {
	if len(w.recordBuf) == 0 {
		return nil
	}

	start := time.Now()

	stmt := w.prepared
	var tx *sqlx.Tx
	if w.options.TransactionMode {
		tx, err = w.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() {
			if err != nil {
				tx.Rollback()
			}
		}()
		stmt = tx.StmtxContext(ctx, w.prepared)
		defer stmt.Close()
	}

	for _, record := range w.recordBuf {
		values := make([]interface{}, len(w.columns))
		for i, col := range w.columns {
			values[i] = w.convertValue(record[col])
		}
		if _, err = stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("failed to execute insert: %w", err)
		}
	}

	if tx != nil {
		if err = tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		w.stats.TransactionCount++
	}

	w.stats.BatchesWritten++
	w.stats.LastWriteTime = time.Now()
	w.stats.WriteDuration += time.Since(start)
	w.recordBuf = w.recordBuf[:0]

	return nil
}

// convertValue maps record values to driver arguments. Missing values become NULL.
func (w *sqlWriter) convertValue(value interface{}) interface{} {
	if core.IsMissing(value) {
		return nil
	}
	switch v := value.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	case string, int64, float64, bool, time.Time, []byte:
		return w.dialect.value(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
