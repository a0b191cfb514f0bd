package v1

import (
	"database/sql"
	"fmt"
	"strings"
)

// Field represents a database column.
type Field struct {
	Name string
	Type string
}

// Index represents a database index (simple list of columns).
type Index struct {
	Columns []string
}

// DBClient is a SQL probe for test stages. Like RedisClient, its operations
// return errors so a stage can route engine failures (SQLITE_FULL,
// ORA-04031) through the tolerance filter instead of failing outright.
// Driver-specific SQL is selected by DriverName.
type DBClient struct {
	DB         *sql.DB
	DriverName string
}

// Connect connects to the database.
// Driver should be imported in the main application.
func Connect(driverName, dataSourceName string) (*DBClient, error) {
	RecordAction(fmt.Sprintf("DB Connect: %s", driverName), func() { Connect(driverName, dataSourceName) })
	if IsDryRun() {
		return &DBClient{DriverName: driverName}, nil
	}
	Logf(LogTypeDB, "Connecting to %s", driverName)
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}
	Log(LogTypeDB, "Connected successfully", "")
	return &DBClient{DB: db, DriverName: driverName}, nil
}

// MustConnect connects and fails the stage on error.
func MustConnect(driverName, dataSourceName string) *DBClient {
	c, err := Connect(driverName, dataSourceName)
	if err != nil {
		FailErr(err, "Failed to connect to DB")
	}
	return c
}

// SetupTable creates a table (dropping it first when isReplace is set) and
// its indexes.
func (c *DBClient) SetupTable(tableName string, isReplace bool, fields []Field, indexes []Index) error {
	RecordAction(fmt.Sprintf("DB SetupTable: %s", tableName), func() { c.SetupTable(tableName, isReplace, fields, indexes) })
	if IsDryRun() {
		return nil
	}
	if c.DB == nil {
		return fmt.Errorf("db client is not connected")
	}
	Logf(LogTypeDB, "Setting up table '%s' (Replace=%v)", tableName, isReplace)
	if isReplace {
		if err := c.DropTable(tableName); err != nil {
			return err
		}
	}

	var fieldDefs []string
	for _, f := range fields {
		fieldDefs = append(fieldDefs, fmt.Sprintf("%s %s", f.Name, f.Type))
	}

	var query string
	if c.DriverName == "oracle" {
		query = fmt.Sprintf("CREATE TABLE %s (%s)", tableName, strings.Join(fieldDefs, ", "))
	} else {
		query = fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(fieldDefs, ", "))
	}

	if _, err := c.DB.Exec(query); err != nil {
		// Oracle has no IF NOT EXISTS; ORA-00955 (name already used) mimics it.
		if !(c.DriverName == "oracle" && strings.Contains(err.Error(), "ORA-00955")) {
			return fmt.Errorf("create table %s: %w", tableName, err)
		}
	}

	for i, idx := range indexes {
		idxName := fmt.Sprintf("idx_%s_%d", tableName, i)
		var idxQuery string
		if c.DriverName == "oracle" {
			idxQuery = fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idxName, tableName, strings.Join(idx.Columns, ", "))
		} else {
			idxQuery = fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", idxName, tableName, strings.Join(idx.Columns, ", "))
		}
		if _, err := c.DB.Exec(idxQuery); err != nil {
			if !(c.DriverName == "oracle" && strings.Contains(err.Error(), "ORA-00955")) {
				return fmt.Errorf("create index on %s: %w", tableName, err)
			}
		}
	}
	return nil
}

// DropTable drops a table.
func (c *DBClient) DropTable(tableName string) error {
	RecordAction(fmt.Sprintf("DB DropTable: %s", tableName), func() { c.DropTable(tableName) })
	if IsDryRun() {
		return nil
	}
	if c.DB == nil {
		return fmt.Errorf("db client is not connected")
	}
	Logf(LogTypeDB, "Dropping table '%s'", tableName)

	var query string
	if c.DriverName == "oracle" {
		// Oracle 11g/12c does not support DROP TABLE IF EXISTS.
		// Use PL/SQL block to ignore ORA-00942 (table does not exist).
		query = fmt.Sprintf(`BEGIN
			EXECUTE IMMEDIATE 'DROP TABLE %s PURGE';
			EXCEPTION WHEN OTHERS THEN
				IF SQLCODE != -942 THEN RAISE; END IF;
			END;`, tableName)
	} else {
		query = fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)
	}

	if _, err := c.DB.Exec(query); err != nil {
		return fmt.Errorf("drop table %s: %w", tableName, err)
	}
	return nil
}

// CleanTable deletes all data from a table.
func (c *DBClient) CleanTable(tableName string) error {
	RecordAction(fmt.Sprintf("DB CleanTable: %s", tableName), func() { c.CleanTable(tableName) })
	if IsDryRun() {
		return nil
	}
	if c.DB == nil {
		return fmt.Errorf("db client is not connected")
	}
	Logf(LogTypeDB, "Cleaning table '%s'", tableName)
	if _, err := c.DB.Exec(fmt.Sprintf("DELETE FROM %s", tableName)); err != nil {
		return fmt.Errorf("clean table %s: %w", tableName, err)
	}
	return nil
}

// DeleteOne deletes a single row matching the where clause.
func (c *DBClient) DeleteOne(tableName string, where string, args ...interface{}) error {
	RecordAction(fmt.Sprintf("DB DeleteOne: %s", tableName), func() { c.DeleteOne(tableName, where, args...) })
	if IsDryRun() {
		return nil
	}
	return c.deleteWithLimit(tableName, where, 1, args...)
}

// DeleteWithLimit deletes up to `limit` rows matching the where clause.
// If limit <= 0, it deletes all rows matching the condition.
func (c *DBClient) DeleteWithLimit(tableName string, where string, limit int, args ...interface{}) error {
	RecordAction(fmt.Sprintf("DB DeleteWithLimit: %s", tableName), func() { c.DeleteWithLimit(tableName, where, limit, args...) })
	if IsDryRun() {
		return nil
	}
	return c.deleteWithLimit(tableName, where, limit, args...)
}

func (c *DBClient) deleteWithLimit(tableName string, where string, limit int, args ...interface{}) error {
	if c.DB == nil {
		return fmt.Errorf("db client is not connected")
	}
	if strings.TrimSpace(where) == "" {
		return fmt.Errorf("delete on %s requires a WHERE clause to prevent full-table deletes", tableName)
	}

	finalWhere := c.bindPlaceholders(where, 1)

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", tableName, finalWhere)
	if limit > 0 {
		switch c.DriverName {
		case "oracle":
			query = fmt.Sprintf("DELETE FROM %s WHERE (%s) AND ROWNUM <= %d", tableName, finalWhere, limit)
		case "postgres", "postgresql":
			// Postgres has no DELETE ... LIMIT; use CTE
			query = fmt.Sprintf("WITH cte AS (SELECT ctid FROM %s WHERE %s LIMIT %d) DELETE FROM %s WHERE ctid IN (SELECT ctid FROM cte)", tableName, finalWhere, limit, tableName)
		case "sqlite3":
			// Some SQLite builds don't accept DELETE ... LIMIT; use rowid subquery
			query = fmt.Sprintf("DELETE FROM %s WHERE rowid IN (SELECT rowid FROM %s WHERE %s LIMIT %d)", tableName, tableName, finalWhere, limit)
		default:
			// MySQL supports LIMIT in DELETE
			query = fmt.Sprintf("DELETE FROM %s WHERE %s LIMIT %d", tableName, finalWhere, limit)
		}
	}

	Log(LogTypeDB, "Delete Rows", fmt.Sprintf("Query: %s\nArgs: %v", query, args))
	if _, err := c.DB.Exec(query, args...); err != nil {
		return fmt.Errorf("delete from %s: %w", tableName, err)
	}
	return nil
}

// bindPlaceholders rewrites ? placeholders to the driver's native style,
// numbering from start. Only oracle needs rewriting today.
func (c *DBClient) bindPlaceholders(clause string, start int) string {
	if c.DriverName != "oracle" {
		return clause
	}
	out := clause
	n := strings.Count(clause, "?")
	for i := 0; i < n; i++ {
		out = strings.Replace(out, "?", fmt.Sprintf(":%d", start+i), 1)
	}
	return out
}

// ReplaceData inserts a row. Values must match the table's column order.
func (c *DBClient) ReplaceData(tableName string, values []interface{}) error {
	RecordAction(fmt.Sprintf("DB ReplaceData: %s", tableName), func() { c.ReplaceData(tableName, values) })
	if IsDryRun() {
		return nil
	}
	if c.DB == nil {
		return fmt.Errorf("db client is not connected")
	}
	Log(LogTypeDB, fmt.Sprintf("Replacing data in '%s'", tableName), fmt.Sprintf("%v", values))
	placeholders := make([]string, len(values))
	for i := range values {
		if c.DriverName == "oracle" {
			placeholders[i] = fmt.Sprintf(":%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}

	query := fmt.Sprintf("INSERT INTO %s VALUES (%s)", tableName, strings.Join(placeholders, ", "))
	if _, err := c.DB.Exec(query, values...); err != nil {
		return fmt.Errorf("insert into %s: %w", tableName, err)
	}
	return nil
}

// FillRows inserts count rows of (seq, payload) into tableName, which must
// have an integer column followed by a text column. It drives a bounded
// database (size-capped file, small tablespace) toward exhaustion so a
// stage can exercise the tolerance filter; the first engine refusal is
// returned for classification.
func (c *DBClient) FillRows(tableName string, count, payloadSize int) error {
	RecordAction(fmt.Sprintf("DB FillRows: %s x%d", tableName, count), func() { c.FillRows(tableName, count, payloadSize) })
	if IsDryRun() {
		return nil
	}
	if c.DB == nil {
		return fmt.Errorf("db client is not connected")
	}
	Log(LogTypeDB, "FillRows", fmt.Sprintf("table=%s count=%d size=%d", tableName, count, payloadSize))
	payload := strings.Repeat("x", payloadSize)
	for i := 0; i < count; i++ {
		if err := c.ReplaceData(tableName, []interface{}{i, payload}); err != nil {
			return fmt.Errorf("fill %s at row %d: %w", tableName, i, err)
		}
	}
	return nil
}

// --- Simplified Query/Update API ---

// QueryResult holds the results of a Fetch operation.
type QueryResult struct {
	Rows []RowResult
}

// RowResult represents a single row from the database.
type RowResult struct {
	Data map[string]interface{}
}

// Fetch executes a query and returns all results in an easy-to-use QueryResult object.
func (c *DBClient) Fetch(query string, args ...interface{}) (*QueryResult, error) {
	RecordAction("DB Fetch", func() { c.Fetch(query, args...) })
	if IsDryRun() {
		return &QueryResult{}, nil
	}
	if c.DB == nil {
		return nil, fmt.Errorf("db client is not connected")
	}

	finalQuery := c.bindPlaceholders(query, 1)
	Log(LogTypeDB, "Query Data", fmt.Sprintf("Query: %s\nArgs: %v", finalQuery, args))
	rows, err := c.DB.Query(finalQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var results []RowResult
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		rowData := make(map[string]interface{})
		for i, col := range columns {
			val := values[i]
			// Handle []byte as string for convenience, common in some drivers/types
			key := strings.ToLower(col)
			if b, ok := val.([]byte); ok {
				rowData[key] = string(b)
			} else {
				rowData[key] = val
			}
		}
		results = append(results, RowResult{Data: rowData})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &QueryResult{Rows: results}, nil
}

// MustFetch fetches and fails the stage on error.
func (c *DBClient) MustFetch(query string, args ...interface{}) *QueryResult {
	qr, err := c.Fetch(query, args...)
	if err != nil {
		FailErr(err, "Failed to fetch")
	}
	return qr
}

// Update performs a partial update on a table based on a condition.
// updates: map of column name -> new value
// where: condition string (e.g., "id = ?")
// args: arguments for the where clause
func (c *DBClient) Update(tableName string, updates map[string]interface{}, where string, args ...interface{}) error {
	RecordAction(fmt.Sprintf("DB Update: %s", tableName), func() { c.Update(tableName, updates, where, args...) })
	if IsDryRun() {
		return nil
	}
	if c.DB == nil {
		return fmt.Errorf("db client is not connected")
	}
	if len(updates) == 0 {
		return nil
	}

	var sets []string
	var values []interface{}
	argCounter := 1
	for col, val := range updates {
		ph := "?"
		if c.DriverName == "oracle" {
			ph = fmt.Sprintf(":%d", argCounter)
			argCounter++
		}
		sets = append(sets, fmt.Sprintf("%s = %s", col, ph))
		values = append(values, val)
	}

	finalWhere := c.bindPlaceholders(where, argCounter)
	values = append(values, args...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", tableName, strings.Join(sets, ", "), finalWhere)
	Log(LogTypeDB, "Update Table", fmt.Sprintf("Query: %s\nArgs: %v", query, values))
	if _, err := c.DB.Exec(query, values...); err != nil {
		return fmt.Errorf("update %s: %w", tableName, err)
	}
	return nil
}

// --- QueryResult Helpers ---

// GetRow returns the row at the specified index. Fails the stage if index is out of bounds.
func (qr *QueryResult) GetRow(index int) *RowResult {
	if index < 0 || index >= len(qr.Rows) {
		Fail("GetRow: index %d out of bounds (count: %d)", index, len(qr.Rows))
	}
	return &qr.Rows[index]
}

// Count returns the number of rows.
func (qr *QueryResult) Count() int {
	return len(qr.Rows)
}

// ExpectCount asserts that the number of rows matches the expected count.
func (qr *QueryResult) ExpectCount(expected int) {
	count := qr.Count()
	if count != expected {
		Fail("Expected Row Count %d, got %d", expected, count)
	}
	Logf(LogTypeExpect, "Row Count %d == %d - PASSED", count, expected)
}

// --- RowResult Helpers ---

// Get returns the value of a field. Fails the stage if the field does not exist.
func (r *RowResult) Get(field string) interface{} {
	val, ok := r.Data[strings.ToLower(field)]
	if !ok {
		Fail("Field '%s' not found in row", field)
	}
	return val
}

// Expect asserts that the field exists and equals the expected value.
func (r *RowResult) Expect(field string, expected interface{}) {
	val := r.Get(field)

	// To handle int vs int64 issues common in DBs, fall back to string
	// comparison if direct equality fails.
	if val != expected {
		sVal := fmt.Sprintf("%v", val)
		sExp := fmt.Sprintf("%v", expected)
		if sVal != sExp {
			Fail("Expect failed for field '%s': expected '%v', got '%v'", field, expected, val)
		}
	}
	Logf(LogTypeExpect, "DB Field '%s' == '%v' - PASSED", field, expected)
}

// ExpectCond asserts the field satisfies a comparison condition (one of the
// Condition* constants) against expected.
func (r *RowResult) ExpectCond(field string, condition string, expected interface{}) {
	val := r.Get(field)
	if !evaluateCondition(val, condition, expected) {
		Fail("ExpectCond failed for field '%s': %v %s %v", field, val, condition, expected)
	}
	Logf(LogTypeExpect, "DB Field '%s' %s '%v' - PASSED", field, condition, expected)
}
