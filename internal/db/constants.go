package db

// SQL query fragments used across multiple functions
const (
	// sqlRangeFilterClause filters events by the lower bound of a date range.
	// Unbounded ranges pass "" so rows without a start time are kept.
	sqlRangeFilterClause = "AND COALESCE(e.start_local, '') >= ?"

	// sqlTimeLayout is how every timestamp is written to the database.
	sqlTimeLayout = "2006-01-02 15:04:05"
)
