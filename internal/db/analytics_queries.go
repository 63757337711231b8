package db

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/j-veylop/boxoffice-tui/internal/models"
)

// GetMonthlyTrends aggregates events whose attendees have been synced into
// one row per calendar month, oldest first. Months without events are absent.
func (db *DB) GetMonthlyTrends(orgID string, r models.DateRange) ([]models.MonthlyAggregate, error) {
	query := `
		SELECT
			strftime('%Y-%m', e.start_local) AS month,
			COUNT(DISTINCT e.id) AS events,
			COUNT(a.id) AS attendees,
			COALESCE(SUM(a.gross_cents), 0) AS gross_cents
		FROM events e
		LEFT JOIN attendees a ON a.event_id = e.id
		WHERE e.org_id = ? AND e.attendees_synced_at IS NOT NULL ` + sqlRangeFilterClause + `
		GROUP BY month
		HAVING month IS NOT NULL
		ORDER BY month ASC
	`

	rows, err := db.QueryContext(context.Background(), query, orgID, rangeStart(r))
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly trends: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var trends []models.MonthlyAggregate
	for rows.Next() {
		var m models.MonthlyAggregate
		var cents int64
		if err := rows.Scan(&m.Month, &m.Events, &m.Attendees, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan monthly trend: %w", err)
		}
		m.Revenue = centsToUnits(cents)
		trends = append(trends, m)
	}

	return trends, rows.Err()
}

// GetEventRecords returns one record per event for weekday analysis.
// Attendees is nil for events whose attendee list has never been synced.
func (db *DB) GetEventRecords(orgID string, r models.DateRange) ([]models.EventRecord, error) {
	query := `
		SELECT e.start_local, e.attendees_synced_at IS NOT NULL, COUNT(a.id)
		FROM events e
		LEFT JOIN attendees a ON a.event_id = e.id
		WHERE e.org_id = ? ` + sqlRangeFilterClause + `
		GROUP BY e.id
		ORDER BY e.start_local
	`

	rows, err := db.QueryContext(context.Background(), query, orgID, rangeStart(r))
	if err != nil {
		return nil, fmt.Errorf("failed to query event records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.EventRecord
	for rows.Next() {
		var start sql.NullString
		var synced bool
		var count int
		if err := rows.Scan(&start, &synced, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event record: %w", err)
		}
		rec := models.EventRecord{Start: nullTime(start, parseLocalTime)}
		if synced {
			rec.Attendees = &count
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetInsights computes headline totals for an organization's events in range.
func (db *DB) GetInsights(orgID string, r models.DateRange) (*models.Insights, error) {
	ctx := context.Background()
	from := rangeStart(r)
	ins := &models.Insights{}

	var cents int64
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT e.id), COUNT(a.id), COALESCE(SUM(a.gross_cents), 0)
		FROM events e
		LEFT JOIN attendees a ON a.event_id = e.id
		WHERE e.org_id = ? `+sqlRangeFilterClause,
		orgID, from,
	).Scan(&ins.TotalEvents, &ins.TotalAttendees, &cents)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	ins.TotalRevenue = centsToUnits(cents)

	// A repeat customer holds more than one ticket in range.
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN n > 1 THEN 1 ELSE 0 END), 0)
		FROM (
			SELECT LOWER(a.email) AS email, COUNT(*) AS n
			FROM attendees a
			JOIN events e ON e.id = a.event_id
			WHERE e.org_id = ? AND a.email <> '' `+sqlRangeFilterClause+`
			GROUP BY LOWER(a.email)
		)`,
		orgID, from,
	).Scan(&ins.UniqueCustomers, &ins.RepeatCustomers)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}

	if ins.UniqueCustomers > 0 {
		ins.RepeatCustomerRate = round2(float64(ins.RepeatCustomers) / float64(ins.UniqueCustomers) * 100)
	}
	if ins.TotalEvents > 0 {
		ins.AvgAttendeesPerEvent = round2(float64(ins.TotalAttendees) / float64(ins.TotalEvents))
	}

	if ins.TicketTypes, err = db.getTicketTypes(orgID, from); err != nil {
		return nil, err
	}
	if ins.MonthlyTrends, err = db.GetMonthlyTrends(orgID, r); err != nil {
		return nil, err
	}

	return ins, nil
}

func (db *DB) getTicketTypes(orgID, from string) ([]models.TicketTypeCount, error) {
	query := `
		SELECT CASE WHEN a.ticket_type = '' THEN 'Unknown' ELSE a.ticket_type END AS ticket_type, COUNT(*) AS n
		FROM attendees a
		JOIN events e ON e.id = a.event_id
		WHERE e.org_id = ? ` + sqlRangeFilterClause + `
		GROUP BY 1
		ORDER BY n DESC, ticket_type ASC
	`

	rows, err := db.QueryContext(context.Background(), query, orgID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var types []models.TicketTypeCount
	for rows.Next() {
		var tt models.TicketTypeCount
		if err := rows.Scan(&tt.Name, &tt.Count); err != nil {
			return nil, fmt.Errorf("failed to scan ticket type: %w", err)
		}
		types = append(types, tt)
	}

	return types, rows.Err()
}

// GetEventPerformance returns per-event sales and check-in figures, newest first.
func (db *DB) GetEventPerformance(orgID string, r models.DateRange) ([]models.EventPerformance, error) {
	query := `
		SELECT e.id, e.name, e.status, e.start_local, e.capacity,
			COUNT(a.id), COALESCE(SUM(a.checked_in), 0), COALESCE(SUM(a.gross_cents), 0)
		FROM events e
		LEFT JOIN attendees a ON a.event_id = e.id
		WHERE e.org_id = ? ` + sqlRangeFilterClause + `
		GROUP BY e.id
		ORDER BY e.start_local DESC
	`

	rows, err := db.QueryContext(context.Background(), query, orgID, rangeStart(r))
	if err != nil {
		return nil, fmt.Errorf("failed to query event performance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var perf []models.EventPerformance
	for rows.Next() {
		var p models.EventPerformance
		var start sql.NullString
		var cents int64
		if err := rows.Scan(&p.EventID, &p.Name, &p.Status, &start, &p.Capacity,
			&p.Attendees, &p.CheckedIn, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan event performance: %w", err)
		}
		p.Start = nullTime(start, parseLocalTime)
		p.Revenue = centsToUnits(cents)
		if p.Capacity > 0 {
			p.SellThrough = float64(p.Attendees) / float64(p.Capacity) * 100
		}
		if p.Attendees > 0 {
			p.CheckInRate = float64(p.CheckedIn) / float64(p.Attendees) * 100
		}
		perf = append(perf, p)
	}

	return perf, rows.Err()
}

// GetTopCustomers ranks attendee emails by events attended, then lifetime value.
func (db *DB) GetTopCustomers(orgID string, limit int) ([]models.Customer, error) {
	query := `
		SELECT LOWER(a.email) AS email,
			MAX(TRIM(a.first_name || ' ' || a.last_name)) AS name,
			COUNT(DISTINCT a.event_id) AS events_attended,
			COALESCE(SUM(a.gross_cents), 0) AS gross_cents
		FROM attendees a
		JOIN events e ON e.id = a.event_id
		WHERE e.org_id = ? AND a.email <> ''
		GROUP BY LOWER(a.email)
		ORDER BY events_attended DESC, gross_cents DESC, email ASC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top customers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		var cents int64
		if err := rows.Scan(&c.Email, &c.Name, &c.EventsAttended, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		c.LifetimeValue = centsToUnits(cents)
		customers = append(customers, c)
	}

	return customers, rows.Err()
}

// GetWeeklySales groups event sales into Monday-to-Sunday weeks, newest week first.
func (db *DB) GetWeeklySales(orgID string, r models.DateRange) ([]models.WeeklySales, error) {
	query := `
		SELECT
			date(e.start_local, '-' || ((e.day_of_week + 6) % 7) || ' days') AS week_start,
			e.name, e.start_local, COUNT(a.id), COALESCE(SUM(a.gross_cents), 0)
		FROM events e
		LEFT JOIN attendees a ON a.event_id = e.id
		WHERE e.org_id = ? AND e.day_of_week IS NOT NULL ` + sqlRangeFilterClause + `
		GROUP BY e.id
		ORDER BY week_start DESC, e.start_local ASC
	`

	rows, err := db.QueryContext(context.Background(), query, orgID, rangeStart(r))
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly sales: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var weeks []models.WeeklySales
	var current *models.WeeklySales
	var currentKey string
	for rows.Next() {
		var weekKey, start string
		var sale models.WeeklyEventSales
		var cents int64
		if err := rows.Scan(&weekKey, &sale.Name, &start, &sale.Tickets, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan weekly sales: %w", err)
		}
		sale.Date, _ = parseLocalTime(start)
		sale.Revenue = centsToUnits(cents)

		if current == nil || weekKey != currentKey {
			weekStart, _ := parseLocalTime(weekKey)
			weeks = append(weeks, models.WeeklySales{WeekStart: weekStart})
			current = &weeks[len(weeks)-1]
			currentKey = weekKey
		}
		current.Events = append(current.Events, sale)
		current.TotalTickets += sale.Tickets
		current.TotalRevenue = round2(current.TotalRevenue + sale.Revenue)
	}

	return weeks, rows.Err()
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
