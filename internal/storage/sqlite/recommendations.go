package sqlite

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"spotlyvf/internal/domain"
)

// StoredRecommendation is a persisted recommendation with its tracking state.
type StoredRecommendation struct {
	ID                  string
	AnalyticsID         string
	Title               string
	Description         string
	Priority            string
	Category            string
	IsImplemented       bool
	ImplementationNotes string
	GeneratedAt         time.Time
	UpdatedAt           time.Time
}

// ReplaceRecommendations upserts the latest generation, deduplicating by
// title: an existing row with the same title keeps its ID and implementation
// state but picks up the new description, priority, and category.
func ReplaceRecommendations(db *sql.DB, analyticsID string, recs []domain.Recommendation, now time.Time) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	update, err := tx.Prepare(
		`UPDATE ai_recommendations
		 SET description = ?, priority = ?, category = ?, generated_at = ?, updated_at = ?
		 WHERE analytics_id = ? AND title = ?`,
	)
	if err != nil {
		return err
	}
	defer update.Close()

	insert, err := tx.Prepare(
		`INSERT INTO ai_recommendations
		 (id, analytics_id, title, description, priority, category, generated_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer insert.Close()

	for _, r := range recs {
		res, err := update.Exec(r.Description, r.Priority, r.Category, now, now, analyticsID, r.Title)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := insert.Exec(uuid.NewString(), analyticsID, r.Title, r.Description, r.Priority, r.Category, now, now); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func ListRecommendations(db *sql.DB, analyticsID string) ([]StoredRecommendation, error) {
	rows, err := db.Query(
		`SELECT id, analytics_id, title, description, priority, category,
		        is_implemented, implementation_notes, generated_at, updated_at
		 FROM ai_recommendations WHERE analytics_id = ?
		 ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, generated_at DESC`,
		analyticsID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredRecommendation
	for rows.Next() {
		var r StoredRecommendation
		if err := rows.Scan(
			&r.ID, &r.AnalyticsID, &r.Title, &r.Description, &r.Priority, &r.Category,
			&r.IsImplemented, &r.ImplementationNotes, &r.GeneratedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SetRecommendationImplemented updates the tracking state of one
// recommendation. Returns sql.ErrNoRows when the ID does not exist.
func SetRecommendationImplemented(db *sql.DB, id string, implemented bool, notes string, now time.Time) error {
	res, err := db.Exec(
		`UPDATE ai_recommendations
		 SET is_implemented = ?, implementation_notes = ?, updated_at = ?
		 WHERE id = ?`,
		implemented, notes, now, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
