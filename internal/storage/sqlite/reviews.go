package sqlite

import (
	"database/sql"

	"spotlyvf/internal/domain"
)

func InsertPlace(db *sql.DB, place domain.Place) error {
	_, err := db.Exec(
		`INSERT INTO places (id, name, category) VALUES (?, ?, ?)`,
		place.ID, place.Name, place.Category,
	)
	return err
}

func GetPlace(db *sql.DB, id string) (domain.Place, error) {
	var p domain.Place
	err := db.QueryRow(
		`SELECT id, name, category, created_at FROM places WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Category, &p.CreatedAt)
	return p, err
}

func InsertReview(db *sql.DB, review domain.Review) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO reviews (place_id, content, rating, author, source, is_approved, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.PlaceID, review.Content, review.Rating, review.Author,
		review.Source, review.IsApproved, review.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func InsertReviews(db *sql.DB, reviews []domain.Review) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO reviews (place_id, content, rating, author, source, is_approved, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range reviews {
		if _, err := stmt.Exec(r.PlaceID, r.Content, r.Rating, r.Author, r.Source, r.IsApproved, r.CreatedAt); err != nil {
			return inserted, err
		}
		inserted++
	}

	return inserted, tx.Commit()
}

// GetApprovedReviews returns a place's approved reviews ordered by creation
// time ascending, the order the analysis pipeline expects.
func GetApprovedReviews(db *sql.DB, placeID string) ([]domain.Review, error) {
	rows, err := db.Query(
		`SELECT id, place_id, content, rating, author, source, is_approved, created_at
		 FROM reviews WHERE place_id = ? AND is_approved = 1
		 ORDER BY created_at, id`,
		placeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(&r.ID, &r.PlaceID, &r.Content, &r.Rating, &r.Author, &r.Source, &r.IsApproved, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
