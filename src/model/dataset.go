package model

import (
	"database/sql"
	"time"
)

// Dataset is one uploaded pair of sheets (transactions + prices) owned by a
// user. The raw rows live in dataset_transactions and dataset_prices.
type Dataset struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"-"`
	Name             string    `json:"name"`
	TransactionCount int       `json:"transaction_count"`
	PriceCount       int       `json:"price_count"`
	CreatedAt        time.Time `json:"created_at"`
}

func GetDataset(db *sql.DB, id, userID int64) (*Dataset, error) {
	query := `
	SELECT id, user_id, name, transaction_count, price_count, created_at
	FROM datasets
	WHERE id = ? AND user_id = ?`
	row := db.QueryRow(query, id, userID)

	var d Dataset
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.TransactionCount, &d.PriceCount, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func ListDatasetsByUser(db *sql.DB, userID int64) ([]Dataset, error) {
	query := `
	SELECT id, user_id, name, transaction_count, price_count, created_at
	FROM datasets
	WHERE user_id = ?
	ORDER BY created_at DESC, id DESC`
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	datasets := []Dataset{}
	for rows.Next() {
		var d Dataset
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.TransactionCount, &d.PriceCount, &d.CreatedAt); err != nil {
			return nil, err
		}
		datasets = append(datasets, d)
	}
	return datasets, rows.Err()
}

// DeleteDataset removes the dataset row; the transaction and price rows go
// with it via ON DELETE CASCADE.
func DeleteDataset(db *sql.DB, id, userID int64) (bool, error) {
	res, err := db.Exec(`DELETE FROM datasets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
