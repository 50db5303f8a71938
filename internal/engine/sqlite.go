package engine

import (
	"context"
	"database/sql"
	"fmt"

	"customerdash/internal/models"

	_ "modernc.org/sqlite"
)

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// LoadSQLiteCustomers appends every row of the customers table to b.
func LoadSQLiteCustomers(ctx context.Context, path string, b *Builder) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s FROM customers ORDER BY rowid`,
		ColProfession, ColGender, ColProvince, ColAge, ColGeneration, ColAnnualIncome, ColWorkExperience)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	row := 0
	for rows.Next() {
		row++
		var rec models.CustomerRecord
		if err := rows.Scan(&rec.Profession, &rec.Gender, &rec.Province, &rec.Age,
			&rec.Generation, &rec.AnnualIncome, &rec.WorkExperience); err != nil {
			return &DataIntegrityError{Source: "customers", Row: row, Reason: err.Error()}
		}
		if err := b.Add(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// LoadSQLiteCoordinates reads the coordinates table.
func LoadSQLiteCoordinates(ctx context.Context, path string) ([]models.ProvinceCoordinate, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT %s, %s, %s FROM coordinates ORDER BY rowid`, ColProvince, ColLatitude, ColLongitude)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query coordinates: %w", err)
	}
	defer rows.Close()

	var out []models.ProvinceCoordinate
	for rows.Next() {
		var c models.ProvinceCoordinate
		if err := rows.Scan(&c.Province, &c.Latitude, &c.Longitude); err != nil {
			return nil, &DataIntegrityError{Source: "coordinates", Row: len(out) + 1, Reason: err.Error()}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
