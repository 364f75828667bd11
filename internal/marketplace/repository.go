package marketplace

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Samrudhp/renova-backend/internal/materials"
	"github.com/Samrudhp/renova-backend/pkg/geospatial"
)

// Repository defines read access to the recycler directory.
type Repository interface {
	ListRecyclers(ctx context.Context) ([]Recycler, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListRecyclers loads the recycler directory. Rows with NULL coordinates are
// returned with a nil location so the ranking engine can skip them instead of
// the query failing.
func (r *PostgresRepository) ListRecyclers(ctx context.Context) ([]Recycler, error) {
	query := `
		SELECT id, name, latitude, longitude, materials_accepted,
			   capacity_score, price_score, road_access_score, rating
		FROM recyclers
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list recyclers: %w", err)
	}
	defer rows.Close()

	var recyclers []Recycler
	for rows.Next() {
		var (
			rec      Recycler
			lat, lon *float64
			accepted pq.StringArray
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &lat, &lon, &accepted,
			&rec.CapacityScore, &rec.PriceScore, &rec.RoadAccessScore, &rec.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan recycler: %w", err)
		}

		if lat != nil && lon != nil {
			p := geospatial.NewPoint(*lat, *lon)
			rec.Location = &p
		}

		rec.MaterialsAccepted = make([]materials.MaterialType, 0, len(accepted))
		for _, label := range accepted {
			// Unknown labels in stored directory rows are dropped, not fatal:
			// the strict parse boundary applies to classifier input.
			if mt, err := materials.Parse(label); err == nil {
				rec.MaterialsAccepted = append(rec.MaterialsAccepted, mt)
			}
		}

		recyclers = append(recyclers, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recyclers: %w", err)
	}

	return recyclers, nil
}
