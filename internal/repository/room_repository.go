package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

const roomColumns = "id, center_id, name, capacity, available_times, active, created_at, updated_at"

// RoomRepository persists classrooms and their weekly availability.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms of a center.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	where := newWhere("center_id", filter.CenterID)
	if filter.Active != nil {
		where.add("active = $%d", *filter.Active)
	}
	where.search([]string{"name"}, filter.Search)

	order := orderClause(filter.SortBy, filter.SortOrder, map[string]string{
		"name":       "name",
		"capacity":   "capacity",
		"created_at": "created_at",
	}, "created_at")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	base := "FROM rooms WHERE " + where.clause()
	query := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", roomColumns, base, order, limit, offset)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}
	return rooms, total, nil
}

// FindByID returns a room by id.
func (r *RoomRepository) FindByID(ctx context.Context, centerID, id string) (*models.Room, error) {
	query := "SELECT " + roomColumns + " FROM rooms WHERE center_id = $1 AND id = $2"
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, centerID, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ExistsByName reports whether a room name is taken within a center.
func (r *RoomRepository) ExistsByName(ctx context.Context, centerID, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM rooms WHERE center_id = $1 AND LOWER(name) = LOWER($2)"
	args := []interface{}{centerID, name}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check room name: %w", err)
	}
	return true, nil
}

// Create inserts a room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	const query = `INSERT INTO rooms (id, center_id, name, capacity, available_times, active, created_at, updated_at)
        VALUES (:id, :center_id, :name, :capacity, :available_times, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies a room.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET name = :name, capacity = :capacity, available_times = :available_times, active = :active, updated_at = :updated_at
        WHERE id = :id AND center_id = :center_id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Delete removes a room.
func (r *RoomRepository) Delete(ctx context.Context, centerID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE center_id = $1 AND id = $2`, centerID, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
