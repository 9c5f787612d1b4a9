package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizshow-game-service/internal/domain"
)

// RoomRepository reads room records and their JSONB config snapshots.
type RoomRepository struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

func (r *RoomRepository) FindActiveByPIN(ctx context.Context, pin string) (domain.Room, error) {
	return r.scanRoom(r.pool.QueryRow(ctx,
		"SELECT id, pin, host_id, active, config, created_at FROM rooms WHERE pin=$1 AND active",
		pin,
	))
}

func (r *RoomRepository) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	return r.scanRoom(r.pool.QueryRow(ctx,
		"SELECT id, pin, host_id, active, config, created_at FROM rooms WHERE id=$1",
		id,
	))
}

func (r *RoomRepository) scanRoom(row pgx.Row) (domain.Room, error) {
	var (
		room      domain.Room
		configRaw []byte
	)
	err := row.Scan(&room.ID, &room.PIN, &room.HostID, &room.Active, &configRaw, &room.CreatedAt)
	if err == pgx.ErrNoRows {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, fmt.Errorf("load room: %w", err)
	}
	if err := json.Unmarshal(configRaw, &room.Config); err != nil {
		return domain.Room{}, fmt.Errorf("unmarshal room config: %w", err)
	}
	return room, nil
}
