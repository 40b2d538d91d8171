package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nvinod007/drawnguess/domain"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pgr *PostgresRepo) Close() {
	pgr.pool.Close()
}

func (pgr *PostgresRepo) CreateRoom(ctx context.Context, code, name string, maxPlayers, maxRounds, roundTime int) (domain.Room, error) {
	room := domain.Room{
		Code:       code,
		Name:       name,
		MaxPlayers: maxPlayers,
		MaxRounds:  maxRounds,
		RoundTime:  roundTime,
		Status:     domain.StatusWaiting,
	}

	row := pgr.pool.QueryRow(ctx,
		`INSERT INTO rooms(code, name, max_players, max_rounds, round_time)
		 VALUES($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		code, name, maxPlayers, maxRounds, roundTime)

	err := row.Scan(&room.Id, &room.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// "23505" is the PostgreSQL error code for unique_violation
			if pgErr.Code == "23505" {
				return domain.Room{}, domain.ErrDuplicateRoomCode
			}
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Room{}, err
		}
		return domain.Room{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return room, nil
}

// GetRoomByCode returns the room and its players ordered by join time. The
// player order is load-bearing: it is the turn order of a live session.
func (pgr *PostgresRepo) GetRoomByCode(ctx context.Context, code string) (domain.Room, error) {
	room := domain.Room{Code: code}

	var drawer, word *string
	row := pgr.pool.QueryRow(ctx,
		`SELECT id, name, max_players, status, current_round, max_rounds, round_time,
		        current_drawer, current_word, created_at
		 FROM rooms WHERE code = $1`, code)

	err := row.Scan(&room.Id, &room.Name, &room.MaxPlayers, &room.Status,
		&room.CurrentRound, &room.MaxRounds, &room.RoundTime, &drawer, &word, &room.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.Room{}, domain.ErrRoomNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.Room{}, err
		default:
			return domain.Room{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}
	if drawer != nil {
		room.CurrentDrawer = *drawer
	}
	if word != nil {
		room.CurrentWord = *word
	}

	rows, err := pgr.pool.Query(ctx,
		`SELECT id, username, score, is_ready, is_drawing, has_guessed, joined_at
		 FROM players WHERE room_id = $1 ORDER BY joined_at ASC`, room.Id)
	if err != nil {
		return domain.Room{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		p := domain.Player{RoomId: room.Id}
		err := rows.Scan(&p.Id, &p.Username, &p.Score, &p.IsReady, &p.IsDrawing, &p.HasGuessed, &p.JoinedAt)
		if err != nil {
			return domain.Room{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
		room.Players = append(room.Players, p)
	}
	if err := rows.Err(); err != nil {
		return domain.Room{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return room, nil
}

func (pgr *PostgresRepo) CreatePlayer(ctx context.Context, roomId, username string) (domain.Player, error) {
	player := domain.Player{RoomId: roomId, Username: username}

	row := pgr.pool.QueryRow(ctx,
		`INSERT INTO players(room_id, username) VALUES($1, $2) RETURNING id, joined_at`,
		roomId, username)

	err := row.Scan(&player.Id, &player.JoinedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Player{}, err
		}
		return domain.Player{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return player, nil
}

// UpdateRoomState mirrors a terminal transition of a live session back into
// the durable store. The live session never waits on it.
func (pgr *PostgresRepo) UpdateRoomState(ctx context.Context, roomId string, update domain.RoomStateUpdate) error {
	var drawer, word *string
	if update.CurrentDrawer != "" {
		drawer = &update.CurrentDrawer
	}
	if update.CurrentWord != "" {
		word = &update.CurrentWord
	}

	_, err := pgr.pool.Exec(ctx,
		`UPDATE rooms SET status = $2, current_round = $3, current_drawer = $4, current_word = $5
		 WHERE id = $1`,
		roomId, update.Status, update.CurrentRound, drawer, word)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}

func (pgr *PostgresRepo) UpdatePlayerScore(ctx context.Context, playerId string, score int) error {
	_, err := pgr.pool.Exec(ctx, `UPDATE players SET score = $2 WHERE id = $1`, playerId, score)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}

// RandomWords implements the game.WordSource interface. It fetches 'count'
// random words from the words table. Returns an empty slice if the query
// fails; callers fall back to the builtin list.
func (pgr *PostgresRepo) RandomWords(count int) []string {
	ctx := context.Background()

	rows, err := pgr.pool.Query(ctx, `SELECT word FROM words ORDER BY RANDOM() LIMIT $1`, count)
	if err != nil {
		return []string{}
	}
	defer rows.Close()

	words := make([]string, 0, count)
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			continue
		}
		words = append(words, word)
	}

	return words
}
