package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"git.fiblab.net/sim/catchment/router"
	"git.fiblab.net/sim/catchment/router/algo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/samber/lo"
)

var ErrResultNotFound = errors.New("isochrone result not found")

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id INTEGER PRIMARY KEY,
	longitude REAL NOT NULL,
	latitude REAL NOT NULL,
	elevation REAL
);

CREATE TABLE IF NOT EXISTS edges (
	id INTEGER PRIMARY KEY,
	source_id INTEGER NOT NULL,
	target_id INTEGER NOT NULL,
	length REAL NOT NULL,
	geometry TEXT,
	costs TEXT NOT NULL DEFAULT '{}',
	max_speed REAL,
	oneway INTEGER NOT NULL DEFAULT 0,
	surface TEXT NOT NULL DEFAULT '',
	highway_type TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);

CREATE TABLE IF NOT EXISTS isochrone_results (
	id TEXT PRIMARY KEY,
	starting_points TEXT NOT NULL,
	routing_mode TEXT NOT NULL,
	max_costs TEXT NOT NULL,
	calculation_time_ms INTEGER NOT NULL,
	nodes_reached INTEGER NOT NULL,
	result_data TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// 路网与等时圈结果的SQLite存储
type SQLiteStore struct {
	db *sql.DB
}

// 打开（或创建）数据库，开启WAL并建表
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// 用图中的点、边覆盖库中已有路网
func (s *SQLiteStore) SaveNetwork(ctx context.Context, g *algo.NetworkGraph) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, "DELETE FROM edges"); err != nil {
		return fmt.Errorf("failed to clear edges: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM nodes"); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, "INSERT INTO nodes (id, longitude, latitude, elevation) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()
	for _, id := range g.AllNodeIDs() {
		n, _ := g.GetNode(id)
		var elevation sql.NullFloat64
		if n.Elevation != nil {
			elevation = sql.NullFloat64{Float64: *n.Elevation, Valid: true}
		}
		if _, err = nodeStmt.ExecContext(ctx, int64(n.ID), n.Location.Lon(), n.Location.Lat(), elevation); err != nil {
			return fmt.Errorf("failed to insert node %d: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `INSERT INTO edges
		(id, source_id, target_id, length, geometry, costs, max_speed, oneway, surface, highway_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()
	g.RangeEdges(func(e *algo.Edge) bool {
		var geometry sql.NullString
		if len(e.Geometry) > 0 {
			geometry = sql.NullString{String: wkt.MarshalString(e.Geometry), Valid: true}
		}
		var costs []byte
		if costs, err = json.Marshal(e.Costs); err != nil {
			err = fmt.Errorf("failed to encode edge %d costs: %w", e.ID, err)
			return false
		}
		var maxSpeed sql.NullFloat64
		if e.MaxSpeed != nil {
			maxSpeed = sql.NullFloat64{Float64: *e.MaxSpeed, Valid: true}
		}
		if _, err = edgeStmt.ExecContext(ctx,
			int64(e.ID), int64(e.Source), int64(e.Target), e.Length, geometry,
			string(costs), maxSpeed, e.Oneway, e.Surface, e.Highway,
		); err != nil {
			err = fmt.Errorf("failed to insert edge %d: %w", e.ID, err)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit network: %w", err)
	}
	log.Infof("saved %d nodes, %d edges to sqlite", g.NodeCount(), g.EdgeCount())
	return nil
}

// 读取库中路网
func (s *SQLiteStore) LoadNetwork(ctx context.Context) (*router.Source, error) {
	src := &router.Source{
		Nodes: make([]algo.Node, 0),
		Edges: make([]*algo.Edge, 0),
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id, longitude, latitude, elevation FROM nodes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id        int64
			lon, lat  float64
			elevation sql.NullFloat64
		)
		if err := rows.Scan(&id, &lon, &lat, &elevation); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n := algo.NewNode(algo.NodeID(id), lon, lat)
		if elevation.Valid {
			n = n.WithElevation(elevation.Float64)
		}
		src.Nodes = append(src.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nodes: %w", err)
	}

	edgeRows, err := s.db.QueryContext(ctx, `SELECT id, source_id, target_id, length, geometry, costs, max_speed, oneway, surface, highway_type
		FROM edges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var (
			id, source, target int64
			length             float64
			geometry           sql.NullString
			costs              string
			maxSpeed           sql.NullFloat64
			oneway             bool
			surface, highway   string
		)
		if err := edgeRows.Scan(&id, &source, &target, &length, &geometry, &costs, &maxSpeed, &oneway, &surface, &highway); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		var line orb.LineString
		if geometry.Valid {
			if line, err = wkt.UnmarshalLineString(geometry.String); err != nil {
				return nil, fmt.Errorf("edge(id=%d) geometry: %w", id, err)
			}
		}
		e := algo.NewEdge(algo.EdgeID(id), algo.NodeID(source), algo.NodeID(target), line, length)
		if err := json.Unmarshal([]byte(costs), &e.Costs); err != nil {
			return nil, fmt.Errorf("edge(id=%d) costs: %w", id, err)
		}
		if maxSpeed.Valid {
			e.MaxSpeed = lo.ToPtr(maxSpeed.Float64)
		}
		e.Oneway = oneway
		e.Surface = surface
		e.Highway = highway
		src.Edges = append(src.Edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edges: %w", err)
	}
	log.Infof("loaded %d nodes, %d edges from sqlite", len(src.Nodes), len(src.Edges))
	return src, nil
}

// 保存一次等时圈计算，返回记录ID
func (s *SQLiteStore) SaveIsochrone(
	ctx context.Context,
	mode algo.RoutingMode,
	results []*algo.IsochroneResult,
	rows []router.IsochroneRow,
	duration time.Duration,
) (string, error) {
	starts := lo.Uniq(lo.Map(results, func(r *algo.IsochroneResult, _ int) algo.NodeID { return r.StartNode }))
	maxCosts := lo.Uniq(lo.Map(results, func(r *algo.IsochroneResult, _ int) algo.Cost { return algo.Cost(r.MaxCost) }))
	reached := lo.SumBy(results, func(r *algo.IsochroneResult) int { return r.ReachableNodes })

	startsJSON, err := json.Marshal(starts)
	if err != nil {
		return "", fmt.Errorf("failed to encode starting points: %w", err)
	}
	maxCostsJSON, err := json.Marshal(maxCosts)
	if err != nil {
		return "", fmt.Errorf("failed to encode max costs: %w", err)
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to encode result data: %w", err)
	}
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO isochrone_results
		(id, starting_points, routing_mode, max_costs, calculation_time_ms, nodes_reached, result_data)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, string(startsJSON), mode.String(), string(maxCostsJSON), duration.Milliseconds(), reached, string(data),
	); err != nil {
		return "", fmt.Errorf("failed to insert isochrone result: %w", err)
	}
	return id, nil
}

// 读取已保存的等时圈导出行
func (s *SQLiteStore) IsochroneRows(ctx context.Context, id string) ([]router.IsochroneRow, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT result_data FROM isochrone_results WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query isochrone result: %w", err)
	}
	rows := make([]router.IsochroneRow, 0)
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode isochrone result %s: %w", id, err)
	}
	return rows, nil
}

type DatabaseStats struct {
	NodeCount             int     `json:"node_count"`
	EdgeCount             int     `json:"edge_count"`
	IsochroneResultsCount int     `json:"isochrone_results_count"`
	TotalLength           float64 `json:"total_length_m"`
}

func (s *SQLiteStore) Stats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes").Scan(&stats.NodeCount); err != nil {
		return nil, fmt.Errorf("failed to count nodes: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(length), 0) FROM edges").Scan(&stats.EdgeCount, &stats.TotalLength); err != nil {
		return nil, fmt.Errorf("failed to count edges: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM isochrone_results").Scan(&stats.IsochroneResultsCount); err != nil {
		return nil, fmt.Errorf("failed to count isochrone results: %w", err)
	}
	return stats, nil
}
