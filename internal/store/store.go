// 包 store: 提供与 PostgreSQL 的数据访问层，负责世界记录与点场的保存、加载与清理
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"neurosphere/internal/logger"
	"neurosphere/internal/snapshot"
)

// ErrNotFound：世界不存在
var ErrNotFound = errors.New("store: world not found")

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// 点场名称，与快照文档中的键一致
const (
	fieldTectonic      = "tectonic_map"
	fieldHeight        = "height_map"
	fieldHeat          = "heat_map"
	fieldPrecipitation = "precipitation_map"
	fieldBiome         = "biome_map"
	fieldLocation      = "location_map"
)

// 文档注释：保存世界
// 背景：世界元数据一行，点场按 (字段, 下标) 平铺为行；同 id 重复保存时整体替换。
// 约束：单事务完成，点场行通过 COPY 批量写入；世界必须已有 id 与水位/山地线。
func (s *Store) SaveWorld(ctx context.Context, w snapshot.World) error {
	if w.ID == nil {
		return errors.New("store: world has no id")
	}
	lv, ok := w.Generation.Levels()
	if !ok || w.Maps.Empty() {
		return fmt.Errorf("store: world %d is not generated", *w.ID)
	}
	gen, err := json.Marshal(w.Generation.Generation)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO _planet_worlds(id, type, generation, seed, water_level, mountain_level, points, updated_at)
        VALUES($1,$2,$3,$4,$5,$6,$7,now())
        ON CONFLICT (id) DO UPDATE SET type=EXCLUDED.type, generation=EXCLUDED.generation, seed=EXCLUDED.seed,
            water_level=EXCLUDED.water_level, mountain_level=EXCLUDED.mountain_level, points=EXCLUDED.points, updated_at=now()`,
		*w.ID, w.Type, string(gen), w.Generation.SeedValue(), lv.Water, lv.Mountain, len(w.Maps.Height))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM _planet_fields WHERE world_id=$1`, *w.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("_planet_fields", "world_id", "field", "idx", "lat", "lon", "value", "label"))
	if err != nil {
		return err
	}
	rows := 0
	values := []struct {
		name string
		vals []snapshot.Value
	}{
		{fieldTectonic, w.Maps.Tectonic},
		{fieldHeight, w.Maps.Height},
		{fieldHeat, w.Maps.Heat},
		{fieldPrecipitation, w.Maps.Precipitation},
		{fieldLocation, w.Maps.Location},
	}
	for _, f := range values {
		for i, v := range f.vals {
			if _, err := stmt.ExecContext(ctx, *w.ID, f.name, i, v.Lat, v.Lon, v.V, nil); err != nil {
				stmt.Close()
				return err
			}
			rows++
		}
	}
	for i, l := range w.Maps.Biome {
		if _, err := stmt.ExecContext(ctx, *w.ID, fieldBiome, i, l.Lat, l.Lon, nil, l.V); err != nil {
			stmt.Close()
			return err
		}
		rows++
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Info("world_saved", "world_id", *w.ID, "rows", rows)
	return nil
}

// 文档注释：加载世界
// 返回：与快照文档同构的世界记录；点场按下标顺序还原
func (s *Store) LoadWorld(ctx context.Context, id int) (snapshot.World, error) {
	var (
		w        snapshot.World
		gen      []byte
		water    float64
		mountain float64
	)
	row := s.db.QueryRowContext(ctx, `SELECT type, generation, water_level, mountain_level FROM _planet_worlds WHERE id=$1`, id)
	if err := row.Scan(&w.Type, &gen, &water, &mountain); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return w, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return w, err
	}
	if err := json.Unmarshal(gen, &w.Generation.Generation); err != nil {
		return w, fmt.Errorf("store: decode generation of world %d: %w", id, err)
	}
	wid := id
	w.ID = &wid
	w.Generation.WaterLevel = &water
	w.Generation.MountainLevel = &mountain

	rows, err := s.db.QueryContext(ctx, `SELECT field, lat, lon, value, label FROM _planet_fields WHERE world_id=$1 ORDER BY field, idx`, id)
	if err != nil {
		return w, err
	}
	defer rows.Close()
	m := &snapshot.Maps{}
	for rows.Next() {
		var (
			field    string
			lat, lon float64
			value    sql.NullFloat64
			label    sql.NullString
		)
		if err := rows.Scan(&field, &lat, &lon, &value, &label); err != nil {
			return w, err
		}
		v := snapshot.Value{Lat: lat, Lon: lon, V: value.Float64}
		switch field {
		case fieldTectonic:
			m.Tectonic = append(m.Tectonic, v)
		case fieldHeight:
			m.Height = append(m.Height, v)
		case fieldHeat:
			m.Heat = append(m.Heat, v)
		case fieldPrecipitation:
			m.Precipitation = append(m.Precipitation, v)
		case fieldLocation:
			m.Location = append(m.Location, v)
		case fieldBiome:
			m.Biome = append(m.Biome, snapshot.Label{Lat: lat, Lon: lon, V: label.String})
		default:
			logger.L().Warn("store_unknown_field", "world_id", id, "field", field)
		}
	}
	if err := rows.Err(); err != nil {
		return w, err
	}
	w.Maps = m
	logger.L().Debug("world_loaded", "world_id", id, "points", len(m.Height))
	return w, nil
}

// WorldInfo: 世界列表条目
type WorldInfo struct {
	ID            int       `json:"id"`
	Type          string    `json:"type"`
	Seed          int64     `json:"seed"`
	Points        int       `json:"points"`
	WaterLevel    float64   `json:"water_level"`
	MountainLevel float64   `json:"mountain_level"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListWorlds: 按更新时间倒序列出已保存世界
func (s *Store) ListWorlds(ctx context.Context) ([]WorldInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, seed, points, water_level, mountain_level, updated_at FROM _planet_worlds ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WorldInfo
	for rows.Next() {
		var wi WorldInfo
		if err := rows.Scan(&wi.ID, &wi.Type, &wi.Seed, &wi.Points, &wi.WaterLevel, &wi.MountainLevel, &wi.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, wi)
	}
	return out, rows.Err()
}

// 文档注释：清理旧世界
// 背景：保留最近更新的 keep 个世界，其余连同点场删除（外键级联）。
// 返回：删除的世界数
func (s *Store) PruneWorlds(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `WITH ranked AS (
            SELECT id, ROW_NUMBER() OVER(ORDER BY updated_at DESC, id DESC) AS rn FROM _planet_worlds
          )
          DELETE FROM _planet_worlds w USING ranked r
          WHERE w.id = r.id AND r.rn > $1`, keep)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	logger.L().Debug("worlds_pruned", "keep", keep, "deleted", n)
	return n, nil
}
