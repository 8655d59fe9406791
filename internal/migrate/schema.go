package migrate

import (
	"database/sql"

	"neurosphere/internal/logger"
)

// 背景：首次运行自动创建世界与点场表，保障后续保存与加载
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _planet_worlds (
            id INT PRIMARY KEY,
            type TEXT NOT NULL,
            generation JSONB NOT NULL,
            seed BIGINT NOT NULL,
            water_level DOUBLE PRECISION NOT NULL,
            mountain_level DOUBLE PRECISION NOT NULL,
            points INT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE TABLE IF NOT EXISTS _planet_fields (
            world_id INT NOT NULL REFERENCES _planet_worlds(id) ON DELETE CASCADE,
            field TEXT NOT NULL,
            idx INT NOT NULL,
            lat DOUBLE PRECISION NOT NULL,
            lon DOUBLE PRECISION NOT NULL,
            value DOUBLE PRECISION,
            label TEXT,
            PRIMARY KEY (world_id, field, idx)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_planet_worlds_updated ON _planet_worlds(updated_at DESC)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
