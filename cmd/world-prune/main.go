package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"neurosphere/internal/logger"
	"neurosphere/internal/migrate"
	"neurosphere/internal/store"
	"neurosphere/internal/utils"
)

// 文档注释：已保存世界的保留窗口
// 背景：按更新时间保留最近 N 个世界，其余世界及其点场行删除；用于定期清理批量生成留下的旧世界。
// 约束：仅作用于 _planet_worlds/_planet_fields；WORLD_KEEP_N 缺省 10。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup("world-prune")
	keepN := 10
	if s := os.Getenv("WORLD_KEEP_N"); s != "" {
		var n int
		_, _ = fmt.Sscanf(s, "%d", &n)
		if n > 0 {
			keepN = n
		}
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := store.AttachDB(db).PruneWorlds(ctx, keepN)
	if err != nil {
		l.Error("world_prune_error", "err", err)
		os.Exit(1)
	}
	l.Info("world_prune_done", "keep", keepN, "deleted", n)
}
