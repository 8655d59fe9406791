// 程序入口：读取配置、生成或加载世界并启动查询服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"neurosphere/internal/api"
	"neurosphere/internal/logger"
	"neurosphere/internal/metrics"
	"neurosphere/internal/middleware"
	"neurosphere/internal/migrate"
	"neurosphere/internal/neurosphere"
	"neurosphere/internal/params"
	"neurosphere/internal/planet"
	"neurosphere/internal/snapshot"
	"neurosphere/internal/store"
	"neurosphere/internal/utils"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup("planetd")
	l.Debug("log_init_ok")
	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api"
	}
	l.Debug("config_api_base", "base", apiBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if utils.PostgresEnabled() {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		l.Info("db_open_ok")
		if err := db.Ping(); err != nil {
			// 数据库只用于持久化世界，不可用时仍以内存世界提供查询
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
			if err := migrate.EnsureSchema(db); err != nil {
				l.Error("schema_error", "err", err)
				os.Exit(1)
			}
			st = store.AttachDB(db)
		}
	} else {
		l.Info("db_disabled")
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
			rc = nil
		} else {
			l.Info("redis_ping_ok")
		}
	}

	sp := neurosphere.New(nil)
	if err := loadWorlds(ctx, l, sp, st); err != nil {
		l.Error("world_init_error", "err", err)
		os.Exit(1)
	}

	ttl := 10 * time.Minute
	if s := os.Getenv("DESCRIBE_CACHE_TTL_S"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			ttl = time.Duration(n) * time.Second
		}
	}
	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(sp, rc, api.Options{LocalCacheTTL: ttl, RedisTTL: 24 * time.Hour})
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	var err error
	tlsEnable := os.Getenv("TLS_ENABLE")
	if tlsEnable == "" || tlsEnable == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join("data", "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join("data", "certs", "server.key")
		}
		if e := utils.EnsureSelfSignedCert(certPath, keyPath, "planetd.local"); e != nil {
			l.Error("tls_cert_error", "err", e)
			os.Exit(1)
		}
		// 可选：启动HTTP重定向到HTTPS（不改变HTTPS运行端口）
		if os.Getenv("TLS_REDIRECT_ENABLE") == "true" {
			go redirectToHTTPS(l, addr)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		err = s.ListenAndServeTLS(certPath, keyPath)
	} else {
		l.Info("listening", "addr", addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("server_stopped")
}

// 文档注释：初始化世界
// 背景：优先级 SNAPSHOT_PATH 已存在的文档 → PLANET_WORLD_ID 指定的库内世界 → 按 PLANET_PARAMS 新生成。
// 新生成的世界在配置了 SNAPSHOT_PATH 时写回文件，PLANET_SAVE_DB=true 时保存到数据库。
func loadWorlds(ctx context.Context, l *slog.Logger, sp *neurosphere.Sphere, st *store.Store) error {
	snapPath := os.Getenv("SNAPSHOT_PATH")
	if snapPath != "" {
		if _, err := os.Stat(snapPath); err == nil {
			doc, err := snapshot.ReadFile(snapPath)
			if err != nil {
				return err
			}
			l.Info("snapshot_found", "path", snapPath, "worlds", len(doc.Worlds))
			return sp.Load(ctx, doc)
		}
	}
	if s := os.Getenv("PLANET_WORLD_ID"); s != "" && st != nil {
		id, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		w, err := st.LoadWorld(ctx, id)
		if err != nil {
			return err
		}
		return sp.Load(ctx, &snapshot.Document{Worlds: []snapshot.World{w}})
	}

	g := params.Default()
	if p := os.Getenv("PLANET_PARAMS"); p != "" {
		var err error
		if g, err = params.LoadFile(p); err != nil {
			return err
		}
		l.Info("params_loaded", "path", p)
	}
	g = params.ApplyEnv(g)
	p := planet.New(g)
	id, err := sp.AddWorld(ctx, p)
	if err != nil {
		return err
	}
	p.LogStatistics()

	if snapPath == "" && !(st != nil && os.Getenv("PLANET_SAVE_DB") == "true") {
		return nil
	}
	doc, err := sp.Document()
	if err != nil {
		return err
	}
	if snapPath != "" {
		if err := snapshot.WriteFile(snapPath, doc); err != nil {
			return err
		}
		l.Info("snapshot_written", "path", snapPath)
	}
	if st != nil && os.Getenv("PLANET_SAVE_DB") == "true" {
		for _, w := range doc.Worlds {
			if w.ID != nil && *w.ID == id {
				if err := st.SaveWorld(ctx, w); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func redirectToHTTPS(l *slog.Logger, addr string) {
	redirAddr := os.Getenv("TLS_REDIRECT_ADDR")
	if redirAddr == "" {
		redirAddr = ":80"
	}
	httpRedir := http.NewServeMux()
	httpRedir.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// 替换目标端口为HTTPS服务端口
		httpsPort := strings.TrimPrefix(addr, ":")
		baseHost := r.Host
		if i := strings.LastIndex(baseHost, ":"); i != -1 {
			baseHost = baseHost[:i]
		}
		targetHost := baseHost
		if httpsPort != "" {
			targetHost = baseHost + ":" + httpsPort
		}
		target := "https://" + targetHost + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		l.Debug("http_redirect", "from", r.Host, "to", target)
	})
	l.Info("http_redirect_listening", "addr", redirAddr, "to", "https"+addr)
	_ = http.ListenAndServe(redirAddr, logger.AccessMiddleware(l)(httpRedir))
}
