// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"neurosphere/internal/geo"
	"neurosphere/internal/logger"
	"neurosphere/internal/metrics"
	"neurosphere/internal/neurosphere"
	"neurosphere/internal/params"
	"neurosphere/internal/planet"
	"neurosphere/internal/world"
)

// Querier：路由依赖的最小查询面，由 neurosphere.Sphere 实现
type Querier interface {
	Describe(locationID int) (string, error)
	Reachable(locationID int, distance float64) ([]int, error)
	Neighbours(locationID int, distance float64) ([]world.Neighbour, error)
	World(id int) (world.World, error)
	WorldOf(locationID int) (world.World, error)
	WorldIDs() []int
}

// fingerprinter：可给出内容指纹的世界类型
type fingerprinter interface {
	Fingerprint() (string, error)
}

// statser：可输出统计的世界类型
type statser interface {
	Statistics() (planet.Statistics, error)
}

// Options：缓存参数；Local 非空时复用调用方的进程内缓存
type Options struct {
	Local          *geo.LRU
	LocalCacheSize int
	LocalCacheTTL  time.Duration
	RedisTTL       time.Duration
}

func (o Options) withDefaults() Options {
	if o.LocalCacheSize <= 0 {
		o.LocalCacheSize = 4096
	}
	if o.LocalCacheTTL <= 0 {
		o.LocalCacheTTL = 10 * time.Minute
	}
	if o.RedisTTL <= 0 {
		o.RedisTTL = 24 * time.Hour
	}
	return o
}

type describeResult struct {
	Location    int    `json:"location"`
	Description string `json:"description"`
}

type reachableResult struct {
	Location   int               `json:"location"`
	Distance   float64           `json:"distance"`
	Reachable  []int             `json:"reachable"`
	Neighbours []world.Neighbour `json:"neighbours"`
}

type worldInfo struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 /api 前缀
// 背景：世界生成后只读，描述文本可按 本地 LRU → Redis → 世界 三层缓存；rc 为 nil 时跳过 Redis。
func BuildRoutes(q Querier, rc *redis.Client, opt Options) *http.ServeMux {
	opt = opt.withDefaults()
	local := opt.Local
	if local == nil {
		local = geo.NewLRU(opt.LocalCacheSize, opt.LocalCacheTTL)
	}
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("/describe", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		loc, err := intParam(r, "location")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		metrics.DescribeTotal.Inc()
		key, err := describeKey(q, loc)
		if err != nil {
			writeError(w, statusOf(err), err)
			return
		}
		if s, ok := local.Get(key); ok {
			metrics.CacheHitsTotal.WithLabelValues("local").Inc()
			writeJSON(w, describeResult{Location: loc, Description: s})
			return
		}
		metrics.CacheMissesTotal.WithLabelValues("local").Inc()
		if rc != nil {
			s, err := rc.Get(ctx, key).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				logger.L().Debug("redis_get_fail", "key", key, "err", err)
			}
			if s != "" {
				metrics.CacheHitsTotal.WithLabelValues("redis").Inc()
				local.Set(key, s)
				writeJSON(w, describeResult{Location: loc, Description: s})
				return
			}
			metrics.CacheMissesTotal.WithLabelValues("redis").Inc()
		}
		s, err := q.Describe(loc)
		if err != nil {
			writeError(w, statusOf(err), err)
			return
		}
		local.Set(key, s)
		if rc != nil {
			if err := rc.Set(ctx, key, s, opt.RedisTTL).Err(); err != nil {
				logger.L().Debug("redis_set_fail", "key", key, "err", err)
			}
		}
		writeJSON(w, describeResult{Location: loc, Description: s})
	})

	apiMux.HandleFunc("/reachable", func(w http.ResponseWriter, r *http.Request) {
		loc, err := intParam(r, "location")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		d, err := strconv.ParseFloat(r.URL.Query().Get("distance"), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("distance must be a number"))
			return
		}
		metrics.ReachableTotal.Inc()
		ns, err := q.Neighbours(loc, d)
		if err != nil {
			writeError(w, statusOf(err), err)
			return
		}
		ids, err := q.Reachable(loc, d)
		if err != nil {
			writeError(w, statusOf(err), err)
			return
		}
		writeJSON(w, reachableResult{Location: loc, Distance: d, Reachable: ids, Neighbours: ns})
	})

	apiMux.HandleFunc("/worlds", func(w http.ResponseWriter, r *http.Request) {
		out := []worldInfo{}
		for _, id := range q.WorldIDs() {
			wd, err := q.World(id)
			if err != nil {
				continue
			}
			out = append(out, worldInfo{ID: id, Type: wd.Type()})
		}
		writeJSON(w, out)
	})

	apiMux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		id, err := intParam(r, "world")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		wd, err := q.World(id)
		if err != nil {
			writeError(w, statusOf(err), err)
			return
		}
		st, ok := wd.(statser)
		if !ok {
			writeError(w, http.StatusNotImplemented, errors.New("world type has no statistics"))
			return
		}
		s, err := st.Statistics()
		if err != nil {
			writeError(w, statusOf(err), err)
			return
		}
		writeJSON(w, s)
	})

	return apiMux
}

// 文档注释：描述缓存键
// 背景：地点 id 在每个进程里都从 0 分配，重启或多实例共享 Redis 时同一 id 可能指向不同世界；
// 键由 describe:<世界 id>:<内容指纹>:<地点 id> 组成，不提供指纹的世界类型以类型名代替。
func describeKey(q Querier, loc int) (string, error) {
	wd, err := q.WorldOf(loc)
	if err != nil {
		return "", err
	}
	fp := wd.Type()
	if f, ok := wd.(fingerprinter); ok {
		if fp, err = f.Fingerprint(); err != nil {
			return "", err
		}
	}
	id, _ := wd.ID()
	return "describe:" + strconv.Itoa(id) + ":" + fp + ":" + strconv.Itoa(loc), nil
}

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, errors.New(name + " is required")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

// statusOf：领域错误 → HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, world.ErrUnknownLocation), errors.Is(err, neurosphere.ErrUnknownWorld):
		return http.StatusNotFound
	case errors.Is(err, params.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, planet.ErrNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
