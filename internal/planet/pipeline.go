package planet

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// 文档注释：并行逐点遍历
// 背景：把 [0,n) 切成 workers 段交给有界 goroutine 组；Wait 即阶段间屏障。
// 约束：fn 只写第 i 个输出槽，只读前序阶段已完成的点场；ctx 取消时尽早返回其错误。
func forEach(ctx context.Context, workers, n int, fn func(i int)) error {
	if n == 0 {
		return ctx.Err()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)&1023 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				fn(i)
			}
			return nil
		})
	}
	return g.Wait()
}

// 文档注释：min-max 归一化到 [lo, hi]
// 约束：原地改写；所有值相等时整体置为 lo
func normalize(v []float64, lo, hi float64) {
	if len(v) == 0 {
		return
	}
	mn, mx := v[0], v[0]
	for _, x := range v[1:] {
		if x < mn {
			mn = x
		}
		if x > mx {
			mx = x
		}
	}
	span := mx - mn
	if span == 0 {
		for i := range v {
			v[i] = lo
		}
		return
	}
	k := (hi - lo) / span
	for i, x := range v {
		v[i] = lo + (x-mn)*k
		// 浮点误差可能越过上界
		if v[i] > hi {
			v[i] = hi
		}
	}
}

// percentile：线性插值百分位（p ∈ [0,100]）
func percentile(v []float64, p float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	pos := p / 100 * float64(len(s)-1)
	i := int(math.Floor(pos))
	if i >= len(s)-1 {
		return s[len(s)-1]
	}
	frac := pos - float64(i)
	return s[i] + (s[i+1]-s[i])*frac
}

// mustCover：点场长度必须与点集一致；不一致说明阶段执行顺序出错
func mustCover(stage string, n int, lens ...int) {
	for _, l := range lens {
		if l != n {
			panic(fmt.Sprintf("planet: %s: field covers %d of %d points", stage, l, n))
		}
	}
}
