package geo

import "sort"

// 文档注释：KD-Tree 空间索引（三维单位向量）
// 背景：球面上弦长与大圆距离单调对应，在笛卡尔空间做中位数分割即可支持 k 近邻与半径查询。
// 约束：x/y/z 三轴轮换分割；查询点与索引点重合时不报错，自身匹配由调用方过滤。
type Index struct {
	pts  []Point
	vec  []Vec3
	root *kdNode
}

type kdNode struct {
	idx int
	ax  int
	l   *kdNode
	r   *kdNode
}

// Neighbor：近邻结果，Dist 为大圆距离（弧度）
type Neighbor struct {
	Index int
	Dist  float64
}

// NewIndex：对点集建索引；点集按值复制，调用方后续修改不影响索引
func NewIndex(pts []Point) *Index {
	ix := &Index{pts: append([]Point(nil), pts...), vec: make([]Vec3, len(pts))}
	ids := make([]int, len(pts))
	for i, p := range pts {
		ix.vec[i] = p.Cartesian()
		ids[i] = i
	}
	ix.root = ix.build(ids, 0)
	return ix
}

func (ix *Index) Len() int { return len(ix.pts) }

func (ix *Index) Point(i int) Point { return ix.pts[i] }

func (ix *Index) build(ids []int, depth int) *kdNode {
	if len(ids) == 0 {
		return nil
	}
	ax := depth % 3
	mid := len(ids) / 2
	ix.selectNth(ids, mid, ax)
	node := &kdNode{idx: ids[mid], ax: ax}
	node.l = ix.build(ids[:mid], depth+1)
	node.r = ix.build(ids[mid+1:], depth+1)
	return node
}

// 原地 nth 元素选择（按轴坐标）
func (ix *Index) selectNth(a []int, n int, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := ix.partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func (ix *Index) partition(a []int, lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if ix.less(a[j], pv, ax) {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

// 同坐标时按下标排序，保证构建结果确定
func (ix *Index) less(x, y, ax int) bool {
	if ix.vec[x][ax] != ix.vec[y][ax] {
		return ix.vec[x][ax] < ix.vec[y][ax]
	}
	return x < y
}

func dist2(a, b Vec3) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return dx*dx + dy*dy + dz*dz
}

// 文档注释：k 近邻查询
// 返回：按距离升序（同距离按下标）排列，长度为 min(k, Len())。
func (ix *Index) Nearest(q Point, k int) []Neighbor {
	if k <= 0 || ix.root == nil {
		return nil
	}
	if k > len(ix.pts) {
		k = len(ix.pts)
	}
	qv := q.Cartesian()
	type cand struct {
		idx int
		d2  float64
	}
	best := make([]cand, 0, k+1)
	better := func(a, b cand) bool {
		if a.d2 != b.d2 {
			return a.d2 < b.d2
		}
		return a.idx < b.idx
	}
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		c := cand{idx: n.idx, d2: dist2(qv, ix.vec[n.idx])}
		if len(best) < k || better(c, best[len(best)-1]) {
			pos := sort.Search(len(best), func(i int) bool { return better(c, best[i]) })
			best = append(best, cand{})
			copy(best[pos+1:], best[pos:])
			best[pos] = c
			if len(best) > k {
				best = best[:k]
			}
		}
		diff := qv[n.ax] - ix.vec[n.idx][n.ax]
		first, second := n.l, n.r
		if diff > 0 {
			first, second = n.r, n.l
		}
		dfs(first)
		// 仅当分割平面距离不超过当前第 k 优距离时才遍历另一侧
		if len(best) < k || diff*diff <= best[len(best)-1].d2 {
			dfs(second)
		}
	}
	dfs(ix.root)
	out := make([]Neighbor, len(best))
	for i, c := range best {
		out[i] = Neighbor{Index: c.idx, Dist: angleFromChord2(c.d2)}
	}
	return out
}

// 文档注释：半径查询
// 约束：radius 为大圆距离（弧度），包含边界；结果按下标升序，包含与查询点重合的索引点。
func (ix *Index) Within(q Point, radius float64) []int {
	if radius < 0 || ix.root == nil {
		return nil
	}
	qv := q.Cartesian()
	c := chordFromAngle(radius)
	lim := c * c
	var out []int
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		if dist2(qv, ix.vec[n.idx]) <= lim {
			out = append(out, n.idx)
		}
		diff := qv[n.ax] - ix.vec[n.idx][n.ax]
		if diff <= 0 || diff*diff <= lim {
			dfs(n.l)
		}
		if diff >= 0 || diff*diff <= lim {
			dfs(n.r)
		}
	}
	dfs(ix.root)
	sort.Ints(out)
	return out
}
