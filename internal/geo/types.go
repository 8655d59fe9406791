// 包 geo：单位球上的点集、球面距离与空间索引，供行星生成各阶段共享
package geo

import "math"

// 文档注释：球面点（弧度）
// 约束：Lat ∈ [-π/2, π/2]，Lon ∈ [0, 2π)；采样后不可变，作为所有点场的规范键。
type Point struct {
	Lat float64
	Lon float64
}

// Vec3：单位球面上的三维笛卡尔坐标
type Vec3 [3]float64

// Cartesian：经纬度转单位向量
func (p Point) Cartesian() Vec3 {
	cl := math.Cos(p.Lat)
	return Vec3{cl * math.Cos(p.Lon), cl * math.Sin(p.Lon), math.Sin(p.Lat)}
}

// FromCartesian：单位向量转经纬度，经度归一到 [0, 2π)
// 约束：输入需已归一化；z 超出 [-1,1] 的浮点误差会被截断
func FromCartesian(v Vec3) Point {
	return Point{Lat: math.Asin(Clamp(v[2], -1, 1)), Lon: WrapLon(math.Atan2(v[1], v[0]))}
}

// WrapLon：经度折回 [0, 2π)
func WrapLon(lon float64) float64 {
	lon = math.Mod(lon, 2*math.Pi)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	if lon >= 2*math.Pi {
		lon = 0
	}
	return lon
}

// Degrees：以度输出；经度 [0°, 360°) 中 ≥180° 的部分减 360，本初子午线保持为 0°
func (p Point) Degrees() (lat, lon float64) {
	lat = p.Lat * 180 / math.Pi
	lon = p.Lon * 180 / math.Pi
	if lon >= 180 {
		lon -= 360
	}
	return lat, lon
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }

func (v Vec3) Scale(k float64) Vec3 { return Vec3{v[0] * k, v[1] * k, v[2] * k} }

func (v Vec3) Norm() float64 { return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]) }

// Unit：归一化；零向量原样返回
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Clamp：截断到 [lo, hi]，用于反三角函数的定义域保护
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
