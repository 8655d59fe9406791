package geo

import "math"

// Haversine：单位球上的大圆距离（弧度）
func Haversine(a, b Point) float64 {
	dLat := b.Lat - a.Lat
	dLon := b.Lon - a.Lon
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(a.Lat)*math.Cos(b.Lat)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Asin(math.Sqrt(Clamp(s, 0, 1)))
}

// 文档注释：沿大圆按方位角移动
// 约束：distance 为弧度（单位球）；结果经度折回 [0, 2π)。
func Move(p Point, bearing, distance float64) Point {
	lat := math.Asin(Clamp(math.Sin(p.Lat)*math.Cos(distance)+math.Cos(p.Lat)*math.Sin(distance)*math.Cos(bearing), -1, 1))
	lon := p.Lon + math.Atan2(
		math.Sin(bearing)*math.Sin(distance)*math.Cos(p.Lat),
		math.Cos(distance)-math.Sin(p.Lat)*math.Sin(lat),
	)
	return Point{Lat: lat, Lon: WrapLon(lon)}
}

// Bearing：a 指向 b 的初始方位角，范围 (-π, π]，0 为正北
func Bearing(a, b Point) float64 {
	dLon := b.Lon - a.Lon
	return math.Atan2(
		math.Sin(dLon)*math.Cos(b.Lat),
		math.Cos(a.Lat)*math.Sin(b.Lat)-math.Sin(a.Lat)*math.Cos(b.Lat)*math.Cos(dLon),
	)
}

var compass = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Compass：方位角转八方位标签
func Compass(theta float64) string {
	t := math.Mod(theta, 2*math.Pi)
	if t < 0 {
		t += 2 * math.Pi
	}
	idx := int(math.Round(t/(2*math.Pi)*8)) % 8
	return compass[idx]
}

// chordFromAngle：角距离转单位球弦长
func chordFromAngle(theta float64) float64 {
	if theta >= math.Pi {
		return 2
	}
	if theta <= 0 {
		return 0
	}
	return 2 * math.Sin(theta/2)
}

// angleFromChord2：弦长平方转角距离
func angleFromChord2(c2 float64) float64 {
	return 2 * math.Asin(Clamp(math.Sqrt(c2)/2, 0, 1))
}
