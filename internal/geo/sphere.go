package geo

import (
	"errors"
	"math"
)

// ErrEmptySample：半径非正导致点数为零
var ErrEmptySample = errors.New("sphere sample: point count must be positive")

// SampleCount：按球面积估算点数 N = round(4πR²)
func SampleCount(radius float64) int {
	return int(math.Round(4 * math.Pi * radius * radius))
}

// 文档注释：Fibonacci 格点采样
// 背景：近似均匀分布；第 i 个点倾角 arccos(1-2(i+0.5)/N)，方位角 π(1+√5)(i+0.5) mod 2π。
// 约束：输出顺序与数值只取决于 n；n<=0 直接报错，不返回空世界。
func FibonacciSphere(n int) ([]Point, error) {
	if n <= 0 {
		return nil, ErrEmptySample
	}
	golden := math.Pi * (1 + math.Sqrt(5))
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		k := float64(i) + 0.5
		phi := math.Acos(Clamp(1-2*k/float64(n), -1, 1))
		out[i] = Point{Lat: math.Pi/2 - phi, Lon: WrapLon(golden * k)}
	}
	return out, nil
}

// SampleRadius：按半径采样
func SampleRadius(radius float64) ([]Point, error) {
	if radius <= 0 {
		return nil, ErrEmptySample
	}
	return FibonacciSphere(SampleCount(radius))
}
