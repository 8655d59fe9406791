// 包 noise：多倍频三维噪声场，统一封装 Perlin/OpenSimplex 两种后端
package noise

import (
	"errors"
	"fmt"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"

	"neurosphere/internal/geo"
)

// Kind：噪声后端
type Kind string

const (
	KindPerlin  Kind = "perlin"
	KindSimplex Kind = "simplex"
)

var ErrLayers = errors.New("noise: octaves and coefficients must be non-empty and of equal length")

// Source：单层三维噪声
type Source interface {
	Noise3D(x, y, z float64) float64
}

type layer struct {
	src Source
	k   float64
}

// 文档注释：叠加噪声场
// 背景：每个 (octaves, coefficient) 组成一层，值为 Σ k·noise_octaves(x,y,z)。
// 约束：构建后只读，可被多个 goroutine 并发求值。
type Field struct {
	layers []layer
}

// New：按后端与种子构建噪声场
// 约束：octaves 与 coefficients 等长且非空；octave 必须 >= 1
func New(kind Kind, seed int64, octaves []int, coefficients []float64) (*Field, error) {
	if len(octaves) == 0 || len(octaves) != len(coefficients) {
		return nil, ErrLayers
	}
	f := &Field{layers: make([]layer, len(octaves))}
	for i, o := range octaves {
		if o < 1 {
			return nil, fmt.Errorf("noise: octave %d at position %d must be >= 1", o, i)
		}
		var src Source
		switch kind {
		case KindSimplex:
			src = newSimplex(seed, o)
		case KindPerlin, "":
			src = perlin.NewPerlin(2, 2, int32(o), seed)
		default:
			return nil, fmt.Errorf("noise: unknown kind %q", kind)
		}
		f.layers[i] = layer{src: src, k: coefficients[i]}
	}
	return f, nil
}

// At：在单位向量（可叠加平移）处求值
func (f *Field) At(v geo.Vec3) float64 {
	s := 0.0
	for _, l := range f.layers {
		s += l.k * l.src.Noise3D(v[0], v[1], v[2])
	}
	return s
}

// simplexOctaves：OpenSimplex 分形叠加，频率逐层翻倍、振幅减半，与 Perlin(alpha=2,beta=2) 对齐
type simplexOctaves struct {
	n       opensimplex.Noise
	octaves int
}

func newSimplex(seed int64, octaves int) *simplexOctaves {
	return &simplexOctaves{n: opensimplex.New(seed), octaves: octaves}
}

func (s *simplexOctaves) Noise3D(x, y, z float64) float64 {
	total := 0.0
	freq := 1.0
	amp := 1.0
	for i := 0; i < s.octaves; i++ {
		total += s.n.Eval3(x*freq, y*freq, z*freq) * amp
		freq *= 2
		amp /= 2
	}
	return total
}
