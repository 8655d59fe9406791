package params

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"neurosphere/internal/logger"
)

// 文档注释：从 YAML/JSON 文件加载参数
// 背景：在 Default() 之上解码，文件只需给出与基线不同的字段；JSON 作为 YAML 子集同样可读。
// 约束：加载后立即校验；校验失败返回 ErrInvalidParameter 包装错误，不做部分生成。
func LoadFile(path string) (Generation, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Generation{}, err
	}
	return Parse(b)
}

// Parse：解析参数文档
func Parse(b []byte) (Generation, error) {
	g := Default()
	if err := yaml.Unmarshal(b, &g); err != nil {
		return Generation{}, fmt.Errorf("%w: decode: %v", ErrInvalidParameter, err)
	}
	if err := Validate(g); err != nil {
		return Generation{}, err
	}
	return g, nil
}

// ApplyEnv：环境变量覆盖（PLANET_SEED、PLANET_RADIUS、GEN_WORKERS）
// 约束：解析失败的值忽略并保留原值
func ApplyEnv(g Generation) Generation {
	out := g.Clone()
	if s := os.Getenv("PLANET_SEED"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			out.Seed = &n
		}
	}
	if s := os.Getenv("PLANET_RADIUS"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			out.Radius = f
		}
	}
	if s := os.Getenv("GEN_WORKERS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			out.Workers = n
		}
	}
	return out
}

// 文档注释：补全种子
// 背景：缺省时在 [0, 10000] 内抽取一个种子并写入返回的副本，调用方据此记录以便复现。
func WithSeed(g Generation) Generation {
	out := g.Clone()
	if out.Seed == nil {
		s := rand.Int63n(10001)
		out.Seed = &s
		logger.L().Info("planet_seed_drawn", "seed", s)
	}
	return out
}

// Encode：序列化为 YAML，用于 CLI 输出解析后的参数
func Encode(g Generation) ([]byte, error) { return yaml.Marshal(g) }
