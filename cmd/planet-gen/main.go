// planet-gen：离线生成与查询工具；结果文本写标准输出，日志写标准错误
package main

import (
	"os"

	"github.com/joho/godotenv"

	"neurosphere/internal/logger"
)

func main() {
	_ = godotenv.Load(".env")
	logger.Setup("planet-gen")
	if err := newRootCmd().Execute(); err != nil {
		logger.L().Error("planet_gen_error", "err", err)
		os.Exit(1)
	}
}
