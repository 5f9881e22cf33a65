package config

import (
	"os"
	"strconv"
	"time"
)

// Config 审核引擎的运营参数。阈值属于调参项而非结构设计，
// 全部走环境变量，带默认值，便于线上随时调整。
type Config struct {
	MaxBodyLength    int // 评论正文最大长度（rune）
	ClassifyMinChars int // 低于该长度不做词库分类，避免短回复误伤
	MinTrustLevel    int // 低于该信任等级的账号禁止发言

	// spamScore 分档阈值：>= SpamThreshold 判 spam，>= PendingThreshold 判 pending
	SpamThreshold    float64
	PendingThreshold float64

	// 启发式权重
	DuplicateScore  float64       // 短窗口内重复内容加分
	NewAccountScore float64       // 新注册账号加分
	LinkDensityMax  float64       // 链接数/词数超过该比例开始加分
	LinkScore       float64       // 链接密度超标加分
	NewAccountDays  int           // 视为新账号的天数
	DuplicateWindow time.Duration // 重复内容检测窗口

	// 外部依赖（封禁库、活跃窗口）的调用预算
	DependencyTimeout time.Duration
	RetryBackoff      time.Duration
}

// Load 从环境变量读取配置，未设置的项使用默认值
func Load() *Config {
	return &Config{
		MaxBodyLength:    getInt("MOD_MAX_BODY_LENGTH", 4000),
		ClassifyMinChars: getInt("MOD_CLASSIFY_MIN_CHARS", 4),
		MinTrustLevel:    getInt("MOD_MIN_TRUST_LEVEL", 1),

		SpamThreshold:    getFloat("MOD_SPAM_THRESHOLD", 0.8),
		PendingThreshold: getFloat("MOD_PENDING_THRESHOLD", 0.4),

		DuplicateScore:  getFloat("MOD_DUPLICATE_SCORE", 0.5),
		NewAccountScore: getFloat("MOD_NEW_ACCOUNT_SCORE", 0.4),
		LinkDensityMax:  getFloat("MOD_LINK_DENSITY_MAX", 0.2),
		LinkScore:       getFloat("MOD_LINK_SCORE", 0.3),
		NewAccountDays:  getInt("MOD_NEW_ACCOUNT_DAYS", 1),
		DuplicateWindow: getDuration("MOD_DUPLICATE_WINDOW", 10*time.Minute),

		DependencyTimeout: getDuration("MOD_DEPENDENCY_TIMEOUT", 800*time.Millisecond),
		RetryBackoff:      getDuration("MOD_RETRY_BACKOFF", 150*time.Millisecond),
	}
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
