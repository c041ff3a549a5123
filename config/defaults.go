// =============================================================================
// 📦 RunLog 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Redis:     DefaultRedisConfig(),
		Database:  DefaultDatabaseConfig(),
		Cache:     DefaultCacheConfig(),
		Search:    DefaultSearchConfig(),
		LLM:       DefaultLLMConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		MaxBodyBytes:    1 << 20, // 1 MB
		RateLimitRPS:    100,
		RateLimitBurst:  200,
		CORSOrigin:      "",
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "postgres",
		Host:            "localhost",
		Port:            5432,
		User:            "runlog",
		Password:        "",
		Name:            "runlog",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultCacheConfig 返回默认结果缓存配置
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		KeyPrefix:         "runlog",
		TTL:               12 * time.Hour,
		MaxEntriesPerUser: 10,
	}
}

// DefaultSearchConfig 返回默认搜索配置
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Endpoint:   "https://html.duckduckgo.com/html/",
		Timeout:    10 * time.Second,
		MaxResults: 10,
		UserAgent:  "Mozilla/5.0 (compatible; runlog/1.0)",
	}
}

// DefaultLLMConfig 返回默认摘要模型配置
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:       "gemini",
		APIKey:         "",
		BaseURL:        "",
		Model:          "gemini-2.0-flash",
		Timeout:        2 * time.Minute,
		MaxRetries:     3,
		MaxInputTokens: 0,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "runlog",
		SampleRate:   0.1,
	}
}
