package config

import "os"

type Config struct {
	ListenAddr string
	DBPath     string
	PhotoPath  string
	ReportTZ   string
	LogLevel   string
	LogFile    string
}

func Load() *Config {
	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBPath:     getEnv("DB_PATH", "/data/courtlog.db"),
		PhotoPath:  getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		ReportTZ:   getEnv("REPORT_TZ", "Asia/Dubai"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFile:    getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
