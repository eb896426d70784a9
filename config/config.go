// Package config はアプリケーション設定を管理します。
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	// 入力データ（ファイルパスまたはURL）
	DataFile string

	// SVG・HTMLの出力先ディレクトリ
	OutputDir string

	// ヒートマップに表示する年数
	Years int

	// データ取得のHTTPタイムアウト
	HTTPTimeout time.Duration

	// Stravaから取得したデータの保存先ディレクトリ
	DataDir string

	// ログの出力先ディレクトリ
	LogDir string

	// Strava API認証情報
	StravaClientID     string
	StravaClientSecret string
	StravaRefreshToken string

	// リフレッシュトークンが更新された場合の書き込み先
	EnvFile string
}

// Load は.envファイルと環境変数から設定を読み込み、Configインスタンスを生成します。
func Load() (*Config, error) {
	// 実行ファイルと同じディレクトリの.envを優先して読み込む
	if exePath, err := os.Executable(); err == nil {
		envPath := filepath.Join(filepath.Dir(exePath), ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// カレントディレクトリの.env（既に設定済みの値は上書きしない）
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables")
	}

	years, err := strconv.Atoi(getEnv("MILECAL_YEARS", "5"))
	if err != nil || years <= 0 {
		return nil, errors.New("MILECAL_YEARS must be a positive integer")
	}

	timeoutSecs, err := strconv.Atoi(getEnv("MILECAL_HTTP_TIMEOUT_SECONDS", "30"))
	if err != nil || timeoutSecs <= 0 {
		return nil, errors.New("MILECAL_HTTP_TIMEOUT_SECONDS must be a positive integer")
	}

	return &Config{
		DataFile:           getEnv("MILECAL_DATA_FILE", filepath.Join("data", "run_activities.json")),
		OutputDir:          getEnv("MILECAL_OUTPUT_DIR", "site"),
		Years:              years,
		HTTPTimeout:        time.Duration(timeoutSecs) * time.Second,
		DataDir:            getEnv("MILECAL_DATA_DIR", "data"),
		LogDir:             getEnv("LOGS_FOLDER", "logs"),
		StravaClientID:     getEnv("STRAVA_CLIENT_ID", ""),
		StravaClientSecret: getEnv("STRAVA_CLIENT_SECRET", ""),
		StravaRefreshToken: getEnv("STRAVA_REFRESH_TOKEN", ""),
		EnvFile:            getEnv("MILECAL_ENV_FILE", ".env"),
	}, nil
}

// ValidateStrava はStrava同期に必要な認証情報が揃っているかを確認します。
func (c *Config) ValidateStrava() error {
	var missing []error
	if c.StravaClientID == "" {
		missing = append(missing, errors.New("STRAVA_CLIENT_ID is not set"))
	}
	if c.StravaClientSecret == "" {
		missing = append(missing, errors.New("STRAVA_CLIENT_SECRET is not set"))
	}
	if c.StravaRefreshToken == "" {
		missing = append(missing, errors.New("STRAVA_REFRESH_TOKEN is not set"))
	}
	return errors.Join(missing...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
