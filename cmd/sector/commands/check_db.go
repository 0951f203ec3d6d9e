package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/sectorlens/internal/store"
	"github.com/wonny/sectorlens/pkg/database"
)

var checkDBCmd = &cobra.Command{
	Use:   "check-db",
	Short: "PostgreSQL 연결 테스트",
	Long: `postgres 출력 sink 연결을 테스트합니다.

이 명령어는:
- config에서 DATABASE_URL 로드
- 데이터베이스 연결 생성 및 Health Check
- sector 스키마/테이블 생성 (없으면)

Example:
  go run ./cmd/sector check-db
  go run ./cmd/sector check-db --env production`,
	RunE: runCheckDB,
}

func init() {
	rootCmd.AddCommand(checkDBCmd)
}

func runCheckDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== SectorLens Database Connection Test ===")

	fmt.Println("Loading configuration...")
	cfg, log, err := loadRuntime()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	if !cfg.Database.Enabled() {
		return fmt.Errorf("❌ %w", database.ErrDisabled)
	}
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("Connecting to database...")
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()
	fmt.Println("✅ Database connection established")

	fmt.Println("Getting health status...")
	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}
	fmt.Println("✅ Health Check Results:")
	fmt.Printf("   Healthy: %v\n", status.Healthy)
	fmt.Printf("   Response Time: %v\n", status.ResponseTime)
	fmt.Printf("   Timestamp: %v\n\n", status.Timestamp.Format(time.RFC3339))

	fmt.Println("📊 Connection Pool Statistics:")
	fmt.Printf("   Max Connections: %d\n", status.Stats.MaxConns)
	fmt.Printf("   Total Connections: %d\n", status.Stats.TotalConns)
	fmt.Printf("   Acquired Connections: %d\n", status.Stats.AcquiredConns)
	fmt.Printf("   Idle Connections: %d\n\n", status.Stats.IdleConns)

	fmt.Println("Ensuring sector schema...")
	if err := store.NewPostgresSink(db.Pool, "", log).EnsureSchema(ctx); err != nil {
		return fmt.Errorf("❌ Failed to ensure schema: %w", err)
	}
	fmt.Println("✅ sector.fundamentals / sector.valuations / sector.signals ready")

	fmt.Println("\n✅ All checks passed!")
	return nil
}

// maskPassword hides the password of a postgres URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
