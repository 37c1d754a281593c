package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/devfolio-next/internal/config"
	"github.com/devfolio-next/internal/logger"
	"github.com/devfolio-next/internal/models"
	"github.com/devfolio-next/internal/repository"
	"github.com/devfolio-next/internal/service"
)

// 初始化一个演示账号，重复执行时跳过已存在的邮箱
func main() {
	var (
		email       string
		password    string
		displayName string
	)
	flag.StringVar(&email, "email", "demo@example.com", "账号邮箱")
	flag.StringVar(&password, "password", "", "账号密码（必填）")
	flag.StringVar(&displayName, "name", "Demo", "显示名称")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if password == "" {
		stdLog.Fatalf("-password is required")
	}
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBOptions{
		Pool: models.DBPoolConfig{
			MaxOpenConns: cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns: cfg.Database.Pool.MaxIdleConns,
		},
	}); err != nil {
		stdLog.Fatalf("database init failed: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("database migration failed: %v", err)
	}

	users := repository.NewUserRepository(models.DB)
	hasher := service.NewPasswordHasher(cfg.Security.BcryptCost)
	flow := service.NewAuthFlowService(service.AuthFlowDeps{
		Users:          users,
		Hasher:         hasher,
		Auth:           cfg.Auth,
		PasswordPolicy: cfg.Security.PasswordPolicy,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	user, err := flow.Register(ctx, service.RegisterInput{
		DisplayName: displayName,
		Email:       email,
		Password:    password,
	})
	switch {
	case errors.Is(err, service.ErrEmailInUse):
		stdLog.Printf("account already exists: %s", email)
	case err != nil:
		stdLog.Fatalf("create account failed: %v", err)
	default:
		stdLog.Printf("created account %d: %s", user.ID, user.Email)
	}
}
