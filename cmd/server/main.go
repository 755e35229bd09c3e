package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gameshop/internal/config"
	"gameshop/internal/handler"
	"gameshop/internal/infrastructure/cache"
	"gameshop/internal/infrastructure/database"
	"gameshop/internal/infrastructure/mq"
	"gameshop/internal/job"
	"gameshop/pkg/idgen"

	"github.com/go-redis/redis/v8"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig("config/config.yaml")

	// 初始化 ID 生成器
	idgen.Init(1)

	// 初始化数据库（mysql 或 sqlite，含表迁移和商品目录灌入）
	db := database.InitDB(&cfg.Database)

	// 初始化 Redis（未启用时购买操作不加分布式锁，只靠数据库事务）
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = cache.InitRedis(&cfg.Redis)
	}

	// 创建上下文（用于优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化 Kafka 并启动发件箱投递任务
	if cfg.Kafka.Enabled {
		mq.InitKafka(&cfg.Kafka)
		defer mq.CloseKafka()

		outboxSender := job.NewOutboxSender(db, cfg)
		go outboxSender.Start(ctx)
	}

	// 设置路由
	router := handler.SetupRouter(db, redisClient, cfg)

	// 启动 HTTP 服务
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Printf("服务启动，监听端口: %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 取消上下文，停止后台任务
	cancel()

	// 关闭 HTTP 服务（等待最多5秒）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务关闭异常: %v", err)
	}

	log.Println("服务已关闭")
}
