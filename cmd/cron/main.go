package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xinyuan_tech/billing-service/internal/biz"
	"xinyuan_tech/billing-service/internal/conf"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	klog "github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
	_ "go.uber.org/automaxprocs"
)

var (
	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

// CronApp Cron 应用结构
type CronApp struct {
	billingUsecase *biz.BillingUsecase
}

func newCronApp(billingUsecase *biz.BillingUsecase) *CronApp {
	return &CronApp{billingUsecase: billingUsecase}
}

func main() {
	flag.Parse()

	// 初始化配置
	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	logger := klog.With(klog.NewStdLogger(os.Stdout),
		"ts", klog.DefaultTimestamp,
		"caller", klog.DefaultCaller,
		"service.name", "billing-cron",
	)

	// 初始化应用
	app, cleanup, err := wireApp(&bc, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// 创建定时任务调度器（支持秒级调度）
	cronScheduler := cron.New(cron.WithSeconds())

	// 1. 过期订阅下线 - 每天凌晨 2 点执行
	_, err = cronScheduler.AddFunc("0 0 2 * * *", func() {
		log.Println("[CRON] Starting expired subscription sweep...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		count, ids, err := app.billingUsecase.DeactivateExpiredSubscriptions(ctx)
		if err != nil {
			log.Printf("[CRON] Error deactivating expired subscriptions: %v", err)
		} else {
			log.Printf("[CRON] Deactivated %d expired subscriptions: %v", count, ids)
			log.Println("[CRON] Finished expired subscription sweep")
		}
	})
	if err != nil {
		log.Printf("Failed to add expiry sweep job: %v", err)
	}

	// 2. 续费订单生成 - 每天凌晨 3 点执行
	_, err = cronScheduler.AddFunc("0 0 3 * * *", func() {
		log.Println("[CRON] Starting renewal order sweep...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		created, results, err := app.billingUsecase.CreateRenewalOrders(ctx)
		if err != nil {
			log.Printf("[CRON] Error creating renewal orders: %v", err)
		} else {
			log.Printf("[CRON] Renewal sweep completed: orders created=%d", created)
			for _, result := range results {
				if result.Success {
					log.Printf("[CRON] Renewal order: subscription=%d, order=%d",
						result.SubscriptionID, result.OrderID)
				} else {
					log.Printf("[CRON] Renewal skipped/failed: subscription=%d, error=%s",
						result.SubscriptionID, result.ErrorMessage)
				}
			}
		}
		log.Println("[CRON] Finished renewal order sweep")
	})
	if err != nil {
		log.Printf("Failed to add renewal sweep job: %v", err)
	}

	// 启动定时任务
	cronScheduler.Start()
	log.Println("========================================")
	log.Println("Cron jobs started successfully")
	log.Println("Scheduled jobs:")
	log.Println("  - Expiry sweep:    Every day at 02:00")
	log.Println("  - Renewal orders:  Every day at 03:00")
	log.Println("========================================")

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gracefully...")

	// 停止定时任务
	ctx := cronScheduler.Stop()
	select {
	case <-ctx.Done():
		log.Println("Cron jobs stopped gracefully")
	case <-time.After(5 * time.Second):
		log.Println("Cron jobs forced to stop after timeout")
	}
}
