// 手动触发一轮告警重算脚本
//
// 告警重算已集成到主应用的后台循环中（默认每 15 分钟一次）。
// 此脚本仅用于手动触发，例如首次部署或批量导入培训数据后。
//
// 用法: go run scripts/recompute_alerts.go

package main

import (
	"context"
	"log"
	"os"

	"hse_training_backend/internal/config"
	"hse_training_backend/internal/repository"
	"hse_training_backend/internal/service"
	"hse_training_backend/pkg/database"
	"hse_training_backend/pkg/logger"
	"hse_training_backend/pkg/offline"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Redis 初始化失败: %v", err)
	}

	employeeRepo := repository.NewEmployeeRepository(db)
	trainingRepo := repository.NewTrainingRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	certificationRepo := repository.NewCertificationRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)

	persist := service.NewPersistService(offline.NewRedisStore(rdb), cfg.Remote.WriteTimeout())
	training := service.NewTrainingService(trainingRepo, progressRepo, persist)
	compliance := service.NewComplianceService(employeeRepo, trainingRepo, training)
	certification := service.NewCertificationService(certificationRepo, persist)
	alerts := service.NewAlertService(alertRepo, employeeRepo, equipmentRepo, compliance, certification)

	emitted, err := alerts.Recompute(context.Background())
	if err != nil {
		log.Fatalf("告警重算失败: %v", err)
	}
	log.Printf("告警重算完成，新增 %d 条告警", emitted)
}
