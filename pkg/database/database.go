package database

import (
	"fmt"
	"log"

	"hse_training_backend/internal/config"
	"hse_training_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedCatalog(db)

	return db, nil
}

// Migrate 建表；测试中对 sqlite 内存库复用同一份迁移
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Employee{},
		&model.TrainingModule{},
		&model.ContentModule{},
		&model.TrainingProgress{},
		&model.Assessment{},
		&model.AssessmentQuestion{},
		&model.AssessmentSubmission{},
		&model.CertificationPath{},
		&model.CertificationPathProgress{},
		&model.Alert{},
		&model.EquipmentCheck{},
	)
}

// seedCatalog 空库时写入基础培训目录，方便首次部署验收
func seedCatalog(db *gorm.DB) {
	var count int64
	db.Model(&model.TrainingModule{}).Count(&count)
	if count > 0 {
		return
	}

	defaultModules := []model.TrainingModule{
		{
			Code:             "HSE-IND",
			Title:            "安全入职培训",
			Category:         "general",
			Objectives:       []string{"现场通用安全规则", "应急疏散与报告流程"},
			DurationHours:    4,
			ValidityMonths:   12,
			RequiredForRoles: []string{"operator", "technician", "supervisor"},
			IsActive:         true,
		},
		{
			Code:             "HSE-ELEC",
			Title:            "电气作业安全",
			Category:         "electrical",
			Objectives:       []string{"低压作业隔离", "上锁挂牌与验电流程"},
			DurationHours:    8,
			ValidityMonths:   24,
			RequiredForRoles: []string{"technician"},
			PassingScore:     80,
			IsActive:         true,
		},
		{
			Code:             "HSE-HGT",
			Title:            "高处作业",
			Category:         "work_at_height",
			Objectives:       []string{"防坠落装备检查与使用", "救援预案"},
			DurationHours:    6,
			ValidityMonths:   12,
			RequiredForRoles: []string{"operator", "technician"},
			PassingScore:     85,
			IsActive:         true,
		},
	}
	for i := range defaultModules {
		db.Create(&defaultModules[i])
	}
}
