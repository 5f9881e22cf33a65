package db

import (
	"log"
	"os"
	"songlin/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=songlin port=5432 sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	// Auto Migrate
	err = DB.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Comment{},
		&models.CommentLike{},
		&models.DenylistEntry{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	// Seed badge definitions and demo subjects
	seedBadges()
	seedSubjects()
}

func seedBadges() {
	// 已有徽章定义则跳过
	var count int64
	DB.Model(&models.Badge{}).Count(&count)
	if count > 0 {
		log.Println("Badges already seeded, skipping")
		return
	}

	// 预设徽章：自动授予的按活跃度统计口径递进，手动授予的留给管理员
	badges := []models.Badge{
		{Slug: "first-voice", Name: "初鸣", Tier: models.TierBronze, Category: "activity", AutoAward: true, CriteriaType: models.CriteriaApprovedComments, CriteriaValue: 1},
		{Slug: "steady-voice", Name: "常鸣", Tier: models.TierSilver, Category: "activity", AutoAward: true, CriteriaType: models.CriteriaApprovedComments, CriteriaValue: 50},
		{Slug: "forest-voice", Name: "林声", Tier: models.TierGold, Category: "activity", AutoAward: true, CriteriaType: models.CriteriaApprovedComments, CriteriaValue: 500},
		{Slug: "well-liked", Name: "众望", Tier: models.TierSilver, Category: "community", AutoAward: true, CriteriaType: models.CriteriaLikesReceived, CriteriaValue: 100},
		{Slug: "old-pine", Name: "老松", Tier: models.TierPlatinum, Category: "tenure", AutoAward: true, CriteriaType: models.CriteriaMemberDays, CriteriaValue: 365},
		{Slug: "pillar", Name: "栋梁", Tier: models.TierLegendary, Category: "community", AutoAward: false},
		{Slug: "founding-member", Name: "创始", Tier: models.TierSpecial, Category: "tenure", AutoAward: false},
	}

	for _, badge := range badges {
		if err := DB.Create(&badge).Error; err != nil {
			log.Printf("Failed to create badge %s: %v", badge.Slug, err)
		}
	}
	log.Println("Initial badges created successfully")
}

// seedSubjects 内容条目由外部系统同步，这里放两条演示数据便于本地起服务
func seedSubjects() {
	var count int64
	DB.Model(&models.Subject{}).Count(&count)
	if count > 0 {
		return
	}

	subjects := []models.Subject{
		{Pid: "sl000001", Title: "社区指南"},
		{Pid: "sl000002", Title: "本周话题：你在读什么"},
	}
	for _, subject := range subjects {
		if err := DB.Create(&subject).Error; err != nil {
			log.Printf("Failed to create subject %s: %v", subject.Pid, err)
		}
	}
	log.Println("Demo subjects created successfully")
}
