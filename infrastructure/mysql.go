package infrastructure

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resume-analyzer/domain"
)

// NewMySQLConnection opens the record store, migrates the schema and seeds
// the job postings table on first run.
func NewMySQLConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.JobPosting{}, &domain.AnalysisJob{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	if err := seedPostings(db); err != nil {
		return nil, err
	}

	return db, nil
}

func seedPostings(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.JobPosting{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting postings: %w", err)
	}
	if count > 0 {
		return nil
	}

	postings := []domain.JobPosting{
		{
			Title: "Backend Engineer",
			Description: "Backend engineer building scalable services in Go or PHP " +
				"with MySQL, RabbitMQ, REST API design and Docker-based deployments.",
			Skills: []string{"golang", "mysql", "rabbitmq", "rest api", "docker"},
		},
		{
			Title: "Data Analyst",
			Description: "Analyst turning raw data into reporting with SQL, Python, " +
				"Excel and Tableau dashboards for business stakeholders.",
			Skills: []string{"sql", "python", "excel", "tableau", "data analysis"},
		},
	}

	if err := db.Create(&postings).Error; err != nil {
		return fmt.Errorf("seeding postings: %w", err)
	}
	return nil
}
