package stub

import (
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens the stub's SQLite database and migrates the schema. Pass
// ":memory:" for an ephemeral database, as the integration tests do.
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	if err := autoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// SeedAdmin ensures a subadmin login exists so the agent can authenticate
// against a fresh stub.
func SeedAdmin(db *gorm.DB, email, password string) string {
	var existing Account
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return existing.ID
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Stub] seed admin: %v", err)
		return ""
	}
	acct := Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		UserType:     "SUBADMIN",
		Name:         "Seed Admin",
		CreatedAt:    time.Now(),
	}
	if err := db.Create(&acct).Error; err != nil {
		log.Printf("[Stub] seed admin: %v", err)
		return ""
	}
	return acct.ID
}
