package bootstrap

import (
	"errors"
	"log"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/pkg/password"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Teacher{},
		&entity.Account{},
		&entity.IdentityClaim{},
		&entity.RegistrationCode{},
		&entity.Announcement{},
		&entity.Assignment{},
		&entity.AssignmentSubmission{},
		&entity.AttendanceRecord{},
		&entity.ProgressRecord{},
		&entity.TransferRequest{},
	); err != nil {
		return err
	}
	return BackfillIdentityClaims(db)
}

// BackfillIdentityClaims claims the username and email of every principal
// that predates the identity_claims table. Rows whose claim is already held
// are skipped.
func BackfillIdentityClaims(db *gorm.DB) error {
	var claims []entity.IdentityClaim

	var accounts []entity.Account
	if err := db.Select("username", "email").Find(&accounts).Error; err != nil {
		return err
	}
	for _, a := range accounts {
		claims = append(claims, entity.ClaimsFor(entity.KindAccount, a.Username, a.Email)...)
	}

	var teachers []entity.Teacher
	if err := db.Select("username", "email").Find(&teachers).Error; err != nil {
		return err
	}
	for _, t := range teachers {
		claims = append(claims, entity.ClaimsFor(entity.KindTeacher, t.Username, t.Email)...)
	}

	if len(claims) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(claims, 200).Error
}

// DefaultRegistrationCodes are created on first start so the first admin,
// teacher and student can sign up.
var DefaultRegistrationCodes = []entity.RegistrationCode{
	{Code: "ADMIN2024", Role: entity.RoleAdmin},
	{Code: "TEACHER2024", Role: entity.RoleTeacher},
	{Code: "STUDENT2024", Role: entity.RoleStudent},
}

func SeedRegistrationCodes(db *gorm.DB) error {
	for _, code := range DefaultRegistrationCodes {
		var count int64
		if err := db.Model(&entity.RegistrationCode{}).
			Where("code = ?", code.Code).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&code).Error; err != nil {
				return err
			}
			log.Printf("Seeded registration code %s (%s)", code.Code, code.Role)
		}
	}

	return nil
}

// SeedAdminAccount creates admin/admin123. Development only.
func SeedAdminAccount(db *gorm.DB) error {
	var existing entity.Account
	err := db.Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		log.Println("Admin account already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var teacherCount int64
	if err := db.Model(&entity.Teacher{}).
		Where("username = ? OR email = ?", "admin", "admin@school.local").
		Count(&teacherCount).Error; err != nil {
		return err
	}
	if teacherCount > 0 {
		log.Println("A teacher already uses the admin username, skipping seed")
		return nil
	}

	hash, err := password.Hash("admin123")
	if err != nil {
		return err
	}

	admin := entity.Account{
		Username:     "admin",
		Email:        "admin@school.local",
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		FirstName:    "System",
		LastName:     "Administrator",
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		claims := entity.ClaimsFor(entity.KindAccount, admin.Username, admin.Email)
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&claims).Error
	})
	if err != nil {
		return err
	}

	log.Println("Admin account seeded successfully")
	log.Println("   Username: admin")
	log.Println("   Password: admin123")

	return nil
}
