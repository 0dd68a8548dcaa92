package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/adeputra/pharmacy-inventory/internal/auth"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the initial superadmin account",
	Long:  `Seed the database with the superadmin account used to bootstrap the system.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		const (
			superadminNIK   = "12345678"
			superadminEmail = "superadmin@pharmacy.local"
			superadminName  = "Ade Putra Panjaitan"
		)

		var exists int
		row := gormDB.Raw("SELECT 1 FROM users WHERE nik = ?", superadminNIK).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("superadmin already exists:", superadminNIK)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("Sup3r@dmin"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash superadmin password: %v", err)
		}

		err = gormDB.Exec(
			"INSERT INTO users (name, email, nik, password, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
			superadminName, superadminEmail, superadminNIK, string(hash), auth.RoleSuperAdmin,
		).Error
		if err != nil {
			log.Fatalf("failed to insert superadmin: %v", err)
		}

		fmt.Println("Seeded superadmin user:", superadminEmail)
		fmt.Println("Default password must be changed after first login.")
	},
}
