// scripts/create_operator.go
// Seeds the first admin operator for a fresh scan station.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Shravan4507/orbitx-checkin-engine/config"
	"github.com/Shravan4507/orbitx-checkin-engine/database"
	"github.com/Shravan4507/orbitx-checkin-engine/models"
)

func main() {
	username := flag.String("username", "admin", "operator username")
	password := flag.String("password", "", "operator password (required)")
	role := flag.String("role", "admin", `"admin" or "volunteer"`)
	name := flag.String("name", "", "display name")
	flag.Parse()

	if *password == "" {
		log.Fatal("password is required")
	}
	if *role != "admin" && *role != "volunteer" {
		log.Fatalf("unknown role %q", *role)
	}

	cfg := config.Load()
	database.Connect(cfg)

	uname := strings.ToLower(strings.TrimSpace(*username))

	var existing models.Operator
	if err := database.DB.Where("username = ?", uname).First(&existing).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Fatalf("failed to query operators: %v", err)
		}
	} else {
		fmt.Println("operator already exists:", uname)
		os.Exit(0)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	op := models.Operator{
		Username: uname,
		Password: string(hashed),
		Role:     *role,
		Name:     strings.TrimSpace(*name),
	}
	if err := database.DB.Create(&op).Error; err != nil {
		log.Fatalf("failed to insert operator: %v", err)
	}

	fmt.Printf("operator %q created with role %q\n", uname, *role)
}
