package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	appdb "github.com/yourorg/notesapi/internal/db"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("==== NotesAPI CLI ====")
		fmt.Println("1) Health check API")
		fmt.Println("2) Seed database (create sample user)")
		fmt.Println("3) List users")
		fmt.Println("4) Exit")
		fmt.Print("Select option: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)
		switch choice {
		case "1":
			doHealthCheck()
		case "2":
			doSeed()
		case "3":
			doListUsers()
		case "4":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Invalid option")
		}
		fmt.Println()
	}
}

func doHealthCheck() {
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://127.0.0.1:8080"
	}
	url := strings.TrimRight(base, "/") + "/health"
	resp, err := http.Get(url)
	if err != nil {
		fmt.Println("Health: ERROR:", err)
		return
	}
	defer resp.Body.Close()
	fmt.Println("Health status:", resp.Status)
}

func doSeed() {
	db, err := appdb.Connect()
	if err != nil {
		log.Println("DB connect error:", err)
		return
	}
	defer db.Close()
	if err := appdb.EnsureSchema(db); err != nil {
		log.Println("Ensure schema error:", err)
		return
	}
	seedUser(db)
}

func doListUsers() {
	db, err := appdb.Connect()
	if err != nil {
		log.Println("DB connect error:", err)
		return
	}
	defer db.Close()

	rows, err := db.Query("SELECT id, username, created_at FROM users ORDER BY id")
	if err != nil {
		log.Println("List users: query error:", err)
		return
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			id        int64
			username  string
			createdAt sql.NullTime
		)
		if err := rows.Scan(&id, &username, &createdAt); err != nil {
			continue
		}
		fmt.Printf("  %d  %s  (created %s)\n", id, username, createdAt.Time.Format("2006-01-02"))
		count++
	}
	fmt.Printf("Total: %d users\n", count)
}

func seedUser(db *sql.DB) {
	// Creates a sample user if not exists
	username := "demo"
	password := "N0tes-demo-pass"
	var exists int
	_ = db.QueryRow("SELECT 1 FROM users WHERE username = ?", username).Scan(&exists)
	if exists == 1 {
		fmt.Println("Seed: user 'demo' already exists")
		return
	}
	hash, err := bcryptHash(password)
	if err != nil {
		fmt.Println("Seed: bcrypt error:", err)
		return
	}
	_, err = db.Exec("INSERT INTO users (username, password_hash) VALUES (?,?)", username, hash)
	if err != nil {
		fmt.Println("Seed: insert error:", err)
		return
	}
	fmt.Printf("Seed: created user %q with password %q\n", username, password)
}

func bcryptHash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}
