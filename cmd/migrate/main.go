package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arawak/annales/migrations"
)

var version = "dev"

func main() {
	fmt.Printf("annales-migrate version %s\n", version)

	dsn := os.Getenv("ANNALES_DB_DSN")
	if dsn == "" {
		fmt.Println("ANNALES_DB_DSN is required")
		os.Exit(1)
	}
	dir := flag.String("dir", "up", "migration direction: up, down or version")
	flag.Parse()

	var err error
	switch *dir {
	case "up":
		err = migrations.Up(dsn)
	case "down":
		err = migrations.Down(dsn)
	case "version":
		var v uint
		var dirty bool
		v, dirty, err = migrations.Version(dsn)
		if err == nil {
			fmt.Printf("schema version %d (dirty=%t)\n", v, dirty)
		}
	default:
		err = fmt.Errorf("unknown direction: %s", *dir)
	}
	if err != nil {
		fmt.Println("migration error:", err)
		os.Exit(1)
	}
}
