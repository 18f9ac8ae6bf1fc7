package config_test

import (
	"fmt"
	"log"
	"time"

	"github.com/ajitpratap0/dataconnector/pkg/config"
)

// ExampleNewDefault demonstrates creating a configuration with default values.
func ExampleNewDefault() {
	cfg := config.NewDefault()

	fmt.Printf("Name: %s\n", cfg.Name)
	fmt.Printf("Log Level: %s\n", cfg.Logging.Level)
	fmt.Printf("Connection Timeout: %s\n", cfg.Timeouts.Connection)

	// Output:
	// Name: dataconnector
	// Log Level: info
	// Connection Timeout: 10s
}

// ExampleConfig_Validate shows how to validate a configuration before use.
func ExampleConfig_Validate() {
	cfg := config.NewDefault()
	cfg.Timeouts.Query = 2 * time.Minute

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("Configuration is valid!")

	// Output:
	// Configuration is valid!
}

// ExampleSQLTarget_Statement shows query precedence over table.
func ExampleSQLTarget_Statement() {
	tableOnly := config.SQLTarget{Table: "orders"}
	both := config.SQLTarget{Table: "orders", Query: "SELECT id FROM orders WHERE total > 100"}

	fmt.Println(tableOnly.Statement())
	fmt.Println(both.Statement())

	// Output:
	// SELECT * FROM orders
	// SELECT id FROM orders WHERE total > 100
}
