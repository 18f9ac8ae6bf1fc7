package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/dataconnector/pkg/errors"
)

// Example demonstrates basic error creation with context.
func Example() {
	err := errors.New(errors.ErrorTypeConfig, "either table or query must be provided").
		WithDetail("host", "localhost").
		WithDetail("database", "sales")

	fmt.Println(err.Error())

	// Output:
	// config: either table or query must be provided (database=sales, host=localhost)
}

// ExampleWrap shows that wrapping keeps the delegate's error reachable.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeSourceRead, "failed to read CSV file").
		WithDetail("path", "data.csv")

	if errors.IsSourceRead(err) {
		fmt.Println("This is a source read failure")
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Original error was unexpected EOF")
	}

	// Output:
	// This is a source read failure
	// Original error was unexpected EOF
}

// ExampleDependencyMissing shows the message of a missing driver.
func ExampleDependencyMissing() {
	err := errors.DependencyMissing("MySQL driver (github.com/go-sql-driver/mysql)",
		"Rebuild without the nomysql build tag.")
	fmt.Println(err)

	// Output:
	// dependency_missing: MySQL driver (github.com/go-sql-driver/mysql) is not available. Rebuild without the nomysql build tag.
}
