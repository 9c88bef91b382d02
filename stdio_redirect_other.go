//go:build !unix

package main

import (
	"fmt"
	"os"
	"time"
)

// Without dup2 only Go-level writes are captured; runtime panics still go
// to the original stderr.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open stdio log: %w", err)
	}
	os.Stdout, os.Stderr = f, f
	fmt.Fprintf(f, "--- binaryrain %s pid %d\n", time.Now().Format(time.RFC3339), os.Getpid())
	return nil
}
