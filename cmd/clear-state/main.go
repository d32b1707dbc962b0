// Command-line tool to purge every persisted session and applied-jobs record.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"trizen-careers/internal/config"
	"trizen-careers/internal/storage"
)

func main() {
	cfg := config.Load()

	// Warning message
	fmt.Printf("⚠️ WARNING: This command will DELETE ALL client state (sessions, applied jobs) from the %s storage.\n", cfg.StorageDriver)
	fmt.Println("Every visitor will be signed out. Do you want to continue? (yes/no): ")

	if !confirmed(os.Stdin) {
		fmt.Println("Operation cancelled.")
		return
	}

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Storage failed to open: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("Failed to close storage: %v", err)
		}
	}()

	if err := purge(ctx, store); err != nil {
		log.Fatalf("Failed to purge client state: %v", err)
	}

	fmt.Println("✅ All client state removed successfully.")
}

func confirmed(in io.Reader) bool {
	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		return false
	}
	return strings.TrimSpace(strings.ToLower(input)) == "yes"
}

func purge(ctx context.Context, store storage.Store) error {
	p, ok := store.(storage.Purger)
	if !ok {
		return fmt.Errorf("storage %T cannot be purged", store)
	}
	return p.Purge(ctx)
}
