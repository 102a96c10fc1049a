package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"SpectraFM/config"
	"SpectraFM/logger"
	"SpectraFM/storage"

	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Check the object store",
	Long:  `Connect to the configured object store and run a put/get/delete roundtrip, so a broken MinIO setup surfaces before the first upload does.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: logger.LogLevel(cfg.LogLevel)})

		fmt.Printf("Store backend: %s\n", cfg.StoreBackend)

		var store storage.Store
		var err error
		switch cfg.StoreBackend {
		case "minio":
			fmt.Printf("MinIO endpoint: %s, bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)
			store, err = storage.NewMinioStore(cfg)
			if err != nil {
				log.Fatalf("Cannot connect to MinIO: %v", err)
			}
		default:
			store = storage.NewMemoryStore()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		key := "diagnostics/roundtrip.txt"
		payload := "store roundtrip at " + time.Now().Format(time.RFC3339)

		if err := store.Put(ctx, key, strings.NewReader(payload), int64(len(payload)), "text/plain"); err != nil {
			log.Fatalf("Put failed: %v", err)
		}
		rc, err := store.Get(ctx, key)
		if err != nil {
			log.Fatalf("Get failed: %v", err)
		}
		back, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Fatalf("Read failed: %v", err)
		}
		if string(back) != payload {
			log.Fatalf("Roundtrip mismatch: got %q", back)
		}
		if err := store.Delete(ctx, key); err != nil {
			log.Fatalf("Delete failed: %v", err)
		}

		fmt.Println("Store roundtrip OK.")
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
}
