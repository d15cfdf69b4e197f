package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/stockmap/internal/adapter/storage"
	"github.com/rl1809/stockmap/internal/core/service"
)

const (
	street        = "stress-street"
	lot           = "stress-lot"
	product       = "stress-product"
	initialStock  = 20
	totalRequests = 50
	queueSize     = 100
)

func main() {
	ctx := context.Background()
	log := logrus.New()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("failed to connect redis")
	}
	defer rdb.Close()

	sessionID := "stress-" + uuid.NewString()
	redisAdapter := storage.NewRedisAdapter(rdb)

	inventoryService := service.NewInventoryService(redisAdapter, time.Hour, queueSize, log)
	defer inventoryService.Close()

	// Drain the movement queue in background
	go func() {
		for range inventoryService.GetMovementQueue() {
		}
	}()

	if err := inventoryService.AddStreet(ctx, sessionID, street); err != nil {
		log.WithError(err).Fatal("add street")
	}
	if err := inventoryService.AddLot(ctx, sessionID, street, lot); err != nil {
		log.WithError(err).Fatal("add lot")
	}
	if err := inventoryService.AssignProduct(ctx, sessionID, street, lot, product, initialStock); err != nil {
		log.WithError(err).Fatal("assign product")
	}

	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := inventoryService.MarkSold(ctx, sessionID, street, lot); err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if successCount.Load() == totalRequests {
		fmt.Printf("PASS: all %d sales recorded\n", totalRequests)
	} else {
		fmt.Printf("FAIL: expected %d sales, got %d\n", totalRequests, successCount.Load())
	}

	// Verify the persisted snapshot, not the in-memory copy
	snapshot, err := redisAdapter.LoadInventory(ctx, sessionID)
	if err != nil || snapshot == nil {
		fmt.Printf("FAIL: snapshot not readable: %v\n", err)
		return
	}
	l, _ := snapshot.Lot(street, lot)
	fmt.Printf("Snapshot: quantity=%d sold=%d\n", l.Quantity, l.Sold)

	if l.Sold == totalRequests && l.Quantity == initialStock-totalRequests {
		fmt.Println("PASS: snapshot matches, quantity went negative without a floor")
	} else {
		fmt.Printf("FAIL: expected sold=%d quantity=%d\n", totalRequests, initialStock-totalRequests)
	}

	rdb.Del(ctx, "inventory:"+sessionID)
}
