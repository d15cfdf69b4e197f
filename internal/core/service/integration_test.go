package service_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/stockmap/internal/adapter/storage"
	"github.com/rl1809/stockmap/internal/core/domain"
	"github.com/rl1809/stockmap/internal/core/service"
	"github.com/rl1809/stockmap/migrations"
)

type testEnv struct {
	redis   *redis.Client
	mysql   *sqlx.DB
	cache   *storage.RedisAdapter
	db      *storage.MySQLAdapter
	log     *logrus.Logger
	cleanup func()
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/stockmap?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	db, err := sqlx.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := migrations.Apply(mysqlDSN); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	return &testEnv{
		redis: rdb,
		mysql: db,
		cache: storage.NewRedisAdapter(rdb),
		db:    storage.NewMySQLAdapter(db),
		log:   log,
		cleanup: func() {
			rdb.Close()
			db.Close()
		},
	}
}

func startWorkers(env *testEnv, svc *service.InventoryService, n int) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			service.RunMovementWorker(id, svc.GetMovementQueue(), env.db, env.log)
		}(i)
	}
	return &wg
}

func TestIntegration_FullInventoryFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	sessionID := "it-" + uuid.NewString()

	svc := service.NewInventoryService(env.cache, time.Hour, 100, env.log)
	wg := startWorkers(env, svc, 3)

	steps := []func() error{
		func() error { return svc.AddStreet(ctx, sessionID, "A") },
		func() error { return svc.AddLot(ctx, sessionID, "A", "1") },
		func() error { return svc.AssignProduct(ctx, sessionID, "A", "1", "Widget", 5) },
		func() error { return svc.MarkSold(ctx, sessionID, "A", "1") },
		func() error { return svc.MarkDepreciated(ctx, sessionID, "A", "1") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}

	svc.Close()
	wg.Wait()

	// Verify Redis snapshot
	snapshot, err := env.cache.LoadInventory(ctx, sessionID)
	if err != nil || snapshot == nil {
		t.Fatalf("expected snapshot, got %v (err %v)", snapshot, err)
	}
	lot, _ := snapshot.Lot("A", "1")
	if lot.Quantity != 3 || lot.Sold != 1 || lot.Depreciated != -1 {
		t.Errorf("unexpected snapshot lot: %+v", lot)
	}

	ttl, _ := env.redis.TTL(ctx, "inventory:"+sessionID).Result()
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("expected ttl within an hour, got %v", ttl)
	}

	// Verify MySQL movements
	movements, err := service.NewHistoryService(env.db).List(ctx, sessionID, 10)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != len(steps) {
		t.Errorf("expected %d movements, got %d", len(steps), len(movements))
	}
	if len(movements) > 0 && movements[0].Kind != domain.MovementDepreciated {
		t.Errorf("expected newest movement depreciated, got %s", movements[0].Kind)
	}

	// Cleanup
	env.redis.Del(ctx, "inventory:"+sessionID)
	env.mysql.ExecContext(ctx, `DELETE FROM movements WHERE session_id = ?`, sessionID)
}

func TestIntegration_SnapshotSurvivesRestart(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	sessionID := "it-" + uuid.NewString()

	first := service.NewInventoryService(env.cache, time.Hour, 10, env.log)
	first.AddStreet(ctx, sessionID, "North")
	first.AddLot(ctx, sessionID, "North", "7")
	first.AssignProduct(ctx, sessionID, "North", "7", "Bolt", 12)
	first.Close()

	second := service.NewInventoryService(env.cache, time.Hour, 10, env.log)
	defer second.Close()

	loc, err := second.FindByProduct(ctx, sessionID, "Bolt")
	if err != nil {
		t.Fatalf("find after restart: %v", err)
	}
	if loc != (domain.Location{Street: "North", Lot: "7", Quantity: 12}) {
		t.Errorf("unexpected location after restart: %+v", loc)
	}

	env.redis.Del(ctx, "inventory:"+sessionID)
}

func TestIntegration_CorruptSnapshotStartsEmpty(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	sessionID := "it-" + uuid.NewString()
	env.redis.Set(ctx, "inventory:"+sessionID, "not json", time.Minute)

	svc := service.NewInventoryService(env.cache, time.Hour, 10, env.log)
	defer svc.Close()

	inv, err := svc.Inventory(ctx, sessionID)
	if err != nil {
		t.Fatalf("expected degraded load, got: %v", err)
	}
	if len(inv.Streets) != 0 {
		t.Errorf("expected empty inventory, got %d streets", len(inv.Streets))
	}

	env.redis.Del(ctx, "inventory:"+sessionID)
}
