//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ruralwork/internal/model"
	"ruralwork/internal/repository"
	pkgerrors "ruralwork/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup（PostgreSQL）
// ═══════════════════════════════════════════════════════════

var pgDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=ruralwork password=ruralwork_password dbname=ruralwork_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	pgDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	if err := pgDB.AutoMigrate(model.All()...); err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

var pgPhoneSeq atomic.Int64

// setupPGUser 创建测试用户并返回清理函数
func setupPGUser(t *testing.T) (*model.User, func()) {
	t.Helper()
	u := &model.User{
		Phone:        fmt.Sprintf("139%08d", (time.Now().UnixNano()/1000+pgPhoneSeq.Add(1))%100000000),
		PasswordHash: "$2a$10$placeholder",
		Name:         "测试用户",
		Department:   "党政办",
		Role:         model.RoleTownStaff,
		TotalScore:   model.DefaultTotalScore,
		IsActive:     true,
	}
	if err := pgDB.Create(u).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return u, func() {
		pgDB.Where("user_id = ?", u.ID).Delete(&model.LeaveRequest{})
		pgDB.Unscoped().Where("id = ?", u.ID).Delete(&model.User{})
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 并发扣分
// ═══════════════════════════════════════════════════════════

func TestPG_DeductScoreConcurrentCumulative(t *testing.T) {
	u, cleanup := setupPGUser(t)
	defer cleanup()

	repo := repository.NewRepository(pgDB)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Transaction(ctx, func(tx *repository.Repository) error {
				_, err := tx.User.DeductScore(ctx, u.ID, 1)
				return err
			})
			if err != nil {
				t.Errorf("并发扣分失败: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.User.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("查询用户失败: %v", err)
	}
	if got.TotalScore != 80 {
		t.Errorf("期望 20 次扣分全部生效得 80，实际: %v", got.TotalScore)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 同一请假单并发审批只有一次生效
// ═══════════════════════════════════════════════════════════

func TestPG_LeaveReviewRace(t *testing.T) {
	u, cleanup := setupPGUser(t)
	defer cleanup()

	repo := repository.NewRepository(pgDB)
	ctx := context.Background()

	leave := &model.LeaveRequest{
		UserID:    u.ID,
		LeaveType: model.LeaveTypePersonal,
		StartDate: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
		DaysCount: 1,
		Status:    model.LeaveStatusPending,
	}
	if err := repo.Leave.Create(ctx, leave); err != nil {
		t.Fatalf("创建请假失败: %v", err)
	}

	var ok, conflict atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := *leave
			l.Status = model.LeaveStatusApproved
			err := repo.Leave.Review(ctx, &l)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, pkgerrors.ErrOptimisticLock):
				conflict.Add(1)
			default:
				t.Errorf("意外错误: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || conflict.Load() != 4 {
		t.Errorf("期望 1 次成功 4 次冲突，实际: 成功=%d 冲突=%d", ok.Load(), conflict.Load())
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 只读快照
// ═══════════════════════════════════════════════════════════

func TestPG_SnapshotIsReadOnly(t *testing.T) {
	u, cleanup := setupPGUser(t)
	defer cleanup()

	repo := repository.NewRepository(pgDB)
	ctx := context.Background()

	err := repo.Snapshot(ctx, func(tx *repository.Repository) error {
		_, err := tx.User.DeductScore(ctx, u.ID, 1)
		return err
	})
	if err == nil {
		t.Fatal("只读快照内的写入应失败")
	}

	got, _ := repo.User.GetByID(ctx, u.ID)
	if got.TotalScore != model.DefaultTotalScore {
		t.Errorf("分数不应变化，实际: %v", got.TotalScore)
	}
}
