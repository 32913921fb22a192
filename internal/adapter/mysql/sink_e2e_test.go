//go:build e2e

package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dori/timelog/internal/model"
)

func TestMirrorReplacesRows(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      "timelog",
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_USER":          "test",
			"MYSQL_PASSWORD":      "pass",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = mysqlC.Terminate(context.Background()) })

	host, err := mysqlC.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := mysqlC.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", "test", "pass", host, port.Port(), "timelog")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	sink, err := NewClient(ctx, dsn, logger)
	if err != nil {
		t.Fatalf("mysql client: %v", err)
	}
	t.Cleanup(func() { _ = sink.Close() })

	entries := []model.Entry{
		{ID: "a", Date: "2024-01-10", Day: "Wednesday", Description: "design",
			TimePeriods: []model.TimePeriod{{StartTime: "09:00", EndTime: "12:00"}}, Duration: model.NewDuration(10800)},
		{ID: "b", Date: "2024-01-09", Day: "Tuesday", Description: "review",
			TimePeriods: []model.TimePeriod{{StartTime: "13:00", EndTime: "14:00"}}, Duration: model.NewDuration(3600), Completed: true},
	}
	if err := sink.MirrorEntries(ctx, entries); err != nil {
		t.Fatalf("mirror entries: %v", err)
	}
	pto := []model.PtoEntry{{ID: "p", Date: "2024-02-01", Type: model.PtoVacation, CreatedAt: time.Now()}}
	if err := sink.MirrorPto(ctx, pto); err != nil {
		t.Fatalf("mirror pto: %v", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	defer db.Close()

	var total int
	if err := db.QueryRowContext(ctx, "SELECT SUM(duration_sec) FROM timelog_entries").Scan(&total); err != nil {
		t.Fatalf("sum: %v", err)
	}
	if total != 14400 {
		t.Fatalf("expected 14400 seconds mirrored, got %d", total)
	}

	// A second mirror replaces rather than appends
	if err := sink.MirrorEntries(ctx, entries[:1]); err != nil {
		t.Fatalf("mirror entries 2: %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM timelog_entries").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after replace, got %d", count)
	}
}
