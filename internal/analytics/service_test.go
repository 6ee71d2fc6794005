package analytics

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	materials   int64
	stockValue  float64
	lowStock    []LowStockItem
	rejections  int64
	returns     int64
	orderCounts []StatusCount
	orderValue  float64

	buildCalls int
}

func (f *fakeRepo) MaterialStats(_ context.Context) (int64, float64, error) {
	f.buildCalls++
	return f.materials, f.stockValue, nil
}

func (f *fakeRepo) ListLowStock(_ context.Context, _ int64) ([]LowStockItem, error) {
	return f.lowStock, nil
}

func (f *fakeRepo) CountPendingRejections(_ context.Context) (int64, error) {
	return f.rejections, nil
}

func (f *fakeRepo) CountPendingReturns(_ context.Context) (int64, error) {
	return f.returns, nil
}

func (f *fakeRepo) OrdersByStatus(_ context.Context) ([]StatusCount, float64, error) {
	return f.orderCounts, f.orderValue, nil
}

func newTestRepo() *fakeRepo {
	return &fakeRepo{
		materials:  12,
		stockValue: 1500000,
		lowStock: []LowStockItem{
			{MaterialID: 3, Name: "Chili", Category: "Vegetables", Quantity: 2, Price: 40000},
		},
		rejections: 1,
		returns:    2,
		orderCounts: []StatusCount{
			{Status: "pending", Count: 4},
			{Status: "delivered", Count: 9},
		},
		orderValue: 2750000.5,
	}
}

func testCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestSummaryBuild(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, testCache(t), 10)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(12), summary.TotalMaterials)
	assert.Equal(t, float64(1500000), summary.TotalStockValue)
	require.Len(t, summary.LowStock, 1)
	assert.Equal(t, "Chili", summary.LowStock[0].Name)
	assert.Equal(t, int64(1), summary.PendingRejections)
	assert.Equal(t, int64(2), summary.PendingReturns)
	assert.Equal(t, 2750000.5, summary.TotalOrderValue)
}

func TestSummaryServedFromCache(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, testCache(t), 10)
	ctx := context.Background()

	_, err := svc.Summary(ctx)
	require.NoError(t, err)
	_, err = svc.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.buildCalls, "second read hits the cache")
}

func TestInvalidateBumpsVersion(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, testCache(t), 10)
	ctx := context.Background()

	_, err := svc.Summary(ctx)
	require.NoError(t, err)

	repo.materials = 13
	require.NoError(t, svc.Invalidate(ctx))

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(13), summary.TotalMaterials, "bump forces a rebuild")
	assert.Equal(t, 2, repo.buildCalls)
}

func TestChangeFeedPublishInvalidatesSummary(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newTestRepo()
	svc := NewService(repo, NewCache(client, time.Minute), 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, svc.WatchChangeFeed(ctx, "freshchain.changes"))

	_, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.buildCalls)

	repo.materials = 20
	require.NoError(t, client.Publish(ctx, "freshchain.changes", `{"table":"orders"}`).Err())

	assert.Eventually(t, func() bool {
		summary, err := svc.Summary(ctx)
		return err == nil && summary.TotalMaterials == 20
	}, 2*time.Second, 20*time.Millisecond, "a table change forces the next read to rebuild")
}

func TestSummaryWithoutRedis(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, 10)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), summary.TotalMaterials)
}

func TestWriteSummaryCSV(t *testing.T) {
	summary := Summary{
		TotalMaterials:    3,
		TotalStockValue:   1234567.89,
		PendingRejections: 1,
		PendingReturns:    0,
		TotalOrderValue:   50000,
		OrdersByStatus:    []StatusCount{{Status: "pending", Count: 2}},
		LowStock:          []LowStockItem{{Name: "Chili", Quantity: 2}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, summary))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "Metric,Value", lines[0])
	assert.Contains(t, buf.String(), `"1,234,567.89"`, "thousand separators in money values")
	assert.Contains(t, buf.String(), "Orders pending,2")
	assert.Contains(t, buf.String(), "Chili,2")
}
