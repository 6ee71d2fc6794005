package quality

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshchain/freshchain/internal/inventory"
	"github.com/freshchain/freshchain/internal/shared"
	"github.com/freshchain/freshchain/internal/workflow"
)

type fakeRepo struct {
	nextID      int64
	rejections  map[int64]RejectedItem
	messages    []ChatMessage
	inspections []FoodCondition
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, rejections: map[int64]RejectedItem{}}
}

func (f *fakeRepo) InsertRejection(_ context.Context, item RejectedItem) (RejectedItem, error) {
	item.ID = f.nextID
	f.nextID++
	item.CreatedAt = time.Now()
	f.rejections[item.ID] = item
	return item, nil
}

func (f *fakeRepo) GetRejection(_ context.Context, id int64) (RejectedItem, error) {
	item, ok := f.rejections[id]
	if !ok {
		return RejectedItem{}, ErrNotFound
	}
	return item, nil
}

func (f *fakeRepo) ListRejections(_ context.Context) ([]RejectedItem, error) {
	var out []RejectedItem
	for _, item := range f.rejections {
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeRepo) UpdateRejectionStatus(_ context.Context, id int64, status RejectionStatus) error {
	item, ok := f.rejections[id]
	if !ok {
		return ErrNotFound
	}
	item.Status = status
	f.rejections[id] = item
	return nil
}

func (f *fakeRepo) InsertMessage(_ context.Context, msg ChatMessage) (ChatMessage, error) {
	msg.ID = f.nextID
	f.nextID++
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeRepo) ListMessages(_ context.Context, rejectedItemID int64) ([]ChatMessage, error) {
	var out []ChatMessage
	for _, msg := range f.messages {
		if msg.RejectedItemID == rejectedItemID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeRepo) InsertInspection(_ context.Context, rec FoodCondition) (FoodCondition, error) {
	rec.ID = f.nextID
	f.nextID++
	f.inspections = append(f.inspections, rec)
	return rec, nil
}

func (f *fakeRepo) ListInspections(_ context.Context) ([]FoodCondition, error) {
	return f.inspections, nil
}

type fakeInventory struct {
	materials map[int64]inventory.Material
}

func (f *fakeInventory) Get(_ context.Context, id int64) (inventory.Material, error) {
	m, ok := f.materials[id]
	if !ok {
		return inventory.Material{}, inventory.ErrNotFound
	}
	return m, nil
}

func (f *fakeInventory) AdjustStock(_ context.Context, _ shared.Actor, id int64, delta int64, _ string) (inventory.Adjustment, error) {
	m, ok := f.materials[id]
	if !ok {
		return inventory.Adjustment{}, inventory.ErrNotFound
	}
	m.Quantity += delta
	if m.Quantity < 0 {
		m.Quantity = 0
	}
	f.materials[id] = m
	return inventory.Adjustment{MaterialID: id, Delta: delta, NewQuantity: m.Quantity}, nil
}

type fakeRoles struct {
	admins map[string]bool
}

func (f *fakeRoles) IsAdmin(_ context.Context, userID string) (bool, error) {
	return f.admins[userID], nil
}

type fakeFeed struct{ tables []string }

func (f *fakeFeed) Publish(_ context.Context, tables ...string) {
	f.tables = append(f.tables, tables...)
}

type fixture struct {
	repo *fakeRepo
	inv  *fakeInventory
	feed *fakeFeed
	svc  *Service
}

func newFixture(quantity int64) *fixture {
	repo := newFakeRepo()
	inv := &fakeInventory{materials: map[int64]inventory.Material{
		1: {ID: 1, Name: "Carrot", Category: "Vegetables", Price: 3000, Quantity: quantity},
	}}
	roles := &fakeRoles{admins: map[string]bool{"admin-1": true}}
	feed := &fakeFeed{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := workflow.NewRunner(workflow.NewMemoryStore(), logger, nil)
	svc := NewService(repo, inv, roles, runner, nil, feed)
	return &fixture{repo: repo, inv: inv, feed: feed, svc: svc}
}

var (
	admin     = shared.Actor{ID: "admin-1", Admin: true}
	inspector = shared.Actor{ID: "user-2"}
)

func TestRejectMaterialDecrementsStock(t *testing.T) {
	f := newFixture(5)

	item, err := f.svc.RejectMaterial(context.Background(), admin, RejectInput{
		ProductID: 1,
		Quantity:  3,
		Reason:    "mold on arrival",
	})
	require.NoError(t, err)

	assert.Equal(t, RejectionStatusPending, item.Status)
	assert.Equal(t, "Carrot", item.ProductName)
	assert.Equal(t, int64(2), f.inv.materials[1].Quantity)
	assert.Contains(t, f.feed.tables, "rejected_items")
	assert.Contains(t, f.feed.tables, "products")
}

func TestRejectMaterialClampsWriteOff(t *testing.T) {
	f := newFixture(4)

	item, err := f.svc.RejectMaterial(context.Background(), admin, RejectInput{
		ProductID: 1,
		Quantity:  10,
		Reason:    "entire batch spoiled",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), item.Quantity, "rejection records the claimed quantity")
	assert.Equal(t, int64(0), f.inv.materials[1].Quantity, "stock floors at zero")
}

func TestRejectMaterialRequiresAdmin(t *testing.T) {
	f := newFixture(5)

	_, err := f.svc.RejectMaterial(context.Background(), inspector, RejectInput{
		ProductID: 1,
		Quantity:  1,
		Reason:    "bruised",
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, int64(5), f.inv.materials[1].Quantity, "no write-off without admin role")
	assert.Empty(t, f.repo.rejections)
}

func TestRejectMaterialValidatesInput(t *testing.T) {
	f := newFixture(5)

	_, err := f.svc.RejectMaterial(context.Background(), admin, RejectInput{ProductID: 1, Quantity: 0, Reason: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.RejectMaterial(context.Background(), admin, RejectInput{ProductID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveRejection(t *testing.T) {
	f := newFixture(5)
	item, err := f.svc.RejectMaterial(context.Background(), admin, RejectInput{ProductID: 1, Quantity: 1, Reason: "bruised"})
	require.NoError(t, err)

	require.NoError(t, f.svc.ResolveRejection(context.Background(), admin, item.ID))
	got, _ := f.repo.GetRejection(context.Background(), item.ID)
	assert.Equal(t, RejectionStatusResolved, got.Status)

	err = f.svc.ResolveRejection(context.Background(), admin, item.ID)
	assert.ErrorIs(t, err, ErrValidation, "resolving twice is rejected")
}

func TestChatThreadKeepsPostingOrder(t *testing.T) {
	f := newFixture(5)
	item, err := f.svc.RejectMaterial(context.Background(), admin, RejectInput{ProductID: 1, Quantity: 1, Reason: "bruised"})
	require.NoError(t, err)

	for _, text := range []string{"why was this rejected?", "mold on three crates", "sending replacement"} {
		_, err := f.svc.PostMessage(context.Background(), inspector, item.ID, text)
		require.NoError(t, err)
	}

	msgs, err := f.svc.ListMessages(context.Background(), item.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "why was this rejected?", msgs[0].Message)
	assert.Equal(t, "sending replacement", msgs[2].Message)
}

func TestPostMessageUnknownThread(t *testing.T) {
	f := newFixture(5)
	_, err := f.svc.PostMessage(context.Background(), inspector, 99, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordInspectionHasNoStockEffect(t *testing.T) {
	f := newFixture(5)

	rec, err := f.svc.RecordInspection(context.Background(), inspector, InspectionInput{
		ProductID:        1,
		Condition:        "slightly wilted",
		FitForProcessing: true,
		Notes:            "usable for stock base",
	})
	require.NoError(t, err)

	assert.Equal(t, "Carrot", rec.ProductName)
	assert.Equal(t, "user-2", rec.InspectorID)
	assert.True(t, rec.FitForProcessing)
	assert.Equal(t, int64(5), f.inv.materials[1].Quantity)
}
