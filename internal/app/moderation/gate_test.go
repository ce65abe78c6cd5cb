package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
	"baraholka/internal/infra/storage/memory"
	"baraholka/internal/transport"
)

const adminID user.ID = 999

type recordedMessage struct {
	to   user.ID
	text string
}

type fakeSink struct {
	sent     []recordedMessage
	notified []recordedMessage
}

func (s *fakeSink) Send(_ context.Context, to user.ID, text string, _ transport.Keyboard) (transport.SurfaceID, error) {
	s.sent = append(s.sent, recordedMessage{to: to, text: text})
	return "s1", nil
}
func (s *fakeSink) Edit(context.Context, user.ID, transport.SurfaceID, string, transport.Keyboard) error {
	return nil
}
func (s *fakeSink) Delete(context.Context, user.ID, transport.SurfaceID) error { return nil }
func (s *fakeSink) SendMediaGroup(context.Context, user.ID, []transport.Media) (transport.SurfaceID, error) {
	return "s1", nil
}
func (s *fakeSink) Notify(_ context.Context, to user.ID, text string) error {
	s.notified = append(s.notified, recordedMessage{to: to, text: text})
	return nil
}

func newTestGate(t *testing.T) (*Gate, *memory.ListingRepository, *fakeSink) {
	t.Helper()
	listings := memory.NewListingRepository()
	sink := &fakeSink{}
	return &Gate{Admin: adminID, Listings: listings, Sink: sink}, listings, sink
}

func seedPending(t *testing.T, listings *memory.ListingRepository, id listing.ID) *listing.Listing {
	t.Helper()
	l, err := listing.New(listing.CreateParams{
		ID:        id,
		Owner:     100,
		City:      "Москва",
		Category:  "Электроника",
		Condition: "Новое",
		Title:     "Телефон",
		Now:       time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, listings.Save(context.Background(), l))
	return l
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	g, listings, sink := newTestGate(t)
	seedPending(t, listings, "lst-1")

	l, err := g.Approve(ctx, adminID, "lst-1")
	require.NoError(t, err)
	assert.Equal(t, listing.StatusApproved, l.Status)

	stored, err := listings.ByID(ctx, "lst-1")
	require.NoError(t, err)
	assert.Equal(t, listing.StatusApproved, stored.Status)

	require.Len(t, sink.notified, 1)
	assert.Equal(t, user.ID(100), sink.notified[0].to, "owner is told about the outcome")
}

func TestDeny(t *testing.T) {
	ctx := context.Background()
	g, listings, sink := newTestGate(t)
	seedPending(t, listings, "lst-1")

	l, err := g.Deny(ctx, adminID, "lst-1")
	require.NoError(t, err)
	assert.Equal(t, listing.StatusDenied, l.Status)
	require.Len(t, sink.notified, 1)
}

func TestTransitionPermission(t *testing.T) {
	ctx := context.Background()
	g, listings, _ := newTestGate(t)
	seedPending(t, listings, "lst-1")

	_, err := g.Approve(ctx, 100, "lst-1")
	assert.ErrorIs(t, err, ErrPermission)

	stored, err := listings.ByID(ctx, "lst-1")
	require.NoError(t, err)
	assert.Equal(t, listing.StatusPending, stored.Status, "status untouched on rejection")
}

func TestTransitionRequiresPending(t *testing.T) {
	ctx := context.Background()
	g, listings, _ := newTestGate(t)
	seedPending(t, listings, "lst-1")

	_, err := g.Approve(ctx, adminID, "lst-1")
	require.NoError(t, err)
	_, err = g.Approve(ctx, adminID, "lst-1")
	assert.ErrorIs(t, err, listing.ErrInvalidState)

	_, err = g.Deny(ctx, adminID, "missing")
	assert.ErrorIs(t, err, listing.ErrNotFound)
}

func TestPendingAdminOnly(t *testing.T) {
	ctx := context.Background()
	g, listings, _ := newTestGate(t)
	seedPending(t, listings, "lst-1")
	seedPending(t, listings, "lst-2")

	items, err := g.Pending(ctx, adminID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = g.Pending(ctx, 100, 0, 10)
	assert.ErrorIs(t, err, ErrPermission)
}

func TestSubmitForReview(t *testing.T) {
	ctx := context.Background()
	g, listings, sink := newTestGate(t)
	l := seedPending(t, listings, "lst-1")

	g.SubmitForReview(ctx, l)
	require.Len(t, sink.sent, 1)
	assert.Equal(t, adminID, sink.sent[0].to)
	assert.Contains(t, sink.sent[0].text, "lst-1")
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	g, listings, sink := newTestGate(t)
	seedPending(t, listings, "lst-1")

	require.NoError(t, g.Report(ctx, 55, "lst-1"))
	require.Len(t, sink.notified, 1)
	assert.Equal(t, adminID, sink.notified[0].to)
	assert.Contains(t, sink.notified[0].text, "55")
}
