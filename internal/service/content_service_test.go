package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCouponCheck_FirstFailingRule(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	svc := service.NewCouponService(st.repo(), zap.NewNop())
	ctx := userCtx(u)
	now := time.Now()

	tests := []struct {
		name   string
		mutate func(c *models.Coupon)
		total  int64
		want   error
	}{
		{"inactive", func(c *models.Coupon) { c.Active = false; c.UsageCount = 5 }, 1000, service.ErrCouponInactive},
		{"not yet valid", func(c *models.Coupon) { c.ValidFrom = now.Add(time.Hour) }, 1000, service.ErrCouponNotYetValid},
		{"expired", func(c *models.Coupon) { c.ValidTo = now.Add(-time.Minute) }, 1000, service.ErrCouponExpired},
		{"used up", func(c *models.Coupon) { c.UsageCount = 1 }, 10, service.ErrCouponUsageExceeded},
		{"below minimum", func(*models.Coupon) {}, 499, service.ErrCouponBelowMinimum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := st.addCoupon("K-"+tt.name, 10, 500, 1)
			tt.mutate(c)
			_, err := svc.Check(ctx, c.Code, decimal.NewFromInt(tt.total))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	c := st.addCoupon("YAZ10", 10, 500, 1)
	q, err := svc.Check(ctx, c.Code, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, "100.00", q.DiscountAmount.StringFixed(2))
	assert.Contains(t, q.Message, "100.00 TL")
	assert.Equal(t, 0, st.coupons[c.ID].UsageCount)

	_, err = svc.Check(context.Background(), c.Code, decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	_, err = svc.Check(ctx, "YOK", decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, service.ErrCouponNotFound)
}

func TestCouponApply_IgnoresMinimum(t *testing.T) {
	st := newStore()
	svc := service.NewCouponService(st.repo(), zap.NewNop())
	st.addCoupon("KIS", 20, 1000, 3)

	q, err := svc.Apply(context.Background(), " KIS ", decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.Equal(t, "40.00", q.DiscountAmount.StringFixed(2))

	_, err = svc.Apply(context.Background(), "", decimal.NewFromInt(200))
	assert.ErrorIs(t, err, service.ErrCouponCodeRequired)
}

func TestUnitPrice(t *testing.T) {
	day := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	p := &models.Product{Price: decimal.NewFromInt(400)}
	assert.True(t, service.UnitPrice(p, day).Equal(decimal.NewFromInt(400)))

	p.Discounts = []models.Discount{
		{DiscountPercentage: decimal.NewFromInt(50), StartDate: day.AddDate(0, 0, -10), EndDate: day.AddDate(0, 0, -1), IsActive: true},
		{DiscountPercentage: decimal.NewFromInt(25), StartDate: day, EndDate: day, IsActive: true},
	}
	assert.Equal(t, "300.00", service.UnitPrice(p, day).StringFixed(2))
	assert.True(t, service.UnitPrice(p, day.AddDate(0, 0, 1)).Equal(decimal.NewFromInt(400)))
}

func TestBlogArchiveGroupsByMonth(t *testing.T) {
	st := newStore()
	st.blogDates = []time.Time{
		time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC),
	}
	svc := service.NewBlogService(st.repo(), zap.NewNop())

	months, err := svc.Archive(context.Background())
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, time.March, months[0].Month.Month())
	assert.Equal(t, 2, months[0].Count)
	assert.Equal(t, time.February, months[1].Month.Month())
	assert.Equal(t, 1, months[1].Count)
}

// memoReadThrough keeps JSON copies in memory, like the Redis-backed one.
type memoReadThrough struct{ data map[string][]byte }

func (m *memoReadThrough) Fetch(ctx context.Context, key string, dst any, load func(context.Context) (any, error)) error {
	if b, ok := m.data[key]; ok {
		return json.Unmarshal(b, dst)
	}
	v, err := load(ctx)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return json.Unmarshal(b, dst)
}

func (m *memoReadThrough) Invalidate(_ context.Context, prefixes ...string) error {
	for _, p := range prefixes {
		delete(m.data, p)
	}
	return nil
}

func TestAnnouncementsCachedUntilChanged(t *testing.T) {
	st := newStore()
	ann := &fakeAnnouncements{s: st}
	repo := st.repo()
	repo.Announcements = ann
	svc := service.NewAnnouncementService(repo, &memoReadThrough{data: map[string][]byte{}}, zap.NewNop())
	staff := userCtx(st.addUser("admin@example.com", true))
	ctx := context.Background()

	_, err := svc.Create(staff, service.AnnouncementInput{Message: "Kargo bedava!", IsActive: true})
	require.NoError(t, err)

	for range 3 {
		list, err := svc.Active(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
	}
	assert.Equal(t, 1, ann.lists)

	_, err = svc.Create(staff, service.AnnouncementInput{Message: "Pasif duyuru"})
	require.NoError(t, err)
	list, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 2, ann.lists)

	_, err = svc.Create(ctx, service.AnnouncementInput{Message: "x"})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
