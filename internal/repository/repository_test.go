package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/migrate"
	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"
	"github.com/emrahsandernet/kasarcim/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateShopDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedProduct(t *testing.T, repo *repository.Repository, catName, name, price string, stock int) *models.Product {
	t.Helper()
	ctx := context.Background()
	cat, err := repo.Categories.GetBySlug(ctx, slugOf(catName))
	require.NoError(t, err)
	if cat == nil {
		cat = &models.Category{Name: catName}
		require.NoError(t, repo.Categories.Create(ctx, cat))
	}
	p := &models.Product{CategoryID: cat.ID, Name: name, Price: dec(price), Stock: stock, Available: true}
	require.NoError(t, repo.Products.Create(ctx, p))
	return p
}

func slugOf(name string) string {
	c := &models.Category{Name: name}
	_ = c.BeforeSave(nil)
	return c.Slug
}

func seedUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	u := &models.User{Username: email, Email: email, Password: "hash"}
	require.NoError(t, repo.Users.Create(context.Background(), u))
	return u
}

func TestProductRepo_ListFilters(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	seedProduct(t, repo, "Tulum Peyniri", "Erzincan Tulum", "420.00", 5)
	seedProduct(t, repo, "Tulum Peyniri", "Keçi Tulum", "510.00", 0)
	seedProduct(t, repo, "Kaşar", "Eski Kaşar", "380.00", 12)
	hidden := seedProduct(t, repo, "Kaşar", "Taze Kaşar", "250.00", 3)
	hidden.Available = false
	require.NoError(t, repo.Products.Save(ctx, hidden))

	list, total, err := repo.Products.List(ctx, repository.ProductListFilter{OnlyAvailable: true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 3)
	assert.Equal(t, "Eski Kaşar", list[0].Name, "default ordering is by name")

	list, total, err = repo.Products.List(ctx, repository.ProductListFilter{
		OnlyAvailable: true, CategorySlug: slugOf("Tulum Peyniri"), InStock: true,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Erzincan Tulum", list[0].Name)

	minPrice := dec("400")
	list, _, err = repo.Products.List(ctx, repository.ProductListFilter{MinPrice: &minPrice, Ordering: "-price"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Keçi Tulum", list[0].Name)

	_, total, err = repo.Products.List(ctx, repository.ProductListFilter{Search: "tulum peyniri"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "search matches category name")

	list, total, err = repo.Products.List(ctx, repository.ProductListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, list, 1)
}

func TestProductRepo_StockReservation(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	p := seedProduct(t, repo, "Kaşar", "Dil Peyniri", "150.00", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	reserved := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Products.TryReserveStock(ctx, p.ID, 3)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				reserved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, reserved)

	got, err := repo.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)

	require.NoError(t, repo.Products.ReleaseStock(ctx, p.ID, 3))
	got, _ = repo.Products.GetByID(ctx, p.ID)
	assert.Equal(t, 4, got.Stock)
}

func TestCouponRepo_TryConsumeRespectsCap(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	c := &models.Coupon{
		Code: "YAZ10", DiscountType: models.DiscountTypePercentage, DiscountValue: dec("10"),
		ValidFrom: time.Now().Add(-time.Hour), ValidTo: time.Now().Add(time.Hour),
		Active: true, MaxUsage: 2,
	}
	require.NoError(t, repo.Coupons.Create(ctx, c))

	ok, err := repo.Coupons.TryConsume(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = repo.Coupons.TryConsume(ctx, c.ID)
	assert.True(t, ok)
	ok, _ = repo.Coupons.TryConsume(ctx, c.ID)
	assert.False(t, ok)

	got, err := repo.Coupons.GetByCode(ctx, " YAZ10 ")
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsageCount)

	missing, err := repo.Coupons.GetByCode(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderRepo_SaveRecomputesAndHasPurchased(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	u := seedUser(t, repo, "ayse@example.com")
	p := seedProduct(t, repo, "Kaşar", "Eski Kaşar", "400.00", 10)

	ord := &models.Order{
		UserID: &u.ID, FirstName: "Ayşe", LastName: "Yılmaz", Email: u.Email,
		Address: "Atatürk Cd. 5", City: "İzmir", Country: models.DefaultCountry,
		Status: models.OrderStatusCreated, PaymentMethod: models.PaymentMethodCashOnDelivery,
	}
	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Orders.Create(ctx, ord); err != nil {
			return err
		}
		if err := tx.OrderItems.BulkCreate(ctx, []models.OrderItem{
			{OrderID: ord.ID, ProductID: p.ID, Price: p.Price, Quantity: 2},
		}); err != nil {
			return err
		}
		sum, err := tx.OrderItems.SumByOrder(ctx, ord.ID)
		if err != nil {
			return err
		}
		ord.TotalPrice = sum
		return tx.Orders.Save(ctx, ord)
	})
	require.NoError(t, err)

	got, err := repo.Orders.GetByID(ctx, ord.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.TotalPrice.Equal(dec("800")))
	assert.True(t, got.ShippingCost.Equal(dec("250")))
	assert.True(t, got.CODFee.Equal(dec("50")))
	assert.True(t, got.FinalPrice.Equal(dec("1100")))

	paidStates := []models.OrderStatus{models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusDelivered}
	ok, err := repo.Orders.HasPurchased(ctx, u.ID, p.ID, paidStates)
	require.NoError(t, err)
	assert.False(t, ok)

	got.Discount = dec("80")
	ok, err = repo.Orders.UpdatePricing(ctx, got)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = repo.Orders.GetByID(ctx, ord.ID)
	assert.True(t, got.FinalPrice.Equal(dec("1020")))

	require.NoError(t, repo.Orders.MarkPaid(ctx, ord.ID))
	ok, err = repo.Orders.HasPurchased(ctx, u.ID, p.ID, paidStates)
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ = repo.Orders.GetByID(ctx, ord.ID)
	assert.Equal(t, models.OrderStatusPaid, got.Status)
	assert.NotNil(t, got.PaidAt)

	stale := *got
	stale.Status = models.OrderStatusCreated
	stale.Discount = dec("200")
	ok, err = repo.Orders.UpdatePricing(ctx, &stale)
	require.NoError(t, err)
	assert.False(t, ok)
	got, _ = repo.Orders.GetByID(ctx, ord.ID)
	assert.Equal(t, models.OrderStatusPaid, got.Status)
	assert.True(t, got.Discount.Equal(dec("80")))

	list, total, err := repo.Orders.List(ctx, repository.OrderListFilter{UserID: &u.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	other := uuid.New()
	none, err := repo.Orders.GetByIDForUser(ctx, ord.ID, other)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRepository_WithTxRollsBack(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	p := seedProduct(t, repo, "Kaşar", "Örgü Peyniri", "90.00", 4)

	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Products.TryReserveStock(ctx, p.ID, 4); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, _ := repo.Products.GetByID(ctx, p.ID)
	assert.Equal(t, 4, got.Stock)
}

func TestAddressRepo_ClearDefault(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	u := seedUser(t, repo, "mehmet@example.com")

	mk := func(title string, typ models.AddressType) *models.Address {
		a := &models.Address{
			UserID: u.ID, Title: title, AddressType: typ, FirstName: "Mehmet", LastName: "Kaya",
			PhoneNumber: "5550000000", Address: "Cumhuriyet Mh.", City: "Kars", District: "Merkez", IsDefault: true,
		}
		require.NoError(t, repo.Addresses.Create(ctx, a))
		return a
	}
	home := mk("Ev", models.AddressShipping)
	work := mk("İş", models.AddressShipping)
	bill := mk("Fatura", models.AddressBilling)

	require.NoError(t, repo.Addresses.ClearDefault(ctx, u.ID, models.AddressShipping, work.ID))

	got, _ := repo.Addresses.GetForUser(ctx, home.ID, u.ID)
	assert.False(t, got.IsDefault)
	got, _ = repo.Addresses.GetForUser(ctx, work.ID, u.ID)
	assert.True(t, got.IsDefault)
	got, _ = repo.Addresses.GetForUser(ctx, bill.ID, u.ID)
	assert.True(t, got.IsDefault, "other address types keep their default")
	assert.Equal(t, models.DefaultCountry, got.Country)

	typ := models.AddressShipping
	list, err := repo.Addresses.ListByUser(ctx, u.ID, &typ)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPasswordResetRepo_Lifecycle(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	u := seedUser(t, repo, "zeynep@example.com")

	tok := &models.PasswordResetToken{UserID: u.ID}
	require.NoError(t, repo.PasswordResets.Create(ctx, tok))
	assert.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().Add(models.PasswordResetTTL), tok.ExpiresAt, time.Minute)

	got, err := repo.PasswordResets.GetByToken(ctx, tok.Token)
	require.NoError(t, err)
	require.NotNil(t, got)

	ok, err := repo.PasswordResets.MarkUsed(ctx, tok.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = repo.PasswordResets.MarkUsed(ctx, tok.ID)
	assert.False(t, ok, "a token is consumed once")

	expired := &models.PasswordResetToken{UserID: u.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.PasswordResets.Create(ctx, expired))

	n, err := repo.PasswordResets.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.PasswordResets.DeleteUsedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestBlogRepo_RelatedAndArchive(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	recipes := &models.BlogCategory{Name: "Tarifler"}
	require.NoError(t, repo.BlogTaxonomy.CreateCategory(ctx, recipes))
	tag := &models.BlogTag{Name: "Kahvaltı"}
	require.NoError(t, repo.BlogTaxonomy.CreateTag(ctx, tag))

	mk := func(title string, cats []models.BlogCategory, tags []models.BlogTag, featured bool) *models.Blog {
		b := &models.Blog{
			Title: title, Content: "içerik", Status: models.BlogPublished,
			IsFeatured: featured, Categories: cats, Tags: tags,
		}
		require.NoError(t, repo.Blogs.Create(ctx, b))
		return b
	}
	post := mk("Peynirli Omlet", []models.BlogCategory{*recipes}, []models.BlogTag{*tag}, true)
	sameCat := mk("Kaşarlı Tost", []models.BlogCategory{*recipes}, nil, false)
	sameTag := mk("Serpme Kahvaltı", nil, []models.BlogTag{*tag}, false)
	mk("Peynir Tarihi", nil, nil, false)
	require.NoError(t, repo.Blogs.Create(ctx, &models.Blog{Title: "Taslak", Content: "x", Status: models.BlogDraft}))

	byCat, err := repo.Blogs.RelatedByCategories(ctx, post.CategoryIDs(), []uint{post.ID}, 3)
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, sameCat.ID, byCat[0].ID)

	byTag, err := repo.Blogs.RelatedByTags(ctx, post.TagIDs(), []uint{post.ID, sameCat.ID}, 2)
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, sameTag.ID, byTag[0].ID)

	list, total, err := repo.Blogs.List(ctx, repository.BlogListFilter{CategorySlug: recipes.Slug})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	_, total, err = repo.Blogs.List(ctx, repository.BlogListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total, "drafts are hidden")

	featured, err := repo.Blogs.Featured(ctx, 5)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, post.ID, featured[0].ID)

	require.NoError(t, repo.Blogs.IncrementViews(ctx, sameTag.ID))
	popular, err := repo.Blogs.Popular(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, sameTag.ID, popular[0].ID)

	dates, err := repo.Blogs.PublishedDates(ctx)
	require.NoError(t, err)
	assert.Len(t, dates, 4)

	deleted, err := repo.Blogs.Delete(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestRatingRepo_UpsertKeepsOnePerUser(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	u := seedUser(t, repo, "ali@example.com")
	p := seedProduct(t, repo, "Kaşar", "Eski Kaşar", "380.00", 3)

	require.NoError(t, repo.Ratings.Upsert(ctx, &models.ProductRating{ProductID: p.ID, UserID: u.ID, Rating: 3}))
	require.NoError(t, repo.Ratings.Upsert(ctx, &models.ProductRating{ProductID: p.ID, UserID: u.ID, Rating: 5}))

	byUser, err := repo.Ratings.MapByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
	assert.Equal(t, 5, byUser[u.ID])
}

func TestAnnouncementRepo_ActiveOrdering(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	require.NoError(t, repo.Announcements.Create(ctx, &models.Announcement{Message: "ikinci", IsActive: true, Order: 2}))
	require.NoError(t, repo.Announcements.Create(ctx, &models.Announcement{Message: "birinci", IsActive: true, Order: 1}))
	off := &models.Announcement{Message: "kapalı", IsActive: true, Order: 0}
	require.NoError(t, repo.Announcements.Create(ctx, off))
	off.IsActive = false
	require.NoError(t, repo.Announcements.Save(ctx, off))

	list, err := repo.Announcements.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "birinci", list[0].Message)
	assert.Equal(t, models.DefaultAnnouncementBackground, list[0].BackgroundColor)
}
