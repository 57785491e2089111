package repository

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB

	Categories     CategoryRepo
	Products       ProductRepo
	Reviews        ReviewRepo
	Ratings        RatingRepo
	Orders         OrderRepo
	OrderItems     OrderItemRepo
	Coupons        CouponRepo
	Payments       PaymentRepo
	Shipments      ShipmentRepo
	Users          UserRepo
	Addresses      AddressRepo
	PasswordResets PasswordResetRepo
	Contacts       ContactRepo
	Blogs          BlogRepo
	BlogTaxonomy   BlogTaxonomyRepo
	Announcements  AnnouncementRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:             db,
		Categories:     NewCategoryRepo(db),
		Products:       NewProductRepo(db),
		Reviews:        NewReviewRepo(db),
		Ratings:        NewRatingRepo(db),
		Orders:         NewOrderRepo(db),
		OrderItems:     NewOrderItemRepo(db),
		Coupons:        NewCouponRepo(db),
		Payments:       NewPaymentRepo(db),
		Shipments:      NewShipmentRepo(db),
		Users:          NewUserRepo(db),
		Addresses:      NewAddressRepo(db),
		PasswordResets: NewPasswordResetRepo(db),
		Contacts:       NewContactRepo(db),
		Blogs:          NewBlogRepo(db),
		BlogTaxonomy:   NewBlogTaxonomyRepo(db),
		Announcements:  NewAnnouncementRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// WithTx runs fn against repositories bound to a single transaction.
// A Repository without a DB (hand-assembled in tests) runs fn on itself.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.DB == nil {
		return fn(r)
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
