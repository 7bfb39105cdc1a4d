package cart

import (
	"context"
	"testing"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/kvstore"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc   *Service
	carts *store.CartStore
	db    *gorm.DB

	najd    models.Restaurant
	shami   models.Restaurant
	kabsa   models.MenuItem
	falafel models.MenuItem
	stale   models.MenuItem // marked unavailable
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Restaurant{}, &models.MenuItem{}))

	f := &fixture{db: db}
	f.najd = models.Restaurant{OwnerID: 2, Name: "Najd Kitchen", IsOpen: true}
	f.shami = models.Restaurant{OwnerID: 3, Name: "Shami Corner", IsOpen: true}
	require.NoError(t, db.Create(&f.najd).Error)
	require.NoError(t, db.Create(&f.shami).Error)

	f.kabsa = models.MenuItem{RestaurantID: f.najd.ID, Name: "Kabsa", NameAr: "كبسة", Price: 45, IsAvailable: true}
	f.falafel = models.MenuItem{RestaurantID: f.shami.ID, Name: "Falafel", Price: 8, IsAvailable: true}
	f.stale = models.MenuItem{RestaurantID: f.najd.ID, Name: "Molokhia", Price: 25, IsAvailable: false}
	require.NoError(t, db.Create(&f.kabsa).Error)
	require.NoError(t, db.Create(&f.falafel).Error)
	require.NoError(t, db.Create(&f.stale).Error)

	f.carts = store.NewCartStore(kvstore.NewMemStore())
	f.svc = NewService(db, f.carts)
	return f
}

func TestAddItemSnapshotsAndPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cart, err := f.svc.AddItem(ctx, 7, f.kabsa.ID, "extra rice")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "Kabsa", cart.Lines[0].Name)
	assert.Equal(t, "كبسة", cart.Lines[0].NameAr)
	assert.Equal(t, 45.0, cart.Lines[0].UnitPrice)
	assert.Equal(t, "extra rice", cart.Lines[0].Customizations)

	// repeat add bumps the quantity on the stored snapshot
	_, err = f.svc.AddItem(ctx, 7, f.kabsa.ID, "")
	require.NoError(t, err)
	stored, err := f.carts.Get(ctx, 7)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, 2, stored.Lines[0].Quantity)
	assert.Equal(t, 90.0, stored.Total())
}

func TestAddItemFromSecondRestaurantLeavesStoredCartUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, 7, f.kabsa.ID, "")
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, 7, f.falafel.ID, "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCrossRestaurant))

	stored, err := f.carts.Get(ctx, 7)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, f.najd.ID, stored.RestaurantID)
	assert.Equal(t, 45.0, stored.Total())
}

func TestAddItemRejectsUnavailableAndClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, 7, f.stale.ID, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeItemNotAvailable))

	require.NoError(t, f.db.Model(&f.najd).Update("is_open", false).Error)
	_, err = f.svc.AddItem(ctx, 7, f.kabsa.ID, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRestaurantClosed))

	_, err = f.svc.AddItem(ctx, 7, 999, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestDecrementAndRemovePersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, 7, f.kabsa.ID, "")
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, 7, f.kabsa.ID, "")
	require.NoError(t, err)

	cart, err := f.svc.DecrementItem(ctx, 7, f.kabsa.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Lines[0].Quantity)

	// absent item is a no-op, not an error
	cart, err = f.svc.DecrementItem(ctx, 7, 999)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)

	cart, err = f.svc.RemoveItem(ctx, 7, f.kabsa.ID)
	require.NoError(t, err)
	assert.True(t, cart.Empty())

	// after clearing, the other restaurant is accepted
	_, err = f.svc.AddItem(ctx, 7, f.falafel.ID, "")
	require.NoError(t, err)
}

func TestClearEmptiesStoredCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, 7, f.kabsa.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.svc.Clear(ctx, 7))

	stored, err := f.carts.Get(ctx, 7)
	require.NoError(t, err)
	assert.True(t, stored.Empty())
}
