package repos_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fixture struct {
	db       *sqlx.DB
	users    *repos.UserRepo
	products *repos.ProductRepo
	carts    *repos.CartRepo
	orders   *repos.OrderRepo
	userID   int64
	prodID   int64
}

func newFixture(t *testing.T, stock int) fixture {
	t.Helper()
	ctx := context.Background()
	db := memdb(t)
	f := fixture{
		db:       db,
		users:    repos.NewUserRepo(db),
		products: repos.NewProductRepo(db),
		carts:    repos.NewCartRepo(db),
		orders:   repos.NewOrderRepo(db),
	}
	var err error
	f.userID, err = f.users.Create(ctx, "Asha", "asha@example.com")
	require.NoError(t, err)
	f.prodID, err = f.products.Create(ctx, "Notebook", decimal.RequireFromString("9.99"), stock)
	require.NoError(t, err)
	return f
}

func TestCreateSchemaIdempotent(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	_, err := repos.NewUserRepo(db).Create(ctx, "Ravi", "ravi@example.com")
	require.NoError(t, err)

	require.NoError(t, repos.CreateSchema(ctx, db))
	require.NoError(t, repos.CreateSchema(ctx, db))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 1, n, "existing rows survive a second bootstrap")
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	require.NoError(t, repos.Seed(ctx, db))
	require.NoError(t, repos.Seed(ctx, db))

	var products, users int
	require.NoError(t, db.Get(&products, `SELECT COUNT(*) FROM products`))
	require.NoError(t, db.Get(&users, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 3, products)
	assert.Equal(t, 1, users)
}

func TestProductGet(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	p, err := f.products.Get(ctx, f.prodID)
	require.NoError(t, err)
	assert.Equal(t, "Notebook", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("9.99")), "price %s", p.Price)
	assert.Equal(t, 5, p.Stock)

	_, err = f.products.Get(ctx, 999)
	assert.ErrorIs(t, err, repos.ErrProductNotFound)
	assert.ErrorIs(t, err, repos.ErrNotFound)
}

func TestAddLineCheckOnly(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.carts.AddLine(ctx, f.userID, f.prodID, 3, false)
		require.NoError(t, err)
	}

	lines, err := f.carts.Lines(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, lines, 2, "repeated adds are separate lines")
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, "Notebook", lines[0].Name)
	assert.Less(t, lines[0].ID, lines[1].ID)

	p, err := f.products.Get(ctx, f.prodID)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock, "check-only policy leaves stock untouched")
}

func TestAddLineDecrement(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	_, err := f.carts.AddLine(ctx, f.userID, f.prodID, 3, true)
	require.NoError(t, err)

	p, err := f.products.Get(ctx, f.prodID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)

	_, err = f.carts.AddLine(ctx, f.userID, f.prodID, 3, true)
	assert.ErrorIs(t, err, repos.ErrInsufficientStock)

	lines, err := f.carts.Lines(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, lines, 1, "failed add leaves no line behind")

	p, err = f.products.Get(ctx, f.prodID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock, "failed add leaves stock unchanged")
}

func TestAddLineMissingReferences(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	_, err := f.carts.AddLine(ctx, f.userID, 404, 1, true)
	assert.ErrorIs(t, err, repos.ErrProductNotFound)

	_, err = f.carts.AddLine(ctx, 404, f.prodID, 1, true)
	assert.ErrorIs(t, err, repos.ErrUserNotFound)
}

func TestLinesEmpty(t *testing.T) {
	f := newFixture(t, 5)

	lines, err := f.carts.Lines(context.Background(), f.userID)
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestOrderLifecycle(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	id, err := f.orders.Create(ctx, f.userID, decimal.RequireFromString("29.97"))
	require.NoError(t, err)

	o, err := f.orders.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, f.userID, o.UserID)
	assert.True(t, o.Amount.Equal(decimal.RequireFromString("29.97")))

	require.NoError(t, f.orders.UpdateStatus(ctx, id, "COMPLETED"))
	require.NoError(t, f.orders.UpdateStatus(ctx, id, "COMPLETED"), "same status twice still matches the row")
	require.NoError(t, f.orders.UpdateStatus(ctx, id, "REFUNDED"))

	o, err = f.orders.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "REFUNDED", o.Status)

	list, err := f.orders.ListByUser(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOrderMissing(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	assert.ErrorIs(t, f.orders.UpdateStatus(ctx, 77, "COMPLETED"), repos.ErrOrderNotFound)

	_, err := f.orders.Get(ctx, 77)
	assert.ErrorIs(t, err, repos.ErrOrderNotFound)

	_, err = f.orders.Create(ctx, 404, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, repos.ErrUserNotFound)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", repos.SQLiteDSN(":memory:"))
	assert.Equal(t, "file:shop.db?cache=shared&_pragma=foreign_keys(1)", repos.SQLiteDSN("file:shop.db?cache=shared"))
	assert.Equal(t, "shop.db?_pragma=foreign_keys(0)", repos.SQLiteDSN("shop.db?_pragma=foreign_keys(0)"))
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	db, err := repos.OpenDB(ctx, "sqlite", filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// no idle connections: every statement runs on a freshly opened one
	db.SetMaxIdleConns(0)
	for i := 0; i < 3; i++ {
		var on int
		require.NoError(t, db.GetContext(ctx, &on, `PRAGMA foreign_keys`))
		assert.Equal(t, 1, on)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO carts(user_id, product_id, quantity) VALUES (404, 404, 1)`)
	require.Error(t, err, "dangling references are rejected")
}
