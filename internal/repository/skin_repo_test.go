package repository

import (
	"context"
	"testing"

	"gameshop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkinInsertIdempotent(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewSkinRepository(db)
	seedUser(t, db, "2025001", 0, 0)

	require.NoError(t, repo.Insert(context.Background(), db, "2025001", 1))

	// 唯一索引 + DO NOTHING：重复写入影响 0 行
	err := repo.Insert(context.Background(), db, "2025001", 1)
	assert.ErrorIs(t, err, ErrSkinAlreadyOwned)

	var count int64
	require.NoError(t, db.Model(&model.UserSkin{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	owned, err := repo.Exists(context.Background(), nil, "2025001", 1)
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = repo.Exists(context.Background(), nil, "2025001", 2)
	require.NoError(t, err)
	assert.False(t, owned)
}

func TestListOwnedNames(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewSkinRepository(db)
	seedUser(t, db, "2025001", 0, 0)

	require.NoError(t, db.Create(&model.ShopItem{ItemID: 1, Name: "皮肤1", Price: 100}).Error)
	require.NoError(t, db.Create(&model.ShopItem{ItemID: 2, Name: "皮肤2", Price: 200}).Error)

	require.NoError(t, repo.Insert(context.Background(), db, "2025001", 2))
	require.NoError(t, repo.Insert(context.Background(), db, "2025001", 1))

	names, err := repo.ListOwnedNames(context.Background(), "2025001")
	require.NoError(t, err)
	assert.Equal(t, []string{"皮肤2", "皮肤1"}, names)

	ids, err := repo.ListOwnedItemIDs(context.Background(), "2025001")
	require.NoError(t, err)
	assert.True(t, ids[1])
	assert.True(t, ids[2])
	assert.False(t, ids[3])
}
