package routes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func idsOf(t *testing.T, list datatypes.JSON) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, json.Unmarshal(list, &ids))
	return ids
}

func TestAlterIDListAddRemove(t *testing.T) {
	list, ok, err := alterIDList(nil, "add", 7, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint{7}, idsOf(t, list))

	list, ok, err = alterIDList(list, "add", 9, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint{7, 9}, idsOf(t, list))

	// Adding twice is a no-op, not a duplicate
	list, ok, err = alterIDList(list, "add", 7, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint{7, 9}, idsOf(t, list))

	list, ok, err = alterIDList(list, "remove", 7, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint{9}, idsOf(t, list))

	// Removing an absent id is fine
	list, ok, err = alterIDList(list, "remove", 1234, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint{9}, idsOf(t, list))
}

func TestAlterIDListCompareCap(t *testing.T) {
	var list datatypes.JSON
	var ok bool
	var err error

	for id := uint(1); id <= maxCompareListings; id++ {
		list, ok, err = alterIDList(list, "add", id, maxCompareListings)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Len(t, idsOf(t, list), maxCompareListings)

	// A fifth element does not fit and the list stays as it was
	after, ok, err := alterIDList(list, "add", 99, maxCompareListings)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, idsOf(t, list), idsOf(t, after))

	// Re-adding an existing element at the cap is still a no-op success
	after, ok, err = alterIDList(list, "add", 2, maxCompareListings)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, idsOf(t, list), idsOf(t, after))

	// Removing makes room again
	list, ok, err = alterIDList(list, "remove", 1, maxCompareListings)
	require.NoError(t, err)
	require.True(t, ok)
	list, ok, err = alterIDList(list, "add", 99, maxCompareListings)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint{2, 3, 4, 99}, idsOf(t, list))
}

func TestListingsFromIDList(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "owner")

	a := createTestListing(t, db, owner.ID, listingSeed{Title: "A", City: "Pune", Price: 100})
	b := createTestListing(t, db, owner.ID, listingSeed{Title: "B", City: "Pune", Price: 200})
	createTestListing(t, db, owner.ID, listingSeed{Title: "C", City: "Pune", Price: 300})

	raw, err := json.Marshal([]uint{a.ID, b.ID, 99999})
	require.NoError(t, err)

	listings, err := listingsFromIDList(datatypes.JSON(raw))
	require.NoError(t, err)

	ids := []uint{}
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, ids)

	// Empty and nil lists resolve to an empty slice, never an error
	listings, err = listingsFromIDList(nil)
	require.NoError(t, err)
	assert.Empty(t, listings)
}
