package routes

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/punamchanne/Property-Dealing/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type listingSeed struct {
	Title       string
	Description string
	Type        string
	City        string
	Price       float64
	PriceType   string
	Bedrooms    int
	Bathrooms   int
	Approval    string
}

func createTestListing(t *testing.T, db *gorm.DB, ownerID uint, seed listingSeed) models.Listing {
	t.Helper()

	if seed.Type == "" {
		seed.Type = models.TypeApartment
	}
	if seed.PriceType == "" {
		seed.PriceType = "sale"
	}
	if seed.Approval == "" {
		seed.Approval = models.ApprovalApproved
	}

	listing := models.Listing{
		OwnerID:     ownerID,
		Title:       seed.Title,
		Description: seed.Description,
		Type:        seed.Type,
		City:        seed.City,
		Price:       seed.Price,
		PriceType:   seed.PriceType,
		Status:      "available",
		Approval:    seed.Approval,
		Amenities:   "[]",
	}
	if seed.Bedrooms > 0 {
		listing.Bedrooms = &seed.Bedrooms
	}
	if seed.Bathrooms > 0 {
		listing.Bathrooms = &seed.Bathrooms
	}
	require.NoError(t, db.Create(&listing).Error)
	return listing
}

func queryValues(pairs ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return v
}

func TestSearchApprovalGate(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "owner")

	a := createTestListing(t, db, owner.ID, listingSeed{
		Title: "Approved Pune Flat", City: "Pune", Price: 100,
	})
	createTestListing(t, db, owner.ID, listingSeed{
		Title: "Pending Pune Flat", City: "Pune", Price: 100,
		Approval: models.ApprovalPending,
	})
	c := createTestListing(t, db, owner.ID, listingSeed{
		Title: "Approved Mumbai Flat", City: "Mumbai", Price: 500,
	})

	// Public: only approved listings, regardless of other filters
	result, err := runListingSearch(db, parseSearchFilters(queryValues("city", "Pune")), false)
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)
	assert.Equal(t, a.ID, result.Listings[0].ID)
	assert.EqualValues(t, 1, result.Total)

	// No filters at all still gates on approval
	result, err = runListingSearch(db, parseSearchFilters(queryValues()), false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Total)
	ids := []uint{}
	for _, l := range result.Listings {
		ids = append(ids, l.ID)
	}
	assert.ElementsMatch(t, []uint{a.ID, c.ID}, ids)

	// Moderation view sees all three
	result, err = runListingSearch(db, parseSearchFilters(queryValues()), true)
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.Total)
}

func TestSearchFilterConjunction(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "owner")

	match := createTestListing(t, db, owner.ID, listingSeed{
		Title: "Lakeview Apartment", City: "Pune", Price: 250,
		Bedrooms: 3, Bathrooms: 2,
	})
	createTestListing(t, db, owner.ID, listingSeed{
		Title: "Lakeview Apartment Mumbai", City: "Mumbai", Price: 250,
		Bedrooms: 3, Bathrooms: 2,
	})
	createTestListing(t, db, owner.ID, listingSeed{
		Title: "Small Pune Studio", City: "Pune", Price: 250,
		Bedrooms: 1, Bathrooms: 1,
	})
	createTestListing(t, db, owner.ID, listingSeed{
		Title: "Expensive Pune Flat", City: "Pune", Price: 900,
		Bedrooms: 3, Bathrooms: 2,
	})

	f := parseSearchFilters(queryValues(
		"city", "pune",
		"bedrooms", "2",
		"maxPrice", "500",
	))
	result, err := runListingSearch(db, f, false)
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)
	assert.Equal(t, match.ID, result.Listings[0].ID)
}

func TestSearchPriceBoundsInclusive(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "owner")

	for _, price := range []float64{99, 100, 300, 500, 501} {
		createTestListing(t, db, owner.ID, listingSeed{
			Title: fmt.Sprintf("Flat at %.0f", price), City: "Pune", Price: price,
		})
	}

	f := parseSearchFilters(queryValues("minPrice", "100", "maxPrice", "500"))
	result, err := runListingSearch(db, f, false)
	require.NoError(t, err)

	prices := []float64{}
	for _, l := range result.Listings {
		prices = append(prices, l.Price)
	}
	assert.ElementsMatch(t, []float64{100, 300, 500}, prices)
}

func TestSearchBedroomsAtLeast(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "owner")

	for _, beds := range []int{0, 1, 2, 3, 4} {
		createTestListing(t, db, owner.ID, listingSeed{
			Title: fmt.Sprintf("%d bed", beds), City: "Pune", Price: 100, Bedrooms: beds,
		})
	}
	// Unset bedrooms must not match a minimum filter
	createTestListing(t, db, owner.ID, listingSeed{
		Title: "Plot without rooms", Type: models.TypePlot, City: "Pune", Price: 100,
	})

	f := parseSearchFilters(queryValues("bedrooms", "2"))
	result, err := runListingSearch(db, f, false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.Total)
	for _, l := range result.Listings {
		require.NotNil(t, l.Bedrooms)
		assert.GreaterOrEqual(t, *l.Bedrooms, 2)
	}
}

func TestSearchTextMatchesTitleOrDescription(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "owner")

	inTitle := createTestListing(t, db, owner.ID, listingSeed{
		Title: "Sunny GARDEN flat", Description: "two bedrooms", City: "Pune", Price: 100,
	})
	inDescription := createTestListing(t, db, owner.ID, listingSeed{
		Title: "City centre flat", Description: "overlooks a private garden", City: "Pune", Price: 100,
	})
	createTestListing(t, db, owner.ID, listingSeed{
		Title: "Basement unit", Description: "no outdoor space", City: "Pune", Price: 100,
	})

	f := parseSearchFilters(queryValues("search", "Garden"))
	result, err := runListingSearch(db, f, false)
	require.NoError(t, err)

	ids := []uint{}
	for _, l := range result.Listings {
		ids = append(ids, l.ID)
	}
	assert.ElementsMatch(t, []uint{inTitle.ID, inDescription.ID}, ids)
}

func TestSearchUnknownEnumsMatchNothing(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "owner")
	createTestListing(t, db, owner.ID, listingSeed{Title: "Flat", City: "Pune", Price: 100})

	result, err := runListingSearch(db, parseSearchFilters(queryValues("type", "Castle")), false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, result.Total)
	assert.Empty(t, result.Listings)

	result, err = runListingSearch(db, parseSearchFilters(queryValues("priceType", "lease")), false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, result.Total)
}

func TestSearchPagination(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "owner")

	const n = 25
	for i := 0; i < n; i++ {
		createTestListing(t, db, owner.ID, listingSeed{
			Title: fmt.Sprintf("Flat %02d", i), City: "Pune", Price: float64(100 + i),
		})
	}

	seen := map[uint]bool{}
	var lastPages int
	for page := 1; page <= 3; page++ {
		f := parseSearchFilters(queryValues("limit", "10", "page", fmt.Sprint(page)))
		result, err := runListingSearch(db, f, false)
		require.NoError(t, err)

		assert.EqualValues(t, n, result.Total)
		assert.Equal(t, page, result.Page)
		lastPages = result.TotalPages

		for _, l := range result.Listings {
			assert.False(t, seen[l.ID], "listing %d returned twice", l.ID)
			seen[l.ID] = true
		}
	}

	assert.Equal(t, 3, lastPages)
	assert.Len(t, seen, n, "concatenated pages must cover the full match set")

	// Past the last page
	f := parseSearchFilters(queryValues("limit", "10", "page", "4"))
	result, err := runListingSearch(db, f, false)
	require.NoError(t, err)
	assert.Empty(t, result.Listings)
	assert.EqualValues(t, n, result.Total)
}

func TestSearchSortStability(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "owner")

	// Identical prices force the secondary id key to decide the order
	for i := 0; i < 6; i++ {
		createTestListing(t, db, owner.ID, listingSeed{
			Title: fmt.Sprintf("Flat %d", i), City: "Pune", Price: 100,
		})
	}

	var firstRun []uint
	for run := 0; run < 3; run++ {
		f := parseSearchFilters(queryValues("sort", "price", "order", "asc"))
		result, err := runListingSearch(db, f, false)
		require.NoError(t, err)

		ids := []uint{}
		for _, l := range result.Listings {
			ids = append(ids, l.ID)
		}
		if run == 0 {
			firstRun = ids
			continue
		}
		assert.Equal(t, firstRun, ids)
	}
}

func TestModerationSearchHonorsSortSpec(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "owner")

	cheap := createTestListing(t, db, owner.ID, listingSeed{
		Title: "Cheap Pending", City: "Pune", Price: 100, Approval: models.ApprovalPending,
	})
	mid := createTestListing(t, db, owner.ID, listingSeed{
		Title: "Mid Approved", City: "Pune", Price: 300,
	})
	dear := createTestListing(t, db, owner.ID, listingSeed{
		Title: "Dear Rejected", City: "Pune", Price: 500, Approval: models.ApprovalRejected,
	})

	// Ungated, ascending by price
	f := parseSearchFilters(queryValues("sort", "price", "order", "asc"))
	result, err := runModerationSearch(db, f, "")
	require.NoError(t, err)
	require.Len(t, result.Listings, 3)
	assert.Equal(t, []uint{cheap.ID, mid.ID, dear.ID},
		[]uint{result.Listings[0].ID, result.Listings[1].ID, result.Listings[2].ID})

	// Approval filter narrows the queue
	result, err = runModerationSearch(db, f, models.ApprovalPending)
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)
	assert.Equal(t, cheap.ID, result.Listings[0].ID)

	// Unknown approval value matches nothing
	result, err = runModerationSearch(db, f, "limbo")
	require.NoError(t, err)
	assert.EqualValues(t, 0, result.Total)
}

func TestParseSearchFilters(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := parseSearchFilters(queryValues())
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, defaultPageSize, f.Limit)
		assert.Equal(t, "createdAt", f.Sort)
		assert.Equal(t, "desc", f.Order)
		assert.Nil(t, f.Bedrooms)
		assert.Nil(t, f.MinPrice)
	})

	t.Run("malformed values are dropped", func(t *testing.T) {
		f := parseSearchFilters(queryValues(
			"bedrooms", "two",
			"minPrice", "cheap",
			"maxPrice", "-5",
			"page", "0",
			"limit", "nope",
		))
		assert.Nil(t, f.Bedrooms)
		assert.Nil(t, f.MinPrice)
		assert.Nil(t, f.MaxPrice)
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, defaultPageSize, f.Limit)
	})

	t.Run("limit is capped", func(t *testing.T) {
		f := parseSearchFilters(queryValues("limit", "5000"))
		assert.Equal(t, maxPageSize, f.Limit)
	})

	t.Run("sort and order whitelists", func(t *testing.T) {
		f := parseSearchFilters(queryValues("sort", "price", "order", "ASC"))
		assert.Equal(t, "price", f.Sort)
		assert.Equal(t, "asc", f.Order)

		f = parseSearchFilters(queryValues("sort", "owner_id; DROP TABLE listings", "order", "sideways"))
		assert.Equal(t, "createdAt", f.Sort)
		assert.Equal(t, "desc", f.Order)
	})

	t.Run("values are parsed", func(t *testing.T) {
		f := parseSearchFilters(queryValues(
			"bedrooms", "3",
			"minPrice", "150.5",
			"maxPrice", "900",
			"page", "2",
			"limit", "24",
		))
		require.NotNil(t, f.Bedrooms)
		assert.Equal(t, 3, *f.Bedrooms)
		require.NotNil(t, f.MinPrice)
		assert.Equal(t, 150.5, *f.MinPrice)
		require.NotNil(t, f.MaxPrice)
		assert.Equal(t, float64(900), *f.MaxPrice)
		assert.Equal(t, 2, f.Page)
		assert.Equal(t, 24, f.Limit)
	})
}
