package routes

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/punamchanne/Property-Dealing/models"
	"github.com/punamchanne/Property-Dealing/storage"
	"github.com/punamchanne/Property-Dealing/utils"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// searchFilters is the normalized, request-scoped filter set. Every field is
// either usable or absent by the time the compiler sees it: values that fail
// to parse are dropped during normalization, never rejected.
type searchFilters struct {
	Type      string
	City      string
	PriceType string
	Search    string
	Bedrooms  *int
	Bathrooms *int
	MinPrice  *float64
	MaxPrice  *float64
	Page      int
	Limit     int
	Sort      string // createdAt, price, views
	Order     string // asc, desc
}

// parseSearchFilters normalizes raw query values into searchFilters.
func parseSearchFilters(q url.Values) searchFilters {
	f := searchFilters{
		Type:      strings.TrimSpace(q.Get("type")),
		City:      strings.TrimSpace(q.Get("city")),
		PriceType: strings.TrimSpace(q.Get("priceType")),
		Search:    strings.TrimSpace(q.Get("search")),
		Page:      1,
		Limit:     defaultPageSize,
		Sort:      "createdAt",
		Order:     "desc",
	}

	// Minimum bedroom/bathroom counts: "at least" semantics, zero is a no-op
	if v, err := strconv.Atoi(q.Get("bedrooms")); err == nil && v > 0 {
		f.Bedrooms = &v
	}
	if v, err := strconv.Atoi(q.Get("bathrooms")); err == nil && v > 0 {
		f.Bathrooms = &v
	}

	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil && v > 0 {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil && v > 0 {
		f.MaxPrice = &v
	}

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 1 {
		f.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v >= 1 {
		f.Limit = v
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}

	switch q.Get("sort") {
	case "price":
		f.Sort = "price"
	case "views":
		f.Sort = "views"
	}
	if strings.EqualFold(q.Get("order"), "asc") {
		f.Order = "asc"
	}

	return f
}

// compileListingSearch builds the filter conjunction over the listing table.
// The visibility gate is part of the conjunction: unless includeUnapproved is
// set, only approved listings are eligible regardless of the other filters.
func compileListingSearch(db *gorm.DB, f searchFilters, includeUnapproved bool) *gorm.DB {
	q := db.Model(&models.Listing{})

	if f.Type != "" {
		if models.ValidType(f.Type) {
			q = q.Where("type = ?", f.Type)
		} else {
			q = q.Where("1 = 0") // unknown type matches nothing
		}
	}
	if f.PriceType != "" {
		if f.PriceType == "sale" || f.PriceType == "rent" {
			q = q.Where("price_type = ?", f.PriceType)
		} else {
			q = q.Where("1 = 0")
		}
	}
	if f.City != "" {
		q = q.Where("lower(city) LIKE ?", "%"+strings.ToLower(f.City)+"%")
	}
	if f.Bedrooms != nil {
		q = q.Where("bedrooms >= ?", *f.Bedrooms)
	}
	if f.Bathrooms != nil {
		q = q.Where("bathrooms >= ?", *f.Bathrooms)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("lower(title) LIKE ? OR lower(description) LIKE ?", like, like)
	}

	if !includeUnapproved {
		q = q.Where("approval = ?", models.ApprovalApproved)
	}

	return q
}

// orderClause maps the whitelisted sort spec to a SQL ORDER BY fragment.
// Callers append a secondary id key for stability.
func (f searchFilters) orderClause() string {
	column := "created_at"
	switch f.Sort {
	case "price":
		column = "price"
	case "views":
		column = "views"
	}
	direction := "DESC"
	if f.Order == "asc" {
		direction = "ASC"
	}
	return column + " " + direction
}

type searchResult struct {
	Listings   []models.Listing
	Total      int64
	TotalPages int
	Page       int
}

// runListingSearch counts the full match set, then fetches one page in a
// deterministic order. The secondary id key keeps the sort stable so
// concatenating pages reproduces the match set exactly.
func runListingSearch(db *gorm.DB, f searchFilters, includeUnapproved bool) (*searchResult, error) {
	q := compileListingSearch(db, f, includeUnapproved)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var listings []models.Listing
	err := q.Order(f.orderClause()).Order("id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Preload("Owner").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}

	return &searchResult{
		Listings:   listings,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(f.Limit))),
		Page:       f.Page,
	}, nil
}

// runModerationSearch is the admin variant: no visibility gate, with an
// optional approval filter for the moderation queue. It honors the same sort
// spec as the public search.
func runModerationSearch(db *gorm.DB, f searchFilters, approval string) (*searchResult, error) {
	q := compileListingSearch(db, f, true)
	switch approval {
	case "":
	case models.ApprovalPending, models.ApprovalApproved, models.ApprovalRejected:
		q = q.Where("approval = ?", approval)
	default:
		q = q.Where("1 = 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var listings []models.Listing
	err := q.Order(f.orderClause()).Order("id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Preload("Owner").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}

	return &searchResult{
		Listings:   listings,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(f.Limit))),
		Page:       f.Page,
	}, nil
}

// SearchListings handles the public catalog search with filters
func SearchListings(ctx iris.Context) {
	f := parseSearchFilters(ctx.Request().URL.Query())

	result, err := runListingSearch(storage.DB, f, false)
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"success": false, "message": "Failed to search listings"})
		return
	}

	ctx.JSON(iris.Map{
		"success":     true,
		"count":       len(result.Listings),
		"total":       result.Total,
		"totalPages":  result.TotalPages,
		"currentPage": result.Page,
		"listings":    result.Listings,
	})
}

// AdminListListings runs the same compiler without the approval gate, with an
// optional approval filter for the moderation queue.
func AdminListListings(ctx iris.Context) {
	f := parseSearchFilters(ctx.Request().URL.Query())

	result, err := runModerationSearch(storage.DB, f, ctx.URLParamDefault("approval", ""))
	if err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, result.Listings, f.Page, f.Limit, result.Total)
}
