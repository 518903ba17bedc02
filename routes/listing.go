package routes

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/punamchanne/Property-Dealing/models"
	"github.com/punamchanne/Property-Dealing/storage"
	"github.com/punamchanne/Property-Dealing/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func CreateListing(ctx iris.Context) {
	var input CreateListingInput

	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	// Admin-created listings go live immediately; owner-created ones wait for
	// moderation
	approval := models.ApprovalPending
	if claims.Role == "admin" {
		approval = models.ApprovalApproved
	}

	// Ensure array columns are never null
	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	amenitiesJSON, _ := json.Marshal(amenities)

	images := input.Images
	if images == nil {
		images = []models.ListingImage{}
	}
	imagesJSON, _ := json.Marshal(images)

	tour := input.Tour360
	if tour == nil {
		tour = []models.TourImage{}
	}
	tourJSON, _ := json.Marshal(tour)

	status := input.Status
	if status == "" {
		status = "available"
	}
	priceType := input.PriceType
	if priceType == "" {
		priceType = "sale"
	}

	listing := models.Listing{
		OwnerID:     claims.ID,
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		Price:       input.Price,
		PriceType:   priceType,
		Address:     input.Address,
		City:        input.City,
		State:       input.State,
		Country:     input.Country,
		ZipCode:     input.ZipCode,
		Lat:         input.Lat,
		Lng:         input.Lng,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		AreaValue:   input.AreaValue,
		AreaUnit:    input.AreaUnit,
		Amenities:   string(amenitiesJSON),
		Images:      datatypes.JSON(imagesJSON),
		Model3DURL:  input.Model3DURL,
		Tour360:     datatypes.JSON(tourJSON),
		Status:      status,
		Approval:    approval,
	}

	result := storage.DB.Create(&listing)
	if result.Error != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"success": false, "message": "Failed to create listing"})
		return
	}

	utils.LogActivity(claims.ID, models.ActionUploadListing,
		fmt.Sprintf("Uploaded listing: %s", listing.Title),
		map[string]string{"listingID": strconv.FormatUint(uint64(listing.ID), 10)})

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"success": true,
		"message": "Listing created successfully",
		"listing": &listing,
	})
}

// fetchVisibleListing loads a listing for the given caller. Unapproved
// listings are visible only to their owner or an admin; everyone else gets a
// not-found, so existence is never leaked.
func fetchVisibleListing(db *gorm.DB, id string, callerID uint, role string) (*models.Listing, error) {
	var listing models.Listing
	result := db.Preload("Owner").Where("id = ?", id).Find(&listing)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	if listing.Approval != models.ApprovalApproved {
		if role != "admin" && listing.OwnerID != callerID {
			return nil, gorm.ErrRecordNotFound
		}
	}

	return &listing, nil
}

// bumpListingViews increments the view counter atomically at the storage
// layer, so concurrent detail fetches never lose updates.
func bumpListingViews(db *gorm.DB, id uint) error {
	return db.Model(&models.Listing{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// callerFromHeader resolves the optional bearer token on public routes.
// Anonymous requests and invalid tokens resolve to the anonymous caller.
func callerFromHeader(header string) (uint, string) {
	claims := utils.AccessClaimsFromHeader(header)
	if claims == nil {
		return 0, ""
	}
	return claims.ID, claims.Role
}

func GetListing(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	callerID, role := callerFromHeader(ctx.GetHeader("Authorization"))
	listing, err := fetchVisibleListing(storage.DB, id, callerID, role)
	if err == gorm.ErrRecordNotFound {
		utils.CreateNotFound(ctx)
		return
	}
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := bumpListingViews(storage.DB, listing.ID); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	listing.Views++

	ctx.JSON(iris.Map{"success": true, "listing": listing})
}

// findListing loads a listing by id with no visibility gate. Storage failures
// surface as-is so callers can tell them apart from a genuinely missing row.
func findListing(db *gorm.DB, id string) (*models.Listing, error) {
	var listing models.Listing
	result := db.Where("id = ?", id).Find(&listing)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &listing, nil
}

// listingsByOwner returns every listing of the given owner, newest first,
// regardless of approval state.
func listingsByOwner(db *gorm.DB, ownerID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id ASC").
		Find(&listings).Error
	return listings, err
}

func GetMyListings(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	listings, err := listingsByOwner(storage.DB, claims.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(listings), "listings": listings})
}

func UpdateListing(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	listing, err := findListing(storage.DB, id)
	if err == gorm.ErrRecordNotFound {
		utils.CreateNotFound(ctx)
		return
	}
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if listing.OwnerID != claims.ID && claims.Role != "admin" {
		utils.CreateForbidden(ctx)
		return
	}

	var input UpdateListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if err := applyListingUpdate(storage.DB, listing, input); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.LogActivity(claims.ID, models.ActionUpdateListing,
		fmt.Sprintf("Updated listing: %s", listing.Title),
		map[string]string{"listingID": strconv.FormatUint(uint64(listing.ID), 10)})

	ctx.JSON(iris.Map{
		"success": true,
		"message": "Listing updated successfully",
		"listing": listing,
	})
}

// applyListingUpdate overwrites the mutable columns with the request body and
// persists the whole record. Save writes zero values too, so a cleared
// optional field really clears instead of keeping the old value.
func applyListingUpdate(db *gorm.DB, listing *models.Listing, input UpdateListingInput) error {
	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	amenitiesJSON, _ := json.Marshal(amenities)

	images := input.Images
	if images == nil {
		images = []models.ListingImage{}
	}
	imagesJSON, _ := json.Marshal(images)

	tour := input.Tour360
	if tour == nil {
		tour = []models.TourImage{}
	}
	tourJSON, _ := json.Marshal(tour)

	listing.Title = input.Title
	listing.Description = input.Description
	listing.Type = input.Type
	listing.Price = input.Price
	listing.PriceType = input.PriceType
	listing.Address = input.Address
	listing.City = input.City
	listing.State = input.State
	listing.Country = input.Country
	listing.ZipCode = input.ZipCode
	listing.Lat = input.Lat
	listing.Lng = input.Lng
	listing.Bedrooms = input.Bedrooms
	listing.Bathrooms = input.Bathrooms
	listing.AreaValue = input.AreaValue
	listing.AreaUnit = input.AreaUnit
	listing.Amenities = string(amenitiesJSON)
	listing.Images = datatypes.JSON(imagesJSON)
	listing.Model3DURL = input.Model3DURL
	listing.Tour360 = datatypes.JSON(tourJSON)
	if input.Status != "" {
		listing.Status = input.Status
	}

	return db.Save(listing).Error
}

func DeleteListing(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	listing, err := findListing(storage.DB, id)
	if err == gorm.ErrRecordNotFound {
		utils.CreateNotFound(ctx)
		return
	}
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	listingDeleted := storage.DB.Delete(&models.Listing{}, listing.ID)
	if listingDeleted.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.LogActivity(claims.ID, models.ActionDeleteListing,
		fmt.Sprintf("Deleted listing: %s", listing.Title),
		map[string]string{"listingID": strconv.FormatUint(uint64(listing.ID), 10)})

	ctx.JSON(iris.Map{"success": true, "message": "Listing deleted successfully"})
}

// ApproveListing flips the moderation state. Approving makes the listing
// publicly visible; rejecting keeps it owner-visible only.
func ApproveListing(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var input ApproveListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	listing, err := findListing(storage.DB, id)
	if err == gorm.ErrRecordNotFound {
		utils.CreateNotFound(ctx)
		return
	}
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	verdict := "rejected"
	listing.Approval = models.ApprovalRejected
	if input.Approved != nil && *input.Approved {
		verdict = "approved"
		listing.Approval = models.ApprovalApproved
	}
	listing.ReviewNotes = input.Notes

	if err := storage.DB.Save(listing).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	utils.LogActivity(claims.ID, models.ActionApproveListing,
		fmt.Sprintf("Listing %s: %s", verdict, listing.Title),
		map[string]string{"listingID": strconv.FormatUint(uint64(listing.ID), 10)})

	ctx.JSON(iris.Map{
		"success": true,
		"message": fmt.Sprintf("Listing %s successfully", verdict),
		"listing": listing,
	})
}

// AdminGetListing returns any listing regardless of approval, without
// touching the view counter.
func AdminGetListing(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var listing models.Listing
	result := storage.DB.Preload("Owner").Where("id = ?", id).Find(&listing)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": &listing, "meta": iris.Map{}, "links": iris.Map{}})
}

type CreateListingInput struct {
	Title       string                `json:"title" validate:"required,max=256"`
	Description string                `json:"description" validate:"required"`
	Type        string                `json:"type" validate:"required,oneof=Apartment Villa Plot House Commercial Office"`
	Price       float64               `json:"price" validate:"required,gte=0"`
	PriceType   string                `json:"priceType" validate:"omitempty,oneof=sale rent"`
	Address     string                `json:"address" validate:"required,max=512"`
	City        string                `json:"city" validate:"max=256"`
	State       string                `json:"state" validate:"max=256"`
	Country     string                `json:"country" validate:"max=128"`
	ZipCode     string                `json:"zipCode" validate:"max=32"`
	Lat         *float64              `json:"lat"`
	Lng         *float64              `json:"lng"`
	Bedrooms    *int                  `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms   *int                  `json:"bathrooms" validate:"omitempty,gte=0"`
	AreaValue   *float64              `json:"areaValue" validate:"omitempty,gte=0"`
	AreaUnit    string                `json:"areaUnit" validate:"omitempty,oneof=sqft sqm"`
	Amenities   []string              `json:"amenities"`
	Images      []models.ListingImage `json:"images"`
	Model3DURL  string                `json:"model3DURL"`
	Tour360     []models.TourImage    `json:"tour360"`
	Status      string                `json:"status" validate:"omitempty,oneof=available sold rented pending"`
}

type UpdateListingInput struct {
	Title       string                `json:"title" validate:"required,max=256"`
	Description string                `json:"description" validate:"required"`
	Type        string                `json:"type" validate:"required,oneof=Apartment Villa Plot House Commercial Office"`
	Price       float64               `json:"price" validate:"required,gte=0"`
	PriceType   string                `json:"priceType" validate:"omitempty,oneof=sale rent"`
	Address     string                `json:"address" validate:"required,max=512"`
	City        string                `json:"city" validate:"max=256"`
	State       string                `json:"state" validate:"max=256"`
	Country     string                `json:"country" validate:"max=128"`
	ZipCode     string                `json:"zipCode" validate:"max=32"`
	Lat         *float64              `json:"lat"`
	Lng         *float64              `json:"lng"`
	Bedrooms    *int                  `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms   *int                  `json:"bathrooms" validate:"omitempty,gte=0"`
	AreaValue   *float64              `json:"areaValue" validate:"omitempty,gte=0"`
	AreaUnit    string                `json:"areaUnit" validate:"omitempty,oneof=sqft sqm"`
	Amenities   []string              `json:"amenities"`
	Images      []models.ListingImage `json:"images"`
	Model3DURL  string                `json:"model3DURL"`
	Tour360     []models.TourImage    `json:"tour360"`
	Status      string                `json:"status" validate:"omitempty,oneof=available sold rented pending"`
}

type ApproveListingInput struct {
	Approved *bool  `json:"approved" validate:"required"`
	Notes    string `json:"notes"`
}
