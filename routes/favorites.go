package routes

import (
	"encoding/json"

	"github.com/kataras/iris/v12"
	"github.com/punamchanne/Property-Dealing/models"
	"github.com/punamchanne/Property-Dealing/storage"
	"github.com/punamchanne/Property-Dealing/utils"
	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
)

// Compare is capped so the comparison table stays readable; the wishlist is
// unbounded.
const maxCompareListings = 4

// alterIDList applies an add/remove op to a JSON id list. For "add" with a
// positive maxLen, ok reports whether the element fit; the list is returned
// unchanged when it did not.
func alterIDList(list datatypes.JSON, op string, id uint, maxLen int) (datatypes.JSON, bool, error) {
	var ids []uint
	if list != nil {
		if err := json.Unmarshal(list, &ids); err != nil {
			return list, false, err
		}
	}

	switch op {
	case "add":
		if !slices.Contains(ids, id) {
			if maxLen > 0 && len(ids) >= maxLen {
				return list, false, nil
			}
			ids = append(ids, id)
		}
	case "remove":
		if i := slices.Index(ids, id); i >= 0 {
			ids = append(ids[:i], ids[i+1:]...)
		}
	}

	out, err := json.Marshal(ids)
	if err != nil {
		return list, false, err
	}
	return datatypes.JSON(out), true, nil
}

func GetUserSavedListings(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	listings, err := listingsFromIDList(user.SavedListings)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(listings), "listings": listings})
}

func AlterUserSavedListings(ctx iris.Context) {
	alterUserListingList(ctx, "saved_listings", 0)
}

func GetUserCompareListings(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	listings, err := listingsFromIDList(user.CompareListings)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(listings), "listings": listings})
}

func AlterUserCompareListings(ctx iris.Context) {
	alterUserListingList(ctx, "compare_listings", maxCompareListings)
}

func alterUserListingList(ctx iris.Context, column string, maxLen int) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	var req AlterListingListInput
	err := ctx.ReadJSON(&req)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Only existing, publicly visible listings can be saved or compared
	if req.Op == "add" {
		var listing models.Listing
		listingExists := storage.DB.Where("id = ? AND approval = ?", req.ListingID, models.ApprovalApproved).Find(&listing)
		if listingExists.Error != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		if listingExists.RowsAffected == 0 {
			utils.CreateNotFound(ctx)
			return
		}
	}

	current := user.SavedListings
	if column == "compare_listings" {
		current = user.CompareListings
	}

	updated, ok, alterErr := alterIDList(current, req.Op, req.ListingID, maxLen)
	if alterErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !ok {
		ctx.StatusCode(iris.StatusConflict)
		ctx.JSON(iris.Map{"success": false, "message": "Compare list is full (max 4 listings)"})
		return
	}

	if err := storage.DB.Model(user).UpdateColumn(column, updated).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var ids []uint
	json.Unmarshal(updated, &ids)
	ctx.JSON(iris.Map{"success": true, "listings": ids})
}

func listingsFromIDList(list datatypes.JSON) ([]models.Listing, error) {
	var ids []uint
	if list != nil {
		if err := json.Unmarshal(list, &ids); err != nil {
			return nil, err
		}
	}

	listings := []models.Listing{}
	if len(ids) == 0 {
		return listings, nil
	}

	err := storage.DB.Where("id IN ?", ids).Find(&listings).Error
	return listings, err
}

type AlterListingListInput struct {
	Op        string `json:"op" validate:"required,oneof=add remove"`
	ListingID uint   `json:"listingID" validate:"required"`
}
