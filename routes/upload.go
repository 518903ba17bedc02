package routes

import (
	"fmt"
	"log"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/punamchanne/Property-Dealing/storage"
	"github.com/punamchanne/Property-Dealing/utils"
)

// POST /upload/images
func UploadImages(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input UploadImagesInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	uploaded := []iris.Map{}
	for i, image := range input.Images {
		publicID := fmt.Sprintf("listings/%d-%d-%d", userID, time.Now().UnixNano(), i)
		url, id, uploadErr := storage.UploadBase64Image(image, publicID)
		if uploadErr != nil {
			log.Printf("image upload failed: %v", uploadErr)
			continue
		}
		uploaded = append(uploaded, iris.Map{"url": url, "publicID": id})
	}

	if len(uploaded) == 0 {
		utils.CreateError(iris.StatusBadGateway, "Upload Error", "No images could be uploaded", ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(uploaded), "images": uploaded})
}

// DELETE /upload/images?url=
func DeleteImage(ctx iris.Context) {
	imageURL := ctx.URLParamDefault("url", "")
	if imageURL == "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "url query parameter is required", ctx)
		return
	}

	if !storage.DeleteImageFromCloudinary(imageURL) {
		utils.CreateError(iris.StatusBadGateway, "Upload Error", "Failed to delete image", ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Image deleted successfully"})
}

type UploadImagesInput struct {
	Images []string `json:"images" validate:"required,min=1,max=12,dive,required"`
}
