package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/punamchanne/Property-Dealing/routes"
	"github.com/punamchanne/Property-Dealing/storage"
	"github.com/punamchanne/Property-Dealing/utils"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Routes
	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Get("/{id}/listings/saved", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.GetUserSavedListings)
		user.Patch("/{id}/listings/saved", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterUserSavedListings)
		user.Get("/{id}/listings/compare", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.GetUserCompareListings)
		user.Patch("/{id}/listings/compare", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterUserCompareListings)
	}

	listings := app.Party("/api/listings")
	{
		listings.Get("/", routes.SearchListings)
		listings.Get("/owner/mine", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetMyListings)
		listings.Get("/{id:uint}", routes.GetListing)
		listings.Post("/", accessTokenVerifierMiddleware, utils.OwnerOrAdminMiddleware, routes.CreateListing)
		listings.Put("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateListing)
		listings.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.DeleteListing)
		listings.Put("/{id:uint}/approve", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.ApproveListing)
	}

	meetings := app.Party("/api/meetings")
	{
		meetings.Get("/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.AdminListMeetings)
		meetings.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateMeeting)
		meetings.Get("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetMyMeetings)
		meetings.Put("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateMeeting)
		meetings.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CancelMeeting)
	}

	upload := app.Party("/api/upload", accessTokenVerifierMiddleware, utils.OwnerOrAdminMiddleware)
	{
		upload.Post("/images", routes.UploadImages)
		upload.Delete("/images", routes.DeleteImage)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/listings", routes.AdminListListings)
		admin.Get("/listings/{id:uint}", routes.AdminGetListing)
		admin.Get("/users", routes.AdminListUsers)
		admin.Put("/users/{id:uint}/block", routes.AdminBlockUser)
		admin.Put("/users/{id:uint}/unblock", routes.AdminUnblockUser)
		admin.Put("/users/{id:uint}/role", routes.AdminChangeUserRole)
		admin.Get("/users/{id:uint}/activity", routes.AdminUserActivity)
		admin.Get("/activity", routes.AdminRecentActivity)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
