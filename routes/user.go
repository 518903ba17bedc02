package routes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/punamchanne/Property-Dealing/models"
	"github.com/punamchanne/Property-Dealing/storage"
	"github.com/punamchanne/Property-Dealing/utils"
	"golang.org/x/crypto/bcrypt"
)

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Self-registration is limited to the user and owner roles; admins are
	// created out of band
	role := userInput.Role
	if role == "" {
		role = "user"
	}

	newUser = models.User{
		Name:     userInput.Name,
		Email:    strings.ToLower(userInput.Email),
		Password: hashedPassword,
		Phone:    userInput.Phone,
		Role:     role,
	}

	if err := storage.DB.Create(&newUser).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.LogActivity(newUser.ID, models.ActionRegister,
		fmt.Sprintf("New %s registered: %s", role, newUser.Email), nil)

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existingUser models.User
	errorMsg := "Invalid email or password."
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	if existingUser.IsBlocked {
		utils.CreateError(iris.StatusForbidden, "Account Blocked", "Your account has been blocked. Contact support.", ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	utils.LogActivity(existingUser.ID, models.ActionLogin,
		fmt.Sprintf("User logged in: %s", existingUser.Email), nil)

	returnUser(existingUser, ctx)
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	userExists := userExistsQuery.RowsAffected > 0
	return userExists, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"phone":        user.Phone,
		"role":         user.Role,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

func getUserByID(id string, ctx iris.Context) *models.User {
	var user models.User
	userExists := storage.DB.Where("id = ?", id).Limit(1).Find(&user)

	if userExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}
	if userExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil
	}

	return &user
}

// GET /admin/users?search=
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	search := strings.TrimSpace(ctx.URLParamDefault("search", ""))

	q := storage.DB.Model(&models.User{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(name) LIKE ? OR lower(email) LIKE ?", like, like)
	}

	var total int64
	q.Count(&total)

	var users []models.User
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&users).Error; err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// PUT /admin/users/:id/block
func AdminBlockUser(ctx iris.Context) {
	setUserBlocked(ctx, true)
}

// PUT /admin/users/:id/unblock
func AdminUnblockUser(ctx iris.Context) {
	setUserBlocked(ctx, false)
}

func setUserBlocked(ctx iris.Context, blocked bool) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	user.IsBlocked = blocked
	if err := storage.DB.Model(user).Update("is_blocked", blocked).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	adminID := ctx.Values().Get("userID").(uint)
	action := models.ActionBlockUser
	verb := "blocked"
	if !blocked {
		action = models.ActionUnblockUser
		verb = "unblocked"
	}
	utils.LogActivity(adminID, action,
		fmt.Sprintf("Admin %s user: %s", verb, user.Email),
		map[string]string{"targetUserID": strconv.FormatUint(uint64(user.ID), 10)})

	ctx.JSON(iris.Map{"success": true, "message": fmt.Sprintf("User %s successfully", verb), "user": user})
}

// PUT /admin/users/:id/role {role}
func AdminChangeUserRole(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var body struct {
		Role string `json:"role"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if body.Role != "user" && body.Role != "owner" && body.Role != "admin" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid role", ctx)
		return
	}

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	user.Role = body.Role
	if err := storage.DB.Model(user).Update("role", body.Role).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "User role updated successfully", "user": user})
}

// GET /admin/activity
func AdminRecentActivity(ctx iris.Context) {
	var activities []models.ActivityLog
	if err := storage.DB.Preload("User").
		Order("created_at DESC").Limit(50).
		Find(&activities).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(activities), "activities": activities})
}

// GET /admin/users/:id/activity
func AdminUserActivity(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var activities []models.ActivityLog
	if err := storage.DB.Where("user_id = ?", id).
		Order("created_at DESC").Limit(100).
		Find(&activities).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(activities), "activities": activities})
}

type RegisterUserInput struct {
	Name     string `json:"name" validate:"required,max=256"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=256"`
	Phone    string `json:"phone" validate:"max=32"`
	Role     string `json:"role" validate:"omitempty,oneof=user owner"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
