package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func UserIDMiddleware(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	claims := jwt.Get(ctx).(*AccessToken)

	userID := strconv.FormatUint(uint64(claims.ID), 10)

	if userID != id {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}
	ctx.Next()
}

// UserIDFromTokenMiddleware extracts user ID and role from the JWT token and
// stores them in the context. Use this for routes without an {id} parameter.
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("role", claims.Role)
	ctx.Next()
}

// AccessClaimsFromHeader parses a bearer Authorization header when one is
// present. Anonymous or invalid tokens yield nil, never an error: public
// routes fall back to the anonymous view instead of rejecting the request.
func AccessClaimsFromHeader(header string) *AccessToken {
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return nil
	}

	verified, err := jwt.Verify(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")), []byte(raw))
	if err != nil {
		return nil
	}

	var claims AccessToken
	if err := verified.Claims(&claims); err != nil {
		return nil
	}
	return &claims
}

// OwnerOrAdminMiddleware ensures the requester can manage listings.
func OwnerOrAdminMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != "owner" && claims.Role != "admin" {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"error": "forbidden", "message": "owner access required"})
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("role", claims.Role)
	ctx.Next()
}

// AdminOnlyMiddleware ensures the requester has the admin role
func AdminOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != "admin" {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"error": "forbidden", "message": "admin access required"})
		return
	}
	// Ensure userID is available to downstream handlers
	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("role", claims.Role)
	ctx.Next()
}
