package controller

import (
	"compliance_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser 取出中间件放入的 Claims，缺失时直接写 401
func currentUser(ctx *gin.Context) (*util.Claims, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return claims, true
}

func pageParams(ctx *gin.Context) (int, int) {
	return util.ParseIntDefault(ctx.Query("page"), 1), util.ParseIntDefault(ctx.Query("limit"), 20)
}

type PageResult struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
