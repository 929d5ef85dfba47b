package handlers

import (
	"net/http"

	"fanverse/pkg/fanrpc"
	"fanverse/services/api-gateway/internal/middleware"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	client fanrpc.ProfileServiceClient
}

func NewProfileHandler(client fanrpc.ProfileServiceClient) *ProfileHandler {
	return &ProfileHandler{client: client}
}

// ownID returns the :id path parameter if it belongs to the caller.
func ownID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" || id != c.GetString(middleware.UserIDKey) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "cannot access another user's profile", "code": "PermissionDenied"})
		return "", false
	}
	return id, true
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := ownID(c)
	if !ok {
		return
	}

	res, err := h.client.GetProfile(c.Request.Context(), &fanrpc.GetProfileRequest{UserID: id})
	if err != nil {
		abortRPC(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, ok := ownID(c)
	if !ok {
		return
	}

	var patch fanrpc.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.client.UpdateProfile(c.Request.Context(), &fanrpc.UpdateProfileRequest{
		UserID: id,
		Patch:  patch,
	})
	if err != nil {
		abortRPC(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
