package handlers

import (
	"net/http"

	"fanverse/pkg/fanrpc"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	client fanrpc.AuthServiceClient
}

func NewAuthHandler(client fanrpc.AuthServiceClient) *AuthHandler {
	return &AuthHandler{client: client}
}

type signUpReq struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
}

type resendReq struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.client.SignUp(c.Request.Context(), &fanrpc.SignUpRequest{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		abortRPC(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.client.SignIn(c.Request.Context(), &fanrpc.SignInRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		abortRPC(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.client.Refresh(c.Request.Context(), &fanrpc.RefreshRequest{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		abortRPC(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Logout revokes the refresh token when one is given. It reports success even
// if revocation fails so clients can always drop their local session.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutReq
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		if _, err := h.client.SignOut(c.Request.Context(), &fanrpc.SignOutRequest{
			RefreshToken: req.RefreshToken,
		}); err != nil {
			_ = c.Error(err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	var req resendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.client.ResendConfirmation(c.Request.Context(), &fanrpc.ResendConfirmationRequest{
		Email: req.Email,
	}); err != nil {
		abortRPC(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Confirmation email sent"})
}

func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "token is required", "code": "InvalidArgument"})
		return
	}

	if _, err := h.client.ConfirmEmail(c.Request.Context(), &fanrpc.ConfirmEmailRequest{Token: token}); err != nil {
		abortRPC(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed"})
}
