package handlers

import (
	"fmt"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gembot/models"
	"gembot/store"
)

type CreatePromoInput struct {
	Code     string `json:"code"` // optional, auto-generated when empty
	Type     string `json:"type" binding:"required"`
	Days     int    `json:"days"`
	Requests int    `json:"requests"`
	Uses     int    `json:"uses"`
	Count    int    `json:"count"` // bulk creation, defaults to 1
}

// CreatePromoCodes issues one or more codes. With no explicit code the
// codes are generated in the VIP-XXXXXX / PREMIUM-30-XXXX / REQ-50-XXXX
// shape. An explicit code with count > 1 makes no sense and is rejected.
func (a *API) CreatePromoCodes(c *gin.Context) {
	var input CreatePromoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	count := input.Count
	if count < 1 {
		count = 1
	}
	if input.Code != "" && count > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot bulk-create with a fixed code"})
		return
	}

	var created []models.PromoCode
	for i := 0; i < count; i++ {
		code := input.Code
		if code == "" {
			code = generateCode(input.Type, input.Days, input.Requests)
		}

		promo, err := a.store.CreatePromo(code, input.Type, input.Days, input.Requests, input.Uses)
		if err != nil {
			if err == store.ErrInvalidPromo {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid promo parameters (type/days/requests)"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create promo code"})
			}
			return
		}
		created = append(created, *promo)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Promo codes created", "data": created})
}

func (a *API) ListPromoCodes(c *gin.Context) {
	promos, err := a.store.ListPromos()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list promo codes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": promos})
}

func (a *API) ListUsers(c *gin.Context) {
	users, err := a.store.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (a *API) UserStats(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID must be a number"})
		return
	}

	user, err := a.store.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	total, err := a.store.MessageCount(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load stats"})
		return
	}

	allowance, err := a.store.RemainingRequests(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load stats"})
		return
	}

	remaining := interface{}("unlimited")
	if !allowance.Unlimited {
		remaining = allowance.Remaining
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"user_id":         user.UserID,
			"username":        user.Username,
			"plan":            user.Plan,
			"premium_expires": user.PremiumExpires,
			"created_at":      user.CreatedAt,
		},
		"stats": gin.H{
			"total_messages":     total,
			"remaining_requests": remaining,
		},
	})
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func generateCode(promoType string, days, requests int) string {
	switch promoType {
	case models.PromoPremium:
		return fmt.Sprintf("PREMIUM-%d-%s", days, randomCode(4))
	case models.PromoRequests:
		return fmt.Sprintf("REQ-%d-%s", requests, randomCode(4))
	default:
		return fmt.Sprintf("VIP-%s", randomCode(6))
	}
}
