package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gembot/config"
	"gembot/models"
	"gembot/store"
	"gembot/utils"
)

// API serves the admin dashboard endpoints: auth, promo code issuance,
// user overview and export.
type API struct {
	db    *gorm.DB
	store *store.Store
	cfg   *config.Config
}

func NewAPI(db *gorm.DB, st *store.Store, cfg *config.Config) *API {
	return &API{db: db, store: st, cfg: cfg}
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *API) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	var admin models.Admin
	if err := a.db.Where("username = ?", input.Username).First(&admin).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong username or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong username or password"})
		return
	}

	token, err := utils.GenerateToken(admin.ID, admin.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
			"role":     admin.Role,
		},
	})
}

// RegisterOwner bootstraps the first admin account. Guarded by a setup
// secret from the environment so it can't be hit by strangers.
func (a *API) RegisterOwner(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
		Secret   string `json:"secret" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	if a.cfg.OwnerSetupSecret == "" || input.Secret != a.cfg.OwnerSetupSecret {
		c.JSON(http.StatusForbidden, gin.H{"error": "Wrong setup secret"})
		return
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	admin := models.Admin{
		Username: input.Username,
		Password: string(hashed),
		Role:     "admin",
	}

	if err := a.db.Create(&admin).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not create admin. Username may already exist."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Admin created",
		"admin":   gin.H{"username": admin.Username, "role": admin.Role},
	})
}
