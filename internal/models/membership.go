package models

import (
	"time"
)

// Favorite marks a recipe as favorited by a user. The row's existence is the state.
type Favorite struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	RecipeID  uint   `gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe"`
	Recipe    Recipe `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// ShoppingCartItem puts a recipe into a user's shopping cart
type ShoppingCartItem struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	RecipeID  uint   `gorm:"not null;index;uniqueIndex:idx_cart_user_recipe"`
	Recipe    Recipe `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// Follow is a directed subscription edge from User to Following
type Follow struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"not null;uniqueIndex:idx_follow_user_following"`
	User        User `gorm:"constraint:OnDelete:CASCADE"`
	FollowingID uint `gorm:"not null;index;uniqueIndex:idx_follow_user_following"`
	Following   User `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
}
