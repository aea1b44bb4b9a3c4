package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/metrics"
	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

// AuthorSubscription is a followed author with their newest recipes
type AuthorSubscription struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

type SubscriptionService interface {
	// Subscribe makes the user follow the author. recipesLimit < 0 returns every recipe.
	Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*AuthorSubscription, error)
	// Unsubscribe removes the follow edge
	Unsubscribe(ctx context.Context, userID, authorID uint) error
	// Subscriptions lists the authors the user follows
	Subscriptions(ctx context.Context, userID uint, page Page, recipesLimit int) ([]AuthorSubscription, int64, error)
	// FollowedAmong returns which of the given authors the viewer follows
	FollowedAmong(ctx context.Context, viewer uint, authorIDs []uint) (map[uint]bool, error)
}

type subscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) SubscriptionService {
	return &subscriptionService{db: db}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*AuthorSubscription, error) {
	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, authorID).Error; err != nil {
		return nil, notFound(err)
	}
	if userID == authorID {
		return nil, ErrSelfFollow
	}

	var existing int64
	if err := db.Model(&models.Follow{}).Where("user_id = ? AND following_id = ?", userID, authorID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadySubscribed
	}

	if err := db.Create(&models.Follow{UserID: userID, FollowingID: authorID}).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("subscribe to %d: %w", authorID, err)
	}

	metrics.SubscriptionChanges.WithLabelValues("subscribe").Inc()
	log.WithFields(logrus.Fields{"user_id": userID, "author_id": authorID}).Debug("Subscribed")

	subs, err := s.withRecipes(ctx, []models.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	result := db.Where("user_id = ? AND following_id = ?", userID, authorID).Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("unsubscribe from %d: %w", authorID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotSubscribed
	}

	metrics.SubscriptionChanges.WithLabelValues("unsubscribe").Inc()
	return nil
}

func (s *subscriptionService) Subscriptions(ctx context.Context, userID uint, page Page, recipesLimit int) ([]AuthorSubscription, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var follows []models.Follow
	err := db.Where("user_id = ?", userID).
		Order("id").
		Scopes(page.scope).
		Preload("Following").
		Find(&follows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}

	authors := make([]models.User, len(follows))
	for i, f := range follows {
		authors[i] = f.Following
	}
	subs, err := s.withRecipes(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// withRecipes loads the recipes of all authors in a single query
func (s *subscriptionService) withRecipes(ctx context.Context, authors []models.User, recipesLimit int) ([]AuthorSubscription, error) {
	subs := make([]AuthorSubscription, len(authors))
	if len(authors) == 0 {
		return subs, nil
	}

	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}

	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("author_id IN ?", ids).
		Order("pub_date DESC, id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("load author recipes: %w", err)
	}

	byAuthor := make(map[uint][]models.Recipe, len(authors))
	for _, r := range recipes {
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], r)
	}

	for i, a := range authors {
		own := byAuthor[a.ID]
		subs[i] = AuthorSubscription{Author: a, RecipesCount: int64(len(own))}
		if recipesLimit >= 0 && len(own) > recipesLimit {
			own = own[:recipesLimit]
		}
		subs[i].Recipes = own
	}
	return subs, nil
}

func (s *subscriptionService) FollowedAmong(ctx context.Context, viewer uint, authorIDs []uint) (map[uint]bool, error) {
	followed := make(map[uint]bool)
	if viewer == 0 || len(authorIDs) == 0 {
		return followed, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND following_id IN ?", viewer, authorIDs).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		followed[id] = true
	}
	return followed, nil
}
