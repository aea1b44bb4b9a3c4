// Package serializers holds the JSON representations returned by the API.
// Gorm models are always converted through here before reaching the wire.
package serializers

import (
	"time"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
)

type User struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func NewUser(u models.User, subscribed bool) User {
	return User{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// NewUsers converts a page of users, marking the ones the viewer follows
func NewUsers(users []models.User, followed map[uint]bool) []User {
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = NewUser(u, followed[u.ID])
	}
	return out
}

type Tag struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func NewTag(t models.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func NewTags(tags []models.Tag) []Tag {
	out := make([]Tag, len(tags))
	for i, t := range tags {
		out[i] = NewTag(t)
	}
	return out
}

type Ingredient struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func NewIngredient(i models.Ingredient) Ingredient {
	return Ingredient{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func NewIngredients(ingredients []models.Ingredient) []Ingredient {
	out := make([]Ingredient, len(ingredients))
	for i, ing := range ingredients {
		out[i] = NewIngredient(ing)
	}
	return out
}

// RecipeIngredient flattens the ingredient into its amount line. ID is the
// ingredient id, so it can be sent back unchanged on update.
type RecipeIngredient struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type Recipe struct {
	ID               uint               `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           User               `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
	PubDate          time.Time          `json:"pub_date"`
}

// NewRecipe expects Author, Tags and Ingredients.Ingredient to be preloaded
func NewRecipe(r models.Recipe, authorFollowed bool) Recipe {
	ingredients := make([]RecipeIngredient, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		ingredients[i] = RecipeIngredient{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		}
	}
	return Recipe{
		ID:               r.ID,
		Tags:             NewTags(r.Tags),
		Author:           NewUser(r.Author, authorFollowed),
		Ingredients:      ingredients,
		IsFavorited:      r.IsFavorited,
		IsInShoppingCart: r.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		PubDate:          r.PubDate,
	}
}

func NewRecipes(recipes []models.Recipe, followed map[uint]bool) []Recipe {
	out := make([]Recipe, len(recipes))
	for i, r := range recipes {
		out[i] = NewRecipe(r, followed[r.AuthorID])
	}
	return out
}

// RecipeShort is used by the favorite and cart toggles and inside subscriptions
type RecipeShort struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func NewRecipeShort(r models.Recipe) RecipeShort {
	return RecipeShort{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

type Subscription struct {
	User
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

// NewSubscription always reports is_subscribed, since it describes an author the viewer follows
func NewSubscription(s services.AuthorSubscription) Subscription {
	recipes := make([]RecipeShort, len(s.Recipes))
	for i, r := range s.Recipes {
		recipes[i] = NewRecipeShort(r)
	}
	return Subscription{
		User:         NewUser(s.Author, true),
		Recipes:      recipes,
		RecipesCount: s.RecipesCount,
	}
}

func NewSubscriptions(subs []services.AuthorSubscription) []Subscription {
	out := make([]Subscription, len(subs))
	for i, s := range subs {
		out[i] = NewSubscription(s)
	}
	return out
}

// Client is an OAuth2 client without its secret
type Client struct {
	ClientID   string    `json:"client_id"`
	Name       string    `json:"name"`
	Domain     string    `json:"domain,omitempty"`
	Scopes     string    `json:"scopes,omitempty"`
	GrantTypes string    `json:"grant_types"`
	Public     bool      `json:"public"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewClient(c models.OAuthClient) Client {
	return Client{
		ClientID:   c.ID,
		Name:       c.Name,
		Domain:     c.Domain,
		Scopes:     c.Scopes,
		GrantTypes: c.GrantTypes,
		Public:     c.Public,
		CreatedAt:  c.CreatedAt,
	}
}

// ClientCreated is returned once, when the plain secret is still known
type ClientCreated struct {
	Client
	ClientSecret string `json:"client_secret"`
}

// TokenCreate is the JSON login body
type TokenCreate struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Token struct {
	AuthToken string `json:"auth_token"`
}
