package services

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/validation"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrAlreadyInFavorites    = errors.New("recipe is already in favorites")
	ErrNotInFavorites        = errors.New("recipe is not in favorites")
	ErrAlreadyInShoppingCart = errors.New("recipe is already in the shopping cart")
	ErrNotInShoppingCart     = errors.New("recipe is not in the shopping cart")
	ErrEmptyShoppingCart     = errors.New("shopping cart is empty")

	ErrSelfFollow        = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed = errors.New("already subscribed to this author")
	ErrNotSubscribed     = errors.New("not subscribed to this author")

	ErrEmailTaken    = errors.New("a user with that email already exists")
	ErrUsernameTaken = errors.New("a user with that username already exists")
)

// ValidationError carries field level messages for a rejected request
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil lets callers collect messages and return a nil error when there were none
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// validateInput runs the struct tags and returns a *ValidationError on failure
func validateInput(in interface{}) error {
	if verr := validation.ValidateStruct(in); verr != nil {
		return &ValidationError{Fields: verr.Fields()}
	}
	return nil
}

// isUniqueViolation recognises a unique constraint failure. gorm translates it
// when TranslateError is on; the message check covers dialects that do not.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}

// notFound maps gorm's missing record error to ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
