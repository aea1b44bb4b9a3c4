package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type amountRow struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"min=1"`
}

type sampleRequest struct {
	Name     string      `json:"name" validate:"required,max=10"`
	Username string      `json:"username" validate:"omitempty,username"`
	Color    string      `json:"color" validate:"omitempty,hexcolor"`
	Rows     []amountRow `json:"ingredients" validate:"required,min=1,dive"`
}

func TestGetValidator_Singleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestValidateStruct_Valid(t *testing.T) {
	req := sampleRequest{
		Name:     "Soup",
		Username: "chef.bob+1",
		Color:    "#E26C2D",
		Rows:     []amountRow{{ID: 1, Amount: 3}},
	}
	assert.Nil(t, ValidateStruct(&req))
}

func TestValidateStruct_FieldPaths(t *testing.T) {
	req := sampleRequest{
		Name:     "A very long recipe name",
		Username: "bad name!",
		Color:    "red",
		Rows:     []amountRow{{ID: 1, Amount: 1}, {ID: 0, Amount: 0}},
	}

	verr := ValidateStruct(&req)
	require.NotNil(t, verr)

	fields := verr.Fields()
	assert.Equal(t, []string{"name must be at most 10 characters"}, fields["name"])
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "color")
	assert.Equal(t, []string{"id is required"}, fields["ingredients[1].id"])
	assert.Equal(t, []string{"amount must be at least 1"}, fields["ingredients[1].amount"])
	assert.NotContains(t, fields, "ingredients[0].amount")
}

func TestValidateStruct_EmptySlice(t *testing.T) {
	req := sampleRequest{Name: "Soup", Rows: []amountRow{}}

	verr := ValidateStruct(&req)
	require.NotNil(t, verr)
	assert.Equal(t, []string{"ingredients must be at least 1 items"}, verr.Fields()["ingredients"])
}

func TestFromError_NonValidatorError(t *testing.T) {
	var target sampleRequest
	err := json.Unmarshal([]byte(`{"name": 12}`), &target)
	require.Error(t, err)

	verr := FromError(err)
	require.Len(t, verr.Errors(), 1)
	assert.Equal(t, "non_field_errors", verr.Errors()[0].Field)
	assert.NotEmpty(t, verr.Error())
}
