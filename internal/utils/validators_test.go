package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padaria/internal/models"
)

func TestValidateDate(t *testing.T) {
	parsed, err := ValidateDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", parsed.Format("2006-01-02"))

	parsed, err = ValidateDate("01/03/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", parsed.Format("2006-01-02"))

	_, err = ValidateDate("")
	assert.Error(t, err)
	_, err = ValidateDate("amanhã")
	assert.Error(t, err)
}

// Every accepted input format must come out as YYYY-MM-DD: the calculators
// and the store compare dates as strings, so any other form would silently
// match nothing.
func TestNormalizeDate(t *testing.T) {
	for _, input := range []string{
		"2024-03-01",
		"01-03-2024",
		"01/03/2024",
		"2024-03-01T08:30:00Z",
	} {
		normalized, err := NormalizeDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, "2024-03-01", normalized, input)
	}

	_, err := NormalizeDate("03/2024")
	assert.Error(t, err)
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(12.50))
	assert.Error(t, ValidateAmount(0))
	assert.Error(t, ValidateAmount(-5))
	assert.Error(t, ValidateAmount(1e7))
}

func TestValidatePaymentMethod(t *testing.T) {
	assert.NoError(t, ValidatePaymentMethod("dinheiro"))
	assert.NoError(t, ValidatePaymentMethod("mbway"))
	assert.Error(t, ValidatePaymentMethod("cheque"))
}

func TestValidateReturnItems(t *testing.T) {
	loaded := map[string]int{"pao": 100}

	ok := map[string]models.ReturnItem{"pao": {Sold: 90, Returned: 10}}
	assert.NoError(t, ValidateReturnItems(loaded, ok))

	short := map[string]models.ReturnItem{"pao": {Sold: 80, Returned: 10}}
	assert.Error(t, ValidateReturnItems(loaded, short))

	missing := map[string]models.ReturnItem{}
	assert.Error(t, ValidateReturnItems(loaded, missing))

	extra := map[string]models.ReturnItem{
		"pao":  {Sold: 90, Returned: 10},
		"bola": {Sold: 1, Returned: 0},
	}
	assert.Error(t, ValidateReturnItems(loaded, extra))

	negative := map[string]models.ReturnItem{"pao": {Sold: 110, Returned: -10}}
	assert.Error(t, ValidateReturnItems(loaded, negative))
}

func TestIsRoleOrHigher(t *testing.T) {
	assert.True(t, IsRoleOrHigher("owner", "admin"))
	assert.True(t, IsRoleOrHigher("admin", "admin"))
	assert.False(t, IsRoleOrHigher("driver", "admin"))
	assert.False(t, IsRoleOrHigher("desconhecido", "driver"))
}
