package export

import (
	"testing"

	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRow(t *testing.T) {
	row := models.ShoppingListRow{Name: "flour", TotalAmount: 500, MeasurementUnit: "g"}
	assert.Equal(t, "flour - 500 g", FormatRow(row))
}

func TestRenderText(t *testing.T) {
	rows := []models.ShoppingListRow{
		{Name: "flour", TotalAmount: 500, MeasurementUnit: "g"},
		{Name: "salt", TotalAmount: 5, MeasurementUnit: "g"},
	}

	text := string(RenderText(rows))
	assert.Contains(t, text, "Shopping list")
	assert.Contains(t, text, "flour - 500 g\n")
	assert.Contains(t, text, "salt - 5 g\n")
}

func TestRenderTextEmpty(t *testing.T) {
	text := string(RenderText(nil))
	assert.Contains(t, text, "The shopping cart is empty.")
}

func TestRenderPDF(t *testing.T) {
	rows := []models.ShoppingListRow{
		{Name: "flour", TotalAmount: 500, MeasurementUnit: "g"},
	}

	pdf, err := RenderPDF(rows)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestRenderPDFEmpty(t *testing.T) {
	pdf, err := RenderPDF(nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestRenderPDFManyRows(t *testing.T) {
	rows := make([]models.ShoppingListRow, 100)
	for i := range rows {
		rows[i] = models.ShoppingListRow{Name: "ingredient", TotalAmount: i + 1, MeasurementUnit: "g"}
	}

	pdf, err := RenderPDF(rows)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
