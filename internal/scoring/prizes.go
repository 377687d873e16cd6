package scoring

import (
	"github.com/yourusername/euromillions/internal/models"
)

// FractionTable maps a prize category to the share of the prize pool paid to it
type FractionTable map[models.Category]float64

// DefaultFractions returns the empirical EuroMillions prize-pool fractions.
// Categories absent from the table (0+L, 1+0, 1+1) pay nothing.
func DefaultFractions() FractionTable {
	return FractionTable{
		{Main: 5, Lucky: 2}: 0.5000,
		{Main: 5, Lucky: 1}: 0.0261,
		{Main: 5, Lucky: 0}: 0.0061,
		{Main: 4, Lucky: 2}: 0.0019,
		{Main: 4, Lucky: 1}: 0.0035,
		{Main: 4, Lucky: 0}: 0.0026,
		{Main: 3, Lucky: 2}: 0.0037,
		{Main: 3, Lucky: 1}: 0.0145,
		{Main: 3, Lucky: 0}: 0.0270,
		{Main: 2, Lucky: 2}: 0.0130,
		{Main: 2, Lucky: 1}: 0.1030,
		{Main: 2, Lucky: 0}: 0.1659,
		{Main: 1, Lucky: 2}: 0.0327,
	}
}

// Fraction returns the prize fraction of a category, 0 when it is not paid
func (ft FractionTable) Fraction(c models.Category) float64 {
	return ft[c]
}

// Categories lists the paid categories from the jackpot down
func (ft FractionTable) Categories() []models.Category {
	out := make([]models.Category, 0, len(ft))
	for n := models.MainCount; n >= 1; n-- {
		for l := models.LuckyCount; l >= 0; l-- {
			c := models.Category{Main: n, Lucky: l}
			if ft[c] > 0 {
				out = append(out, c)
			}
		}
	}
	return out
}
