package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

func ids(parts []models.Part) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.ID
	}
	return out
}

func TestFilter_Search(t *testing.T) {
	parts := Default().Parts(models.CategoryOptic)

	got := Filter{Search: "HOLO"}.Apply(parts)
	assert.Equal(t, []string{"holosun-510c"}, ids(got))

	got = Filter{Search: "eagle"}.Apply(parts)
	assert.Equal(t, []string{"vortex-strike-eagle"}, ids(got))

	got = Filter{}.Apply(parts)
	assert.Len(t, got, len(parts))
}

func TestFilter_BrandsAndPrice(t *testing.T) {
	parts := Default().Parts(models.CategoryOptic)

	got := Filter{Brands: []string{"Aimpoint", "Vortex"}}.Apply(parts)
	assert.Equal(t, []string{"aimpoint-pro", "vortex-strike-eagle"}, ids(got))

	min := models.Cents(30000)
	max := models.Cents(45000)
	got = Filter{MinPrice: &min, MaxPrice: &max}.Apply(parts)
	assert.Equal(t, []string{"vortex-strike-eagle"}, ids(got))

	zero := models.Cents(0)
	got = Filter{MaxPrice: &zero}.Apply(parts)
	assert.Equal(t, []string{models.SentinelID}, ids(got))
}

func TestBrands(t *testing.T) {
	parts := Default().Parts(models.CategoryLower)
	assert.Equal(t, []string{"Aero", "BCM"}, Brands(parts))
	assert.Empty(t, Brands(nil))
}

func TestMaxPrice(t *testing.T) {
	parts := Default().Parts(models.CategoryOptic)
	assert.Equal(t, models.Cents(49900), MaxPrice(parts))
	assert.Equal(t, models.Money(0), MaxPrice(nil))
}
