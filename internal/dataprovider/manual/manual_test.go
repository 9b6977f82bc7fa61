package manual

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

func TestProvider(t *testing.T) {
	p := New()
	ctx := context.Background()

	assert.False(t, p.CanHandle("AAPL"))
	assert.Equal(t, models.DataSourceManual, p.Name())

	quotes, err := p.Get(ctx, []string{"AAPL"})
	require.NoError(t, err)
	assert.NotNil(t, quotes)
	assert.Empty(t, quotes)

	hist, err := p.GetHistorical(ctx, []string{"AAPL"}, models.GranularityDay, time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Empty(t, hist)

	items, err := p.Search(ctx, "apple")
	require.NoError(t, err)
	assert.Empty(t, items)
}
