package insight

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusfolio/platform/internal/records"
)

func TestForCategoryKnown(t *testing.T) {
	t.Parallel()

	require.Contains(t, ForCategory(records.CategoryCompetition), "competitive profile")
	require.Contains(t, ForCategory(records.CategoryCertification), "verifiable credential")
}

func TestForCategoryFallsBackToGeneral(t *testing.T) {
	t.Parallel()

	general := ForCategory(records.CategoryGeneral)
	require.Equal(t, general, ForCategory(records.CategoryConference))
	require.Equal(t, general, ForCategory(records.Category("unknown")))
}
