package payments

import (
	"testing"

	"github.com/mazza92/creator-dashboard-backend-sub000/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestComputeFee_DefaultRate(t *testing.T) {
	breakdown := ComputeFee(10000, DefaultFeeBasisPoints)
	assert.Equal(t, int64(1500), breakdown.Fee)
	assert.Equal(t, int64(8500), breakdown.Net)
}

func TestComputeFee_SmallAmountBoundary(t *testing.T) {
	// 0.03 at 15%: the fee rounds to zero and the creator keeps the full
	// three cents.
	breakdown := ComputeFee(3, DefaultFeeBasisPoints)
	assert.Equal(t, int64(0), breakdown.Fee)
	assert.Equal(t, int64(3), breakdown.Net)
}

func TestComputeFee_HalfUpRounding(t *testing.T) {
	// 333 * 1500 = 499500: exactly half a cent rounds up.
	breakdown := ComputeFee(333, DefaultFeeBasisPoints)
	assert.Equal(t, int64(50), breakdown.Fee)
	assert.Equal(t, int64(283), breakdown.Net)
}

func TestComputeFee_CustomRate(t *testing.T) {
	breakdown := ComputeFee(10000, 2000)
	assert.Equal(t, int64(2000), breakdown.Fee)
	assert.Equal(t, int64(8000), breakdown.Net)
}

func TestComputeFee_ZeroAndNegative(t *testing.T) {
	assert.Equal(t, Breakdown{Fee: 0, Net: 0}, ComputeFee(0, DefaultFeeBasisPoints))
	assert.Equal(t, Breakdown{Fee: 0, Net: 10000}, ComputeFee(10000, 0))
}

func TestFeeBasisPoints_EnvOverride(t *testing.T) {
	t.Setenv("PLATFORM_FEE_BPS", "1000")
	assert.Equal(t, int64(1000), FeeBasisPoints())

	t.Setenv("PLATFORM_FEE_BPS", "not-a-number")
	assert.Equal(t, DefaultFeeBasisPoints, FeeBasisPoints())

	t.Setenv("PLATFORM_FEE_BPS", "20000")
	assert.Equal(t, DefaultFeeBasisPoints, FeeBasisPoints())
}

func TestMinorUnitsRoundTrip(t *testing.T) {
	assert.Equal(t, int64(10050), MinorUnits(100.50))
	assert.Equal(t, int64(3), MinorUnits(0.03))
	assert.Equal(t, 100.50, FromMinorUnits(10050))
}

func TestVerifyAmount(t *testing.T) {
	assert.NoError(t, VerifyAmount(100.50, 10050))

	err := VerifyAmount(100.50, 10049)
	var mismatch *apperrors.AmountMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int64(10050), mismatch.Expected)
	assert.Equal(t, int64(10049), mismatch.Actual)
}
