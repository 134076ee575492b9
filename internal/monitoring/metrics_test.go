package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRound(t *testing.T) {
	before := testutil.ToFloat64(RoundsPlayed.WithLabelValues("slots"))

	RecordRound("slots", 2, 10)
	RecordRound("slots", 1, 0)

	assert.Equal(t, before+2, testutil.ToFloat64(RoundsPlayed.WithLabelValues("slots")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(AmountWagered.WithLabelValues("slots")), 3.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(AmountPaid.WithLabelValues("slots")), 10.0)
}
