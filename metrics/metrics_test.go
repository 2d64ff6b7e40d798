package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveReceipt(t *testing.T) {
	before := testutil.ToFloat64(ReceiptsTotal.WithLabelValues("metrics.testnet", "get", "success"))
	gasBefore := testutil.ToFloat64(GasBurntTotal.WithLabelValues("metrics.testnet"))

	ObserveReceipt("metrics.testnet", "get", "success", 1500, time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(ReceiptsTotal.WithLabelValues("metrics.testnet", "get", "success")))
	assert.Equal(t, gasBefore+1500, testutil.ToFloat64(GasBurntTotal.WithLabelValues("metrics.testnet")))
}

func TestObserveTransaction(t *testing.T) {
	before := testutil.ToFloat64(TransactionsTotal.WithLabelValues("failure"))
	ObserveTransaction("failure")
	ObserveTransaction("failure")
	assert.Equal(t, before+2, testutil.ToFloat64(TransactionsTotal.WithLabelValues("failure")))
}
