package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsSensitiveKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/settlements"),
		attribute.String("seller_id", "s-1"),
		attribute.Float64("price", 10),
		attribute.String("commission.tier", "premium"),
	)
	assert.Len(t, attrs, 2)
}

func TestSafeErrorTruncates(t *testing.T) {
	err := SafeError(errors.New("insert failed\nINSERT INTO settlements ..."))
	assert.EqualError(t, err, "insert failed")
	assert.Nil(t, SafeError(nil))
}
