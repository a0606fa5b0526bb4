package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockIPRequest_Validate(t *testing.T) {
	req := &BlockIPRequest{IP: "  203.0.113.5 ", Reason: " scanner "}
	assert.NoError(t, req.Validate())
	assert.Equal(t, "203.0.113.5", req.IP)
	assert.Equal(t, "scanner", req.Reason)

	assert.ErrorIs(t, (&BlockIPRequest{IP: "   "}).Validate(), ErrIPRequired)
	assert.ErrorIs(t, (&UnblockIPRequest{}).Validate(), ErrIPRequired)
}
