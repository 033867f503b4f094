package reliability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{403, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsRetryableHTTPStatus(tc.code), "code %d", tc.code)
	}
}

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeOK, Classify(nil))
	assert.Equal(t, OutcomeCanceled, Classify(fmt.Errorf("send: %w", context.Canceled)))
	assert.Equal(t, OutcomeRetryable, Classify(context.DeadlineExceeded))
	assert.Equal(t, OutcomeRetryable, Classify(fmt.Errorf("post: %w", statusErr(503))))
	assert.Equal(t, OutcomePermanent, Classify(statusErr(401)))
	assert.Equal(t, OutcomeRetryable, Classify(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.Equal(t, OutcomePermanent, Classify(errors.New("bad json")))
}
