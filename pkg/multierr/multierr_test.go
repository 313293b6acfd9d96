package multierr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	ref := func(s string) *string { return &s }

	tests := []struct {
		name         string
		errs         []error
		wantEqual    *string
		wantContains []string
	}{
		{
			name:      "empty",
			wantEqual: ref("<nil>"),
		},
		{
			name:      "single error",
			errs:      []error{errors.New("test error")},
			wantEqual: ref("test error"),
		},
		{
			name: "multi error",
			errs: []error{errors.New("error A"), errors.New("error B")},
			wantContains: []string{
				"2 errors",
				"error A",
				"error B",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			e := Error(tt.errs)
			if tt.wantEqual != nil {
				assert.Equal(*tt.wantEqual, e.Error())
			} else {
				msg := e.Error()
				for _, contains := range tt.wantContains {
					assert.Contains(msg, contains)
				}
			}
		})
	}
}

func TestError_Append(t *testing.T) {
	assert := assert.New(t)

	var e Error
	e.Append(nil)
	assert.Nil(e.ErrOrNil())

	errA := errors.New("error A")
	e.Append(errA)
	assert.Same(errA, e.ErrOrNil())

	errB := errors.New("error B")
	e.Append(errB)
	assert.Len(e, 2)
	assert.True(errors.Is(e, errA))
	assert.True(errors.Is(e, errB))
}
