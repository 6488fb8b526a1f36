package bind

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesSentinelOfItsCode(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", newError(ErrCodeLiteral, reflect.TypeFor[Person](), "Age", "abc", cause))

	assert.ErrorIs(t, err, ErrLiteral)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrShape)
	assert.Equal(t, ErrCodeLiteral, Code(err))
	assert.Equal(t, ErrorCode(""), Code(cause))
	assert.Equal(t, "bind: invalid literal: bind.Person.Age (value abc): boom", newError(ErrCodeLiteral, reflect.TypeFor[Person](), "Age", "abc", cause).Error())
}

func TestErrorUnknownCode(t *testing.T) {
	err := &Error{Code: "CUSTOM"}
	assert.Equal(t, "bind: CUSTOM", err.Error())
	assert.NotErrorIs(t, err, ErrShape)
}
