package email_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MinaWilson92/prochub/share/email"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, email.Validate("head@example.com"))
	assert.NoError(t, email.Validate("admin+hub@some.mail.co.uk"))

	assert.Error(t, email.Validate(""))
	assert.Error(t, email.Validate("no-at-sign"))
	assert.Error(t, email.Validate("two@@example.com"))
	assert.Error(t, email.Validate("spaces in@example.com"))
}

func TestValidateList(t *testing.T) {
	assert.NoError(t, email.ValidateList(nil))
	assert.NoError(t, email.ValidateList([]string{"a@x.com", "b@x.com"}))

	err := email.ValidateList([]string{"a@x.com", "broken"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "invalid email format")
	assert.Error(t, errors.Unwrap(err), "the underlying validation error is kept")
}
