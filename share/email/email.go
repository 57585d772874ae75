package email

import (
	"errors"
	"fmt"
	"regexp"
)

var addressRegex = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

func Validate(address string) error {
	if address == "" {
		return errors.New("email cannot be empty")
	}

	if !addressRegex.MatchString(address) {
		return errors.New("invalid email format")
	}

	return nil
}

// ValidateList checks every address and reports the first invalid one.
func ValidateList(addresses []string) error {
	for _, a := range addresses {
		if err := Validate(a); err != nil {
			return fmt.Errorf("invalid email %s: %w", a, err)
		}
	}
	return nil
}
