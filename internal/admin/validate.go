package admin

import (
	"net/mail"
	"net/url"
	"strings"

	"github.com/cccbbbaaaa/culture-china/pkg/errors"
)

func invalid(field string, value interface{}, message string) error {
	return errors.ValidationError{Field: field, Value: value, Message: message}
}

func required(field, value, message string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, value, message)
	}
	return nil
}

// checkURL accepts absolute http(s) links. Empty values pass unless required.
func checkURL(field, value, message string, mandatory bool) error {
	value = strings.TrimSpace(value)
	if value == "" {
		if mandatory {
			return invalid(field, value, message)
		}
		return nil
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid(field, value, message)
	}
	return nil
}

func checkEmail(field, value, message string) error {
	value = strings.TrimSpace(value)
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return invalid(field, value, message)
	}
	return nil
}

func checkMaxLen(field, value string, max int) error {
	if len([]rune(value)) > max {
		return invalid(field, value, "内容过长 / Value too long")
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// cleanList trims every entry and drops the blank ones.
func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
