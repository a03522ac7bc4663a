package validation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrTooManyURLs is returned when a request exceeds the per-request limit.
var ErrTooManyURLs = errors.New("too many URLs")

var forbiddenHosts = []string{
	"localhost",
	"127.0.0.1",
	"::1",
	"0.0.0.0",
	"169.254.169.254",
}

// URLValidator checks download URLs before they become tasks.
type URLValidator struct {
	validate     *validator.Validate
	maxURLs      int
	allowPrivate bool
}

// NewURLValidator builds a validator. maxURLs <= 0 disables the count limit;
// allowPrivate admits loopback and private addresses (tests, local setups).
func NewURLValidator(maxURLs int, allowPrivate bool) *URLValidator {
	v := &URLValidator{
		validate:     validator.New(),
		maxURLs:      maxURLs,
		allowPrivate: allowPrivate,
	}
	_ = v.validate.RegisterValidation("safe_url", v.validateSafeURL)
	return v
}

// ValidateURLs checks the count and every URL in order, returning the first failure.
func (v *URLValidator) ValidateURLs(urls []string) error {
	if len(urls) == 0 {
		return errors.New("at least one URL is required")
	}
	if v.maxURLs > 0 && len(urls) > v.maxURLs {
		return fmt.Errorf("%w: %d > %d", ErrTooManyURLs, len(urls), v.maxURLs)
	}
	for _, u := range urls {
		if err := v.validate.Var(u, "required,safe_url"); err != nil {
			return fmt.Errorf("invalid URL %q: %w", u, err)
		}
	}
	return nil
}

func (v *URLValidator) validateSafeURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	if v.allowPrivate {
		return true
	}

	host := u.Hostname()
	for _, forbidden := range forbiddenHosts {
		if strings.EqualFold(host, forbidden) {
			return false
		}
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified() {
			return false
		}
	}
	return true
}
