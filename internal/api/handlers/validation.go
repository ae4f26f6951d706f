package handlers

import (
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Harshitk-cp/askdesk/internal/domain"
)

const (
	minPasswordLength = 6
	minNameLength     = 2
	minQuestionLength = 5
	maxQuestionLength = 1000
)

// validationErrors collects messages in field order and joins them.
type validationErrors []string

func (v *validationErrors) add(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

func (v validationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(v, ", "))
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	// ParseAddress accepts "Name <a@b>"; only a bare address is allowed here.
	return err == nil && addr.Address == s
}

func requireMin(errs *validationErrors, field, value string, min int) {
	switch n := utf8.RuneCountInString(strings.TrimSpace(value)); {
	case n == 0:
		errs.add("%q is required", field)
	case n < min:
		errs.add("%q length must be at least %d characters long", field, min)
	}
}

func (req registerRequest) validate() error {
	var errs validationErrors
	switch {
	case strings.TrimSpace(req.Email) == "":
		errs.add(`"email" is required`)
	case !validEmail(strings.TrimSpace(req.Email)):
		errs.add(`"email" must be a valid email`)
	}
	requireMin(&errs, "password", req.Password, minPasswordLength)
	requireMin(&errs, "name", req.Name, minNameLength)
	requireMin(&errs, "companyName", req.CompanyName, minNameLength)
	return errs.err()
}

func (req loginRequest) validate() error {
	var errs validationErrors
	switch {
	case strings.TrimSpace(req.Email) == "":
		errs.add(`"email" is required`)
	case !validEmail(strings.TrimSpace(req.Email)):
		errs.add(`"email" must be a valid email`)
	}
	if req.Password == "" {
		errs.add(`"password" is required`)
	}
	return errs.err()
}

// validate expects req.Question to be trimmed already.
func (req askQuestionRequest) validate() error {
	var errs validationErrors
	switch n := utf8.RuneCountInString(req.Question); {
	case n == 0:
		errs.add(`"question" is required`)
	case n < minQuestionLength:
		errs.add(`"question" length must be at least %d characters long`, minQuestionLength)
	case n > maxQuestionLength:
		errs.add(`"question" length must be less than or equal to %d characters long`, maxQuestionLength)
	}
	return errs.err()
}

// parsePageParams reads page and limit, applying defaults when absent.
func parsePageParams(q url.Values) (domain.PageParams, error) {
	params := domain.PageParams{Page: domain.DefaultPage, Limit: domain.DefaultLimit}
	var errs validationErrors

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs.add(`"page" must be a number`)
		case n < 1:
			errs.add(`"page" must be greater than or equal to 1`)
		case n > domain.MaxPage:
			errs.add(`"page" must be less than or equal to %d`, domain.MaxPage)
		default:
			params.Page = n
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs.add(`"limit" must be a number`)
		case n < 1:
			errs.add(`"limit" must be greater than or equal to 1`)
		case n > domain.MaxLimit:
			errs.add(`"limit" must be less than or equal to %d`, domain.MaxLimit)
		default:
			params.Limit = n
		}
	}
	return params, errs.err()
}

// positiveIntParam returns def when the value is missing, malformed or not
// positive, and caps it at max when max > 0.
func positiveIntParam(q url.Values, name string, def, max int) int {
	n, err := strconv.Atoi(q.Get(name))
	if err != nil || n <= 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
