package school

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/result"
)

// MaxNameLength bounds user and school names, in runes.
const MaxNameLength = 100

type rules struct {
	code string
	errs []result.Error
}

func (r *rules) check(ok bool, message string) {
	if !ok {
		r.errs = append(r.errs, result.NewError(r.code, message))
	}
}

func (r *rules) name(field, v string) {
	v = strings.TrimSpace(v)
	r.check(v != "", field+" is required")
	r.check(utf8.RuneCountInString(v) <= MaxNameLength, field+" is too long")
}

func validateRegisterUser(ctx context.Context, req RegisterUser) []result.Error {
	r := rules{code: domain.CodeUserInvalid}
	r.name("name", req.Name)
	_, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	r.check(err == nil, "email is not a valid address")
	return r.errs
}

func validateCreateSchool(ctx context.Context, req CreateSchool) []result.Error {
	r := rules{code: domain.CodeSchoolInvalid}
	r.check(req.ActorID != "", "acting user is required")
	r.name("name", req.Name)
	r.check(strings.TrimSpace(req.City) != "", "city is required")
	return r.errs
}

func validateRenameSchool(ctx context.Context, req RenameSchool) []result.Error {
	r := rules{code: domain.CodeSchoolInvalid}
	r.check(req.ActorID != "", "acting user is required")
	r.check(req.SchoolID != "", "school id is required")
	r.name("name", req.Name)
	return r.errs
}

func validateDeleteSchool(ctx context.Context, req DeleteSchool) []result.Error {
	r := rules{code: domain.CodeSchoolInvalid}
	r.check(req.ActorID != "", "acting user is required")
	r.check(req.SchoolID != "", "school id is required")
	return r.errs
}
