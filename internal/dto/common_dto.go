package dto

import (
	"strings"

	"github.com/fadilmartias/hiring-pipeline/internal/util"
	"github.com/google/uuid"
)

// ParseID parses a uuid field of a request, collecting the failure under
// field in errs.
func ParseID(field, value string, errs map[string]string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		errs[field] = "must be a valid uuid"
		return uuid.Nil
	}
	return id
}

// ParseOptionalID is ParseID for filters where empty means unset.
func ParseOptionalID(field, value string, errs map[string]string) *uuid.UUID {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	id := ParseID(field, value, errs)
	return &id
}

func formError(errs map[string]string) error {
	if len(errs) == 0 {
		return nil
	}
	return util.NewFormError("invalid request", errs)
}

// ActorRequest is the body of commands that only need an actor and a reason.
type ActorRequest struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}
