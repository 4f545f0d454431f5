package entry

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/folio/field"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/validate"
)

// checkReferences resolves MEDIA and RELATION identifiers whose shape is
// already valid. Lookup failures other than not-found are logged and the
// identifier is given the benefit of the doubt.
func (svc *Service) checkReferences(ctx context.Context, defs []field.Definition, data field.Data) validate.Errors {
	var errs validate.Errors

	for _, f := range defs {
		v, ok := data.Get(f.Name)
		if !ok || v.IsNull() || len(validate.Field(f, v)) > 0 {
			continue
		}

		switch r := f.Rules.(type) {
		case field.MediaRules:
			for _, ref := range validate.ReferenceIDs(v) {
				if !svc.mediaExists(ctx, ref) {
					errs = append(errs, validate.Error{
						Field:   f.Name,
						Code:    validate.CodeInvalidID,
						Message: fmt.Sprintf("%s references unknown media ID %q", labelOf(f), ref),
					})
				}
			}
		case field.RelationRules:
			for _, ref := range validate.ReferenceIDs(v) {
				if e := svc.checkRelation(ctx, f, r, ref); e != nil {
					errs = append(errs, *e)
				}
			}
		}
	}
	return errs
}

func (svc *Service) mediaExists(ctx context.Context, ref string) bool {
	mediaID, err := id.ParseMediaID(ref)
	if err != nil {
		return false
	}
	if svc.media == nil {
		return true
	}
	ok, err := svc.media.Exists(ctx, mediaID)
	if err != nil {
		svc.logger.WarnContext(ctx, "media lookup failed", "media_id", ref, "error", err)
		return true
	}
	return ok
}

func (svc *Service) checkRelation(ctx context.Context, f field.Definition, r field.RelationRules, ref string) *validate.Error {
	unknown := &validate.Error{
		Field:   f.Name,
		Code:    validate.CodeInvalidID,
		Message: fmt.Sprintf("%s references unknown content entry ID %q", labelOf(f), ref),
	}

	entryID, err := id.ParseEntryID(ref)
	if err != nil {
		return unknown
	}

	target, err := svc.store.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return unknown
		}
		svc.logger.WarnContext(ctx, "relation lookup failed", "entry_id", ref, "error", err)
		return nil
	}

	if r.TargetContentType == "" || target.ContentTypeID.String() == r.TargetContentType {
		return nil
	}

	ct, err := svc.types.GetContentType(ctx, target.ContentTypeID)
	if err == nil && ct.Slug == r.TargetContentType {
		return nil
	}
	return &validate.Error{
		Field:   f.Name,
		Code:    validate.CodeInvalidID,
		Message: fmt.Sprintf("%s must reference entries of content type %q", labelOf(f), r.TargetContentType),
	}
}

func labelOf(f field.Definition) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}
