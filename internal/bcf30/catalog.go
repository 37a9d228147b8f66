package bcf30

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"bcfkit/internal/logging"
	"bcfkit/internal/pipeline"
)

// keepProject validates p and applies the topic error policy to it: under
// skip an invalid project is dropped with a warning.
func (c *Converter) keepProject(ctx context.Context, p *ProjectInfo, source string) (*ProjectInfo, error) {
	err := ValidateProject(p, source, c.opts.IDRules())
	if err == nil {
		return p, nil
	}
	if c.opts.Policy == pipeline.PolicyAbort {
		return nil, err
	}
	logging.WarnWithContext(ctx, c.logger, "project dropped", "project_skipped", logging.Error(err))
	return nil, nil
}

// keepDocuments applies the policy per catalog entry. Under skip invalid and
// repeated documents are dropped; a catalog left empty is dropped entirely.
func (c *Converter) keepDocuments(ctx context.Context, d *DocumentInfo, source string) (*DocumentInfo, error) {
	if c.opts.Policy == pipeline.PolicyAbort {
		if err := ValidateDocumentInfo(d, source, c.opts.IDRules()); err != nil {
			return nil, err
		}
		return d, nil
	}

	valid := lo.Filter(d.Documents, func(doc Document, i int) bool {
		err := ValidateDocument(doc, fmt.Sprintf("%s documents[%d]", source, i), c.opts.IDRules())
		if err != nil {
			logging.WarnWithContext(ctx, c.logger, "document dropped", "document_skipped",
				logging.String("document", doc.GUID), logging.Error(err))
		}
		return err == nil
	})
	unique := lo.UniqBy(valid, func(doc Document) string { return doc.GUID })
	if len(unique) < len(valid) {
		logging.WarnWithContext(ctx, c.logger, "duplicate documents dropped", "duplicate_document",
			logging.Int("dropped", len(valid)-len(unique)),
			logging.String(logging.FieldErrorHint, "two documents share one guid; only the first is kept"))
	}
	if len(unique) == 0 {
		return nil, nil
	}
	return &DocumentInfo{Documents: unique}, nil
}
