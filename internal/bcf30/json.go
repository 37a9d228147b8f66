package bcf30

import (
	"context"
	"fmt"
	"slices"

	"bcfkit/internal/jsonproj"
	"bcfkit/internal/model"
	"bcfkit/internal/pipeline"
)

// Shared JSON units. Every other unit in a directory is a topic.
const (
	VersionUnit    = "version"
	ProjectUnit    = "project"
	ExtensionsUnit = "extensions"
	DocumentsUnit  = "documents"
)

var reservedUnits = []string{VersionUnit, ProjectUnit, ExtensionsUnit, DocumentsUnit}

func (c *Converter) readJSON(ctx context.Context, d *jsonproj.Dir) (*Bcf, error) {
	var ver Version
	if err := d.ReadUnit(VersionUnit, &ver); err != nil {
		return nil, err
	}
	if err := c.confirm(&ver, d.Root()); err != nil {
		return nil, err
	}
	b := &Bcf{Version: &ver}

	var project ProjectInfo
	ok, err := d.OptionalUnit(ProjectUnit, &project)
	if err != nil {
		return nil, err
	}
	if ok {
		if b.Project, err = c.keepProject(ctx, &project, d.Root()); err != nil {
			return nil, err
		}
	}

	var ext Extensions
	if ok, err = d.OptionalUnit(ExtensionsUnit, &ext); err != nil {
		return nil, err
	} else if ok {
		b.Extensions = &ext
	}

	var docs DocumentInfo
	if ok, err = d.OptionalUnit(DocumentsUnit, &docs); err != nil {
		return nil, err
	} else if ok {
		if b.Document, err = c.keepDocuments(ctx, &docs, d.Root()); err != nil {
			return nil, err
		}
	}

	units, err := d.TopicUnits(reservedUnits...)
	if err != nil {
		return nil, err
	}
	b.Markups, err = pipeline.Collect(ctx, units, c.opts, c.logger, unitName,
		func(_ context.Context, unit string) (*Markup, error) {
			return c.readTopicUnit(d, unit)
		})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Converter) readTopicUnit(d *jsonproj.Dir, unit string) (*Markup, error) {
	var m Markup
	if err := d.ReadUnit(unit, &m); err != nil {
		return nil, err
	}
	if !model.HasGUID(m.GUID()) {
		return nil, fmt.Errorf("%s%s: %w", unit, jsonproj.Ext, pipeline.ErrNoIdentifier)
	}
	if err := c.checkTopic(&m, unit+jsonproj.Ext); err != nil {
		return nil, err
	}
	return &m, nil
}

// writeJSON emits b as units under target: the shared units, then one unit
// per topic in GUID order.
func (c *Converter) writeJSON(ctx context.Context, b *Bcf, target string) error {
	d, err := jsonproj.Stage(target, c.opts.Indent)
	if err != nil {
		return err
	}
	defer d.Close()

	ver := b.Version
	if ver == nil {
		ver = &Version{VersionID: "3.0"}
	}
	if err := d.WriteUnit(VersionUnit, ver); err != nil {
		return err
	}
	if b.Project != nil {
		project, err := c.keepProject(ctx, b.Project, target)
		if err != nil {
			return err
		}
		if project != nil {
			if err := d.WriteUnit(ProjectUnit, project); err != nil {
				return err
			}
		}
	}
	if b.Extensions != nil {
		if err := d.WriteUnit(ExtensionsUnit, b.Extensions); err != nil {
			return err
		}
	}
	if b.Document != nil {
		docs, err := c.keepDocuments(ctx, b.Document, target)
		if err != nil {
			return err
		}
		if docs != nil {
			if err := d.WriteUnit(DocumentsUnit, docs); err != nil {
				return err
			}
		}
	}

	markups, err := pipeline.Collect(ctx, b.Markups, c.opts, c.logger, (*Markup).GUID,
		func(_ context.Context, m *Markup) (*Markup, error) {
			if !model.HasGUID(m.GUID()) {
				return nil, pipeline.ErrNoIdentifier
			}
			return m, c.checkTopic(m, m.Topic.GUID)
		})
	if err != nil {
		return err
	}
	for _, m := range pipeline.UniqueByKey(ctx, c.logger, markups, (*Markup).GUID) {
		if err := d.WriteUnit(m.Topic.GUID, m); err != nil {
			return err
		}
	}
	return d.Commit()
}

// checkTopic validates m and rejects GUIDs that collide with shared units.
func (c *Converter) checkTopic(m *Markup, path string) error {
	if err := ValidateMarkup(m, path, c.opts.IDRules()); err != nil {
		return err
	}
	if slices.Contains(reservedUnits, m.Topic.GUID) {
		var v model.Violations
		v.Add("topic.guid (reserved unit name)")
		return v.Err(path, "markup")
	}
	return nil
}

func unitName(unit string) string { return unit }
