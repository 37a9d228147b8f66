package bcf21

import (
	"context"
	"fmt"
	"path"

	"bcfkit/internal/archive"
	"bcfkit/internal/bcferr"
	"bcfkit/internal/logging"
	"bcfkit/internal/model"
	"bcfkit/internal/pipeline"
)

// readArchive parses every entry of r into a graph. The version entry must
// name 2.1.
func (c *Converter) readArchive(ctx context.Context, r *archive.Reader) (*Bcf, error) {
	raw, err := r.Required(VersionEntry)
	if err != nil {
		return nil, err
	}
	ver, err := ParseVersion(raw, r.Path()+"!"+VersionEntry)
	if err != nil {
		return nil, err
	}
	if err := c.confirm(ver, r.Path()); err != nil {
		return nil, err
	}
	b := &Bcf{Version: ver}

	if data, ok, err := r.Optional(ProjectEntry); err != nil {
		return nil, err
	} else if ok {
		project, err := ParseProject(data, r.Path()+"!"+ProjectEntry)
		if err != nil {
			return nil, err
		}
		b.Project, err = c.keepProject(ctx, project, r.Path())
		if err != nil {
			return nil, err
		}
	}

	b.Markups, err = pipeline.Collect(ctx, r.Topics(), c.opts, c.logger, (*archive.Folder).Name,
		func(ctx context.Context, f *archive.Folder) (*Markup, error) {
			return c.readTopic(ctx, f)
		})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Converter) readTopic(ctx context.Context, f *archive.Folder) (*Markup, error) {
	entry := path.Join(f.ID, archive.MarkupEntry)
	data, _, err := f.Read(archive.MarkupEntry)
	if err != nil {
		return nil, err
	}
	m, err := ParseMarkup(data, entry)
	if err != nil {
		return nil, err
	}
	if !model.HasGUID(m.GUID()) {
		return nil, fmt.Errorf("%s: %w", entry, pipeline.ErrNoIdentifier)
	}
	if m.Topic.GUID != f.ID {
		c.logger.DebugContext(ctx, "topic folder differs from topic guid",
			logging.String("folder", f.ID), logging.Topic(m.Topic.GUID))
	}

	for i := range m.Viewpoints {
		vp := &m.Viewpoints[i]
		if vp.Viewpoint != "" {
			raw, ok, err := f.Read(vp.Viewpoint)
			if err != nil {
				return nil, err
			}
			if ok {
				if vp.VisualizationInfo, err = ParseVisualizationInfo(raw, path.Join(f.ID, vp.Viewpoint)); err != nil {
					return nil, err
				}
			} else {
				c.logger.DebugContext(ctx, "viewpoint file missing", logging.Topic(m.Topic.GUID), logging.String("file", vp.Viewpoint))
			}
		}
		if vp.Snapshot != "" {
			raw, ok, err := f.Read(vp.Snapshot)
			if err != nil {
				return nil, err
			}
			if ok {
				vp.SnapshotData = model.NewFileData(vp.Snapshot, raw)
			}
		}
	}

	for i := range m.Topic.DocumentReferences {
		ref := &m.Topic.DocumentReferences[i]
		if ref.External() || ref.ReferencedDocument == "" {
			continue
		}
		raw, ok, err := f.Read(ref.ReferencedDocument)
		if err != nil {
			return nil, err
		}
		if ok {
			ref.DocumentData = model.NewFileData(ref.ReferencedDocument, raw)
		}
	}

	if err := ValidateMarkup(m, entry, c.opts.IDRules()); err != nil {
		return nil, err
	}
	return m, nil
}

type topicEntries struct {
	id      string
	entries []archive.Entry
}

func (t topicEntries) key() string { return t.id }

// writeArchive emits b into w: version, project, then topics in GUID order.
func (c *Converter) writeArchive(ctx context.Context, b *Bcf, w *archive.Writer, target string) error {
	w.SetLogger(c.logger)
	ver := b.Version
	if ver == nil {
		ver = &Version{VersionID: "2.1", DetailedVersion: "2.1"}
	}
	data, err := MarshalVersion(ver)
	if err != nil {
		return bcferr.Wrap(bcferr.ErrMalformedArchive, target, "encode version", "", err)
	}
	if err := w.WriteFile(VersionEntry, data); err != nil {
		return err
	}

	if b.Project != nil {
		project, err := c.keepProject(ctx, b.Project, target)
		if err != nil {
			return err
		}
		if project != nil {
			data, err := MarshalProject(project)
			if err != nil {
				return bcferr.Wrap(bcferr.ErrMalformedArchive, target, "encode project", "", err)
			}
			if err := w.WriteFile(ProjectEntry, data); err != nil {
				return err
			}
		}
	}

	prepared, err := pipeline.Collect(ctx, b.Markups, c.opts, c.logger, (*Markup).GUID, c.prepareTopic)
	if err != nil {
		return err
	}
	for _, t := range pipeline.UniqueByKey(ctx, c.logger, prepared, topicEntries.key) {
		if err := w.WriteEntries(ctx, t.entries); err != nil {
			return err
		}
	}
	return nil
}

// prepareTopic validates m and renders every entry of its folder. m is not
// modified; missing file names for attached content are derived from the
// viewpoint GUID.
func (c *Converter) prepareTopic(_ context.Context, m *Markup) (topicEntries, error) {
	if !model.HasGUID(m.GUID()) {
		return topicEntries{}, pipeline.ErrNoIdentifier
	}
	id := m.Topic.GUID
	if err := ValidateMarkup(m, id, c.opts.IDRules()); err != nil {
		return topicEntries{}, err
	}

	out := *m
	out.Viewpoints = append([]ViewPoint(nil), m.Viewpoints...)
	var attachments []archive.Entry
	for i := range out.Viewpoints {
		vp := &out.Viewpoints[i]
		if vp.VisualizationInfo != nil {
			if vp.Viewpoint == "" {
				vp.Viewpoint = vp.GUID + ".bcfv"
			}
			data, err := MarshalVisualizationInfo(vp.VisualizationInfo)
			if err != nil {
				return topicEntries{}, bcferr.Wrap(bcferr.ErrMalformedArchive, id, "encode viewpoint", vp.Viewpoint, err)
			}
			attachments = append(attachments, archive.Entry{Name: path.Join(id, vp.Viewpoint), Data: data})
		}
		if vp.SnapshotData != nil {
			if vp.Snapshot == "" {
				vp.Snapshot = vp.GUID + snapshotExt(vp.SnapshotData)
			}
			data, err := vp.SnapshotData.Bytes()
			if err != nil {
				return topicEntries{}, bcferr.Wrap(bcferr.ErrMalformedJSON, id, "decode snapshot", vp.Snapshot, err)
			}
			attachments = append(attachments, archive.Entry{Name: path.Join(id, vp.Snapshot), Data: data})
		}
	}

	for _, ref := range m.Topic.DocumentReferences {
		if ref.External() || ref.DocumentData == nil || ref.ReferencedDocument == "" {
			continue
		}
		name, ok := archive.Resolve(id, ref.ReferencedDocument)
		if !ok {
			return topicEntries{}, bcferr.Wrap(bcferr.ErrValidation, id, "place document", "reference escapes archive: "+ref.ReferencedDocument, nil)
		}
		data, err := ref.DocumentData.Bytes()
		if err != nil {
			return topicEntries{}, bcferr.Wrap(bcferr.ErrMalformedJSON, id, "decode document", ref.ReferencedDocument, err)
		}
		attachments = append(attachments, archive.Entry{Name: name, Data: data, Shared: true})
	}

	markup, err := MarshalMarkup(&out)
	if err != nil {
		return topicEntries{}, bcferr.Wrap(bcferr.ErrMalformedArchive, id, "encode markup", "", err)
	}
	entries := append([]archive.Entry{{Name: path.Join(id, archive.MarkupEntry), Data: markup}}, attachments...)
	return topicEntries{id: id, entries: entries}, nil
}

func snapshotExt(fd *model.FileData) string {
	if ext := fd.Extension(); ext != "" {
		return ext
	}
	return ".png"
}
