package bcf30

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
// name 3.0.
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
		if b.Project, err = c.keepProject(ctx, project, r.Path()); err != nil {
			return nil, err
		}
	}

	if data, ok, err := r.Optional(ExtensionsEntry); err != nil {
		return nil, err
	} else if ok {
		if b.Extensions, err = ParseExtensions(data, r.Path()+"!"+ExtensionsEntry); err != nil {
			return nil, err
		}
	}

	if b.Document, err = c.readDocuments(ctx, r); err != nil {
		return nil, err
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

// readDocuments loads documents.xml and the payload of every entry.
func (c *Converter) readDocuments(ctx context.Context, r *archive.Reader) (*DocumentInfo, error) {
	data, ok, err := r.Optional(DocumentsEntry)
	if err != nil || !ok {
		return nil, err
	}
	info, err := ParseDocumentInfo(data, r.Path()+"!"+DocumentsEntry)
	if err != nil {
		return nil, err
	}
	for i := range info.Documents {
		doc := &info.Documents[i]
		if doc.GUID == "" {
			continue
		}
		name, ok := archive.Resolve(DocumentsDir, doc.GUID)
		if !ok {
			continue
		}
		raw, found, err := r.ReadPath(name)
		if err != nil {
			return nil, err
		}
		if !found {
			c.logger.DebugContext(ctx, "document payload missing", logging.String("document", doc.GUID))
			continue
		}
		doc.DocumentData = model.NewFileData(doc.Filename, raw)
	}
	return c.keepDocuments(ctx, info, r.Path())
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

	for i := range m.Topic.Viewpoints {
		vp := &m.Topic.Viewpoints[i]
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

// writeArchive emits b into w: version, project, extensions, documents, then
// topics in GUID order.
func (c *Converter) writeArchive(ctx context.Context, b *Bcf, w *archive.Writer, target string) error {
	w.SetLogger(c.logger)
	ver := b.Version
	if ver == nil {
		ver = &Version{VersionID: "3.0"}
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

	if b.Extensions != nil {
		data, err := MarshalExtensions(b.Extensions)
		if err != nil {
			return bcferr.Wrap(bcferr.ErrMalformedArchive, target, "encode extensions", "", err)
		}
		if err := w.WriteFile(ExtensionsEntry, data); err != nil {
			return err
		}
	}

	if b.Document != nil {
		if err := c.writeDocuments(ctx, b.Document, w, target); err != nil {
			return err
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

func (c *Converter) writeDocuments(ctx context.Context, d *DocumentInfo, w *archive.Writer, target string) error {
	info, err := c.keepDocuments(ctx, d, target)
	if err != nil || info == nil {
		return err
	}
	data, err := MarshalDocumentInfo(info)
	if err != nil {
		return bcferr.Wrap(bcferr.ErrMalformedArchive, target, "encode documents", "", err)
	}
	if err := w.WriteFile(DocumentsEntry, data); err != nil {
		return err
	}
	for _, doc := range info.Documents {
		if doc.DocumentData == nil {
			continue
		}
		payload, err := doc.DocumentData.Bytes()
		if err != nil {
			return bcferr.Wrap(bcferr.ErrMalformedJSON, target, "decode document", doc.GUID, err)
		}
		if err := w.WriteFile(path.Join(DocumentsDir, doc.GUID), payload); err != nil {
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

	topic := *m.Topic
	topic.Viewpoints = append([]ViewPoint(nil), m.Topic.Viewpoints...)
	out := Markup{Header: m.Header, Topic: &topic}

	var attachments []archive.Entry
	for i := range topic.Viewpoints {
		vp := &topic.Viewpoints[i]
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
