package testsupport

import "fmt"

// PNG is a minimal payload used as snapshot bytes in fixtures.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR fixture")

// Version21 is the bcf.version entry of a 2.1 archive.
const Version21 = `<?xml version="1.0" encoding="UTF-8"?>
<Version VersionId="2.1" xsi:noNamespaceSchemaLocation="version.xsd" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <DetailedVersion>2.1</DetailedVersion>
</Version>`

// Version30 is the bcf.version entry of a 3.0 archive.
const Version30 = `<?xml version="1.0" encoding="UTF-8"?>
<Version VersionId="3.0"/>`

// Markup returns a minimal markup for guid. The shape is valid in both
// 2.1 and 3.0.
func Markup(guid, title string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Markup>
  <Topic Guid=%q TopicType="Issue" TopicStatus="Open">
    <Title>%s</Title>
    <CreationDate>2024-03-01T10:00:00Z</CreationDate>
    <CreationAuthor>jane@example.com</CreationAuthor>
  </Topic>
</Markup>`, guid, title)
}

// MarkupWithoutGUID is a markup whose topic carries no GUID.
const MarkupWithoutGUID = `<?xml version="1.0" encoding="UTF-8"?>
<Markup>
  <Topic TopicType="Issue" TopicStatus="Open">
    <Title>orphan</Title>
    <CreationDate>2024-03-01T10:00:00Z</CreationDate>
    <CreationAuthor>jane@example.com</CreationAuthor>
  </Topic>
</Markup>`

// Archive21 returns the entries of a 2.1 archive with one topic per guid.
func Archive21(guids ...string) map[string]string {
	files := map[string]string{"bcf.version": Version21}
	for _, guid := range guids {
		files[guid+"/markup.bcf"] = Markup(guid, "Topic "+guid)
	}
	return files
}

// Archive30 returns the entries of a 3.0 archive with one topic per guid.
func Archive30(guids ...string) map[string]string {
	files := map[string]string{"bcf.version": Version30}
	for _, guid := range guids {
		files[guid+"/markup.bcf"] = Markup(guid, "Topic "+guid)
	}
	return files
}
