// Package bcf30 models BCF 3.0 archives and converts them to and from the
// JSON projection.
//
// Compared to 2.1, comments and viewpoints nest inside the topic, list
// fields use wrapper elements, and the archive carries two extra catalogs:
// extensions.xml and documents.xml. Document payloads live at
// documents/<guid> in the archive and inline as documentData in JSON.
package bcf30
