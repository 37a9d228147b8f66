package model

import "bcfkit/internal/version"

// Bcf is a parsed BCF graph of one schema generation. Its concrete type
// determines the generation; only *bcf21.Bcf and *bcf30.Bcf implement it.
type Bcf interface {
	SchemaVersion() version.Version
	Topics() []TopicSummary
}

// TopicSummary is a flat view of one topic used for listings.
type TopicSummary struct {
	GUID       string
	Title      string
	Type       string
	Status     string
	Author     string
	Created    string
	Comments   int
	Viewpoints int
}
