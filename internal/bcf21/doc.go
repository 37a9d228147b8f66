// Package bcf21 implements the BCF 2.1 schema generation: the model graph,
// its XML fragments, validation rules, JSON units and the Converter that
// moves a graph between an archive and a JSON directory.
//
// In 2.1 comments and viewpoints sit next to the topic inside a Markup and
// document references point at files by relative path. Cameras carry no
// aspect ratio.
package bcf21
