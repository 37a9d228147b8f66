// Package xmlcodec decodes and encodes the XML fragments stored inside a BCF
// archive.
package xmlcodec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/htmlindex"

	"bcfkit/internal/bcferr"
)

// Kind names one fragment type and the root element it must carry.
type Kind struct {
	Name string
	Root string
}

var utf8BOM = []byte("\xef\xbb\xbf")

// Decode unmarshals data into v. The first element must be kind.Root;
// unknown child elements are ignored. Fragments declaring a non-UTF-8
// encoding are transcoded. Failures carry ErrMalformedArchive and name path
// and kind.
func Decode(data []byte, path string, kind Kind, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.CharsetReader = charsetReader
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return bcferr.Wrap(bcferr.ErrMalformedArchive, path, "decode "+kind.Name, "no root element", nil)
		}
		if err != nil {
			return bcferr.Wrap(bcferr.ErrMalformedArchive, path, "decode "+kind.Name, "", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if kind.Root != "" && start.Name.Local != kind.Root {
			msg := fmt.Sprintf("unexpected root <%s>, want <%s>", start.Name.Local, kind.Root)
			return bcferr.Wrap(bcferr.ErrMalformedArchive, path, "decode "+kind.Name, msg, nil)
		}
		if err := dec.DecodeElement(v, &start); err != nil {
			return bcferr.Wrap(bcferr.ErrMalformedArchive, path, "decode "+kind.Name, "", err)
		}
		return nil
	}
}

// Encode renders v as an indented UTF-8 document with an XML declaration.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
