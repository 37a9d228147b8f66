// Package bcferr defines the error taxonomy shared by the converter packages.
//
// Every failure that leaves a package is tagged with one of the exported
// sentinel markers so callers can classify it with errors.Is:
//   - ErrInvalidPath: the source or target path does not exist or is unusable.
//   - ErrUnsupportedVersion: no version tag, an unknown tag, or a request to
//     convert between schema generations.
//   - ErrValidation: a required field is missing or malformed.
//   - ErrMalformedArchive: a zip container or XML fragment cannot be read.
//   - ErrMalformedJSON: a JSON unit cannot be decoded.
//
// ValidationError and VersionMismatchError carry structured detail and
// unwrap to their marker.
package bcferr
