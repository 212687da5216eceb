package ioformat

import (
	"encoding/json"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/sezkp/sezkp/pkg/merkle"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

// WriteManifest writes manifest to path as a single container, binary or
// textual depending on path's extension (spec 6: "Manifest file ... as
// either binary or textual container").
func WriteManifest(path string, manifest *merkle.Manifest) error {
	ext, err := detect(path)
	if err != nil {
		return err
	}
	data, err := marshalManifest(ext, manifest)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return sezkperr.Wrap(sezkperr.KindIO, "writing manifest file", err)
	}
	return nil
}

func marshalManifest(ext Ext, manifest *merkle.Manifest) ([]byte, error) {
	switch ext {
	case ExtCBOR:
		data, err := cbor.Marshal(manifest)
		if err != nil {
			return nil, sezkperr.Wrap(sezkperr.KindInternal, "encoding manifest", err)
		}
		return data, nil
	default:
		data, err := json.Marshal(manifest)
		if err != nil {
			return nil, sezkperr.Wrap(sezkperr.KindInternal, "encoding manifest", err)
		}
		return data, nil
	}
}

// ReadManifest reads a manifest container written by WriteManifest.
func ReadManifest(path string) (*merkle.Manifest, error) {
	ext, err := detect(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sezkperr.Wrap(sezkperr.KindIO, "reading manifest file", err)
	}
	var m merkle.Manifest
	switch ext {
	case ExtCBOR:
		if err := cbor.Unmarshal(data, &m); err != nil {
			return nil, sezkperr.Wrap(sezkperr.KindDecodeFormat, "decoding manifest", err)
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, sezkperr.Wrap(sezkperr.KindDecodeFormat, "decoding manifest", err)
		}
	}
	return &m, nil
}
