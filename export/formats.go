package export

import (
	"bytes"
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/igbinary/errors"
	"github.com/wippyai/igbinary/value"
)

// cborMode encodes with the smallest integer and float forms that keep the
// value exact. Map order comes from Map.MarshalCBOR.
var cborMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.NaNConvert = cbor.NaNConvertPreserveSignal
	var err error
	cborMode, err = opts.EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
}

// JSON renders v as indented JSON. Non-finite floats cannot be represented
// and produce an error.
func JSON(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ToPlain(v)); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindUnsupportedValue, err, "json export")
	}
	return buf.Bytes(), nil
}

// YAML renders v as a YAML document.
func YAML(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ToPlain(v)); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindUnsupportedValue, err, "yaml export")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindUnsupportedValue, err, "yaml export")
	}
	return buf.Bytes(), nil
}

// CBOR renders v as a single CBOR data item.
func CBOR(v value.Value) ([]byte, error) {
	data, err := cborMode.Marshal(ToPlain(v))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindUnsupportedValue, err, "cbor export")
	}
	return data, nil
}

// Diag renders v in CBOR diagnostic notation.
func Diag(v value.Value) (string, error) {
	data, err := CBOR(v)
	if err != nil {
		return "", err
	}
	return cbor.Diagnose(data)
}
