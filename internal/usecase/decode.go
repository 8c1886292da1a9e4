package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"EngineMirror/internal/domain/models"
	"EngineMirror/pkg/util"

	"github.com/go-playground/validator/v10"
)

// Decoder turns a 2xx response body into the typed payload of one source.
// A body that does not have the expected shape is an error; decoders never
// return partial data.
type Decoder interface {
	Decode(body []byte) (models.Payload, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(body []byte) (models.Payload, error)

func (f DecoderFunc) Decode(body []byte) (models.Payload, error) { return f(body) }

var decoders = map[models.SourceID]Decoder{
	models.SourceSignals:      DecoderFunc(DecodeSignals),
	models.SourceNews:         DecoderFunc(DecodeNews),
	models.SourceAPIStatus:    DecoderFunc(DecodeStatus),
	models.SourceOpenTrades:   DecoderFunc(DecodeOpenTrades),
	models.SourceClosedTrades: DecoderFunc(DecodeClosedTrades),
	models.SourceStats:        DecoderFunc(DecodeStats),
	models.SourceTerminal:     DecoderFunc(DecodeTerminal),
}

// DecoderFor returns the decoder registered for id.
func DecoderFor(id models.SourceID) (Decoder, bool) {
	d, ok := decoders[id]
	return d, ok
}

var (
	validate = validator.New()

	errEmptyBody = errors.New("empty body")
)

// decodeStrict unmarshals body into dest. Unknown fields are allowed since
// the engine adds presentation fields freely; trailing data is not.
func decodeStrict(body []byte, dest interface{}) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return errEmptyBody
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	if dec.More() {
		return errors.New("decode json: trailing data after document")
	}
	return nil
}

// decodeList decodes a JSON array of rows. null is an empty list.
func decodeList[T any](body []byte) ([]T, error) {
	var rows []T
	if err := decodeStrict(body, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		if err := validate.Struct(&rows[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return rows, nil
}

// num accepts a JSON number, a numeric string, or null.
type num struct {
	v   float64
	set bool
}

func (n *num) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", str)
		}
		n.v, n.set = f, true
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	n.v, n.set = f, true
	return nil
}

func (n num) or(def float64) float64 {
	if n.set {
		return n.v
	}
	return def
}

func (n num) ptr() *float64 {
	if !n.set {
		return nil
	}
	v := n.v
	return &v
}

// firstNum returns the first set value.
func firstNum(ns ...num) num {
	for _, n := range ns {
		if n.set {
			return n
		}
	}
	return num{}
}

// strList accepts ["a","b"], "a, b", or null.
type strList []string

func (l *strList) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*l = nil
		return nil
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*l = util.SplitList(str)
		return nil
	default:
		var arr []string
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		*l = util.UniqueTrimmed(arr)
		return nil
	}
}

// flexBool accepts true/false, "true"/"false", 0/1, or null.
type flexBool struct {
	v   bool
	set bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "null" || s == "" {
		return nil
	}
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return fmt.Errorf("not a boolean: %s", s)
	}
	f.v, f.set = v, true
	return nil
}

func (f flexBool) ptr() *bool {
	if !f.set {
		return nil
	}
	v := f.v
	return &v
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

func firstString(ss ...string) string {
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// optionalTime parses informational timestamps; unknown formats yield
// the zero time rather than failing the whole response.
func optionalTime(s string) time.Time {
	t, _ := util.ParseTime(s)
	return t
}
