package handler

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/optic-storefront/internal/domain/money"
)

const maxBodyBytes = 64 << 10

// requestError is a malformed request detected by the handler itself.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *requestError) Unwrap() error { return e.err }

func badRequest(msg string) error { return &requestError{msg: msg} }

// pathID returns the {name} path value when it is a UUID. Anything else
// cannot exist and yields notFound.
func pathID(r *http.Request, name string, notFound error) (string, error) {
	id := r.PathValue(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", notFound
	}
	return id, nil
}

// writeJSON encodes a single value with fn and writes it with status.
func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	fn(e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// decodeObject reads the request body as one JSON object and hands every
// field to fn. Unknown fields must be skipped by fn.
func decodeObject(w http.ResponseWriter, r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return &requestError{msg: "unreadable request body", err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return badRequest("request body is required")
	}
	if err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		return fn(d, string(key))
	}); err != nil {
		var re *requestError
		if errors.As(err, &re) {
			return re
		}
		return &requestError{msg: "invalid JSON body", err: err}
	}
	return nil
}

func encodeAmount(e *jx.Encoder, a money.Amount) {
	e.Float64(a.Float64())
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}

func encodeStrings(e *jx.Encoder, list []string) {
	e.Arr(func(e *jx.Encoder) {
		for _, s := range list {
			e.Str(s)
		}
	})
}

// decodeAmount reads a JSON number of whole currency units named field.
func decodeAmount(d *jx.Decoder, field string) (money.Amount, error) {
	n, err := d.Num()
	if err != nil {
		return 0, err
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, errors.Wrap(err, "parse amount")
	}
	a, err := money.Parse(v)
	if err != nil {
		return 0, badRequest(field + " must be between 0 and " + money.MaxUnits.String())
	}
	return a, nil
}

func decodeStrings(d *jx.Decoder) ([]string, error) {
	var out []string
	if err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeOptStr reads a string that may be null. ok is false for null.
func decodeOptStr(d *jx.Decoder) (string, bool, error) {
	if d.Next() == jx.Null {
		return "", false, d.Null()
	}
	s, err := d.Str()
	return s, err == nil, err
}
