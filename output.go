package main

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sugawarayuuta/sonnet"
)

// writeJSON emits v as one JSON document followed by a newline.
func writeJSON(w io.Writer, v any) error {
	b, err := sonnet.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return errors.Wrap(err, "write output")
}
