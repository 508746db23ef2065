package http

import (
	"bytes"
	"io"
	"mime/multipart"
)

type formField struct {
	name, filename string
	value          []byte
}

// FormData is a multipart payload. The boundary and the resulting
// Content-Type are generated when the entity is sent, so callers should not
// set a Content-Type for it other than the bare "multipart/form-data".
type FormData struct {
	fields []formField
}

func (f *FormData) Append(name, value string) {
	f.fields = append(f.fields, formField{name: name, value: []byte(value)})
}

// AppendFile adds a file part. The content is read immediately.
func (f *FormData) AppendFile(name, filename string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.fields = append(f.fields, formField{name: name, filename: filename, value: b})
	return nil
}

func (f *FormData) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, field := range f.fields {
		var (
			part io.Writer
			err  error
		)
		if field.filename != "" {
			part, err = w.CreateFormFile(field.name, field.filename)
		} else {
			part, err = w.CreateFormField(field.name)
		}
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(field.value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
