package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/randytsao24/textmystop/internal/models"
	"github.com/randytsao24/textmystop/internal/render"
	"github.com/randytsao24/textmystop/internal/viewmodel"
)

// output is the renderer picked by -format together with the file it
// writes to
type output struct {
	renderer viewmodel.Renderer
	file     *os.File
	xlsx     *render.XLSXRenderer
}

func openOutput(format, path, recipient string) (*output, error) {
	if format == "xlsx" {
		if path == "" {
			return nil, errors.New("-out is required for xlsx")
		}
		r := &render.XLSXRenderer{Path: path, Recipient: recipient}
		return &output{renderer: r, xlsx: r}, nil
	}

	o := &output{}
	var w io.Writer = os.Stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", path, err)
		}
		o.file = file
		w = file
	}

	switch format {
	case "text":
		o.renderer = &render.TextRenderer{W: w, Recipient: recipient}
	case "json":
		o.renderer = &render.JSONRenderer{W: w, Recipient: recipient}
	default:
		if o.file != nil {
			o.file.Close()
		}
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return o, nil
}

func (o *output) Render(vm models.ViewModel) {
	o.renderer.Render(vm)
}

func (o *output) Close() error {
	if o.xlsx != nil && o.xlsx.Err != nil {
		return o.xlsx.Err
	}
	if o.file != nil {
		return o.file.Close()
	}
	return nil
}
