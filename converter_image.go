package mdconv

import (
	"fmt"
	"io"
	"strings"
)

// imageMetadataFields are the exiftool tags surfaced for images, in output order.
var imageMetadataFields = []string{
	"ImageSize",
	"Title",
	"Caption",
	"Description",
	"Keywords",
	"Artist",
	"Author",
	"DateTimeOriginal",
	"CreateDate",
	"GPSPosition",
}

// ImageConverter handles images: exiftool metadata plus an optional
// LLM-generated caption. Both sources are optional; with neither configured
// the result is empty but still a success.
type ImageConverter struct{}

// NewImageConverter creates a new ImageConverter.
func NewImageConverter() *ImageConverter {
	return &ImageConverter{}
}

func (c *ImageConverter) Accepts(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (bool, error) {
	switch info.Extension {
	case ".jpg", ".jpeg", ".png":
		return true, nil
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "image/jpeg") || strings.HasPrefix(mime, "image/png"), nil
}

func (c *ImageConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	var lines []string

	if opts != nil && opts.ExifToolPath != "" {
		meta, err := exifToolMetadata(opts.ExifToolPath, data, info.Extension)
		if err == nil {
			writeMetadataFields(&lines, meta, imageMetadataFields)
		}
	}

	if opts != nil && opts.LLMClient != nil {
		mime := info.MIMEType
		if mime == "" {
			mime = mimeForExtension(info.Extension)
		}
		prompt := opts.LLMPrompt
		if prompt == "" {
			prompt = "Write a detailed caption for this image."
		}
		caption, err := opts.LLMClient.Caption(data, mime, opts.LLMModel, prompt)
		if err != nil {
			return nil, fmt.Errorf("caption image: %w", err)
		}
		if strings.TrimSpace(caption) != "" {
			lines = append(lines, "", "# Description:", strings.TrimSpace(caption))
		}
	}

	return &DocumentConverterResult{
		Markdown: strings.Join(lines, "\n"),
	}, nil
}
